package normalisers

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/checkprioritizer/internal/core/ports/driven"
)

var _ driven.Normaliser = (*ClaimNormaliser)(nil)

var (
	// A URL runs from its scheme or www prefix to the next whitespace
	urlPattern = regexp.MustCompile(`(?i)(?:https?|www)\S*`)
	tagPattern = regexp.MustCompile(`(?s)<.*?>`)
	// \s in RE2 is ASCII only; add vertical tab, NEL and the Unicode separators
	spacePattern = regexp.MustCompile(`[\s\x0B\x{0085}\p{Z}]+`)
)

// ClaimNormaliser strips the noise common in social-media claims:
// links, HTML tags and irregular whitespace.
type ClaimNormaliser struct{}

func (n *ClaimNormaliser) Normalise(content string, mimeType string) string {
	return Normalise(content)
}

func (n *ClaimNormaliser) SupportedTypes() []string {
	return []string{MIMETypeTSV, MIMETypePlain}
}

func (n *ClaimNormaliser) Priority() int {
	return 60
}

// Normalise removes URLs and tags and collapses whitespace.
// The rules are applied until nothing changes, so Normalise is idempotent
// even when removing a tag exposes a URL (e.g. "htt<b>p://x").
func Normalise(text string) string {
	for {
		next := cleanOnce(text)
		if next == text {
			return next
		}
		text = next
	}
}

// NormaliseValue normalises v if it is a string and returns "" otherwise.
func NormaliseValue(v any) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return Normalise(s)
}

func cleanOnce(text string) string {
	text = urlPattern.ReplaceAllString(text, "")
	text = tagPattern.ReplaceAllString(text, "")
	text = spacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
