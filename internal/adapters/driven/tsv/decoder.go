package tsv

import (
	"bytes"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrUndecodable is returned when no decoder accepts a file's bytes
var ErrUndecodable = errors.New("no decoder accepted the file contents")

// Decoder turns raw file bytes into text for one candidate encoding.
type Decoder interface {
	Name() string
	Decode(raw []byte) (string, error)
}

// DefaultDecoders is the fallback order tried for every file.
func DefaultDecoders() []Decoder {
	return []Decoder{UTF8Decoder{}, Latin1Decoder{}}
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// UTF8Decoder accepts only valid UTF-8, dropping a leading byte order mark.
type UTF8Decoder struct{}

func (UTF8Decoder) Name() string { return "utf-8" }

func (UTF8Decoder) Decode(raw []byte) (string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if !utf8.Valid(raw) {
		return "", errors.New("invalid utf-8")
	}
	return string(raw), nil
}

// Latin1Decoder maps every byte to a code point, so it never fails.
type Latin1Decoder struct{}

func (Latin1Decoder) Name() string { return "iso-8859-1" }

func (Latin1Decoder) Decode(raw []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// decode tries each decoder in order and reports which one succeeded.
func decode(raw []byte, decoders []Decoder) (string, string, error) {
	var errs []error
	for _, d := range decoders {
		text, err := d.Decode(raw)
		if err == nil {
			return text, d.Name(), nil
		}
		errs = append(errs, err)
	}
	return "", "", errors.Join(append([]error{ErrUndecodable}, errs...)...)
}
