package normalisers

import (
	"strings"
	"testing"
)

func TestNormalise(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing url", "Vaccine trials begin in Cuba http://x.co", "Vaccine trials begin in Cuba"},
		{"https url mid text", "see https://t.co/abc123 now", "see now"},
		{"www prefix", "visit www.example.org today", "visit today"},
		{"uppercase scheme", "HTTPS://EXAMPLE.COM/x claim", "claim"},
		{"bare http token", "http", ""},
		{"html tags", "<p>Hello <b>world</b></p>", "Hello world"},
		{"multiline tag", "a <span\nclass=\"x\">b</span> c", "a b c"},
		{"whitespace collapse", "  many \t\n spaces\u00a0here  ", "many spaces here"},
		{"vertical tab and nel", "a\x0Bb\u0085c", "a b c"},
		{"empty", "", ""},
		{"only whitespace", " \n\t ", ""},
		{"plain text untouched", "Masks reduce spread.", "Masks reduce spread."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalise(tt.in); got != tt.want {
				t.Errorf("Normalise(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalise_Idempotent(t *testing.T) {
	inputs := []string{
		"Vaccine trials begin in Cuba http://x.co",
		"htt<b>p://hidden.example</b> text",
		"<<b>i>nested</i>",
		"a  <br/>  b\n\nc www.x.y",
		"\u2003em\u2003space\u2028sep",
	}

	for _, in := range inputs {
		once := Normalise(in)
		if twice := Normalise(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalise_Properties(t *testing.T) {
	inputs := []string{
		"Breaking: <a href=\"#x\">link</a> https://t.co/y   5G causes flu",
		"WWW.FAKE.NEWS   and \t http://a.b <i>tagged</i>",
		"normal sentence with   gaps",
	}

	for _, in := range inputs {
		out := Normalise(in)
		lower := strings.ToLower(out)
		if strings.Contains(lower, "http") || strings.Contains(lower, "www") {
			t.Errorf("url residue in %q", out)
		}
		if strings.ContainsAny(out, "<>") {
			t.Errorf("tag residue in %q", out)
		}
		if strings.Contains(out, "  ") {
			t.Errorf("consecutive spaces in %q", out)
		}
		if out != strings.TrimSpace(out) {
			t.Errorf("untrimmed output %q", out)
		}
	}
}

func TestNormaliseValue(t *testing.T) {
	if got := NormaliseValue(" a  b "); got != "a b" {
		t.Errorf("got %q", got)
	}
	for _, v := range []any{nil, 42, 3.5, []string{"x"}} {
		if got := NormaliseValue(v); got != "" {
			t.Errorf("NormaliseValue(%v) = %q, want empty", v, got)
		}
	}
}

func TestClaimNormaliser(t *testing.T) {
	n := &ClaimNormaliser{}
	if n.Priority() <= (&PlaintextNormaliser{}).Priority() {
		t.Error("claim normaliser must outrank the fallback")
	}
	if got := n.Normalise("x <b>y</b>", MIMETypeTSV); got != "x y" {
		t.Errorf("got %q", got)
	}
}
