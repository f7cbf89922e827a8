package hardware

import "testing"

func TestParseDerivationPathCanonicalRoundTrip(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"m/44'/501'/0'/0'", "m/44'/501'/0'/0'"},
		{"44h/501h/0/1", "m/44'/501'/0/1"},
		{"M/44'/501'/0'", "m/44'/501'/0'"},
	}
	for _, c := range cases {
		p, err := ParseDerivationPath(c.input)
		if err != nil {
			t.Fatalf("parse(%q): %v", c.input, err)
		}
		if got := p.String(); got != c.want {
			t.Fatalf("parse(%q).String() = %q, want %q", c.input, got, c.want)
		}

		reparsed, err := ParseDerivationPath(p.String())
		if err != nil {
			t.Fatalf("reparse(%q): %v", p.String(), err)
		}
		if reparsed.String() != p.String() {
			t.Fatalf("parse(format(parse(%q))) != parse(%q): %q != %q", c.input, c.input, reparsed.String(), p.String())
		}
	}
}

func TestParseDerivationPathRejectsEmpty(t *testing.T) {
	for _, bad := range []string{"", "m/", "m//0", "m/44'/"} {
		if _, err := ParseDerivationPath(bad); err == nil {
			t.Fatalf("expected error parsing %q", bad)
		}
	}
}

func TestDerivationPathEncode(t *testing.T) {
	p, err := ParseDerivationPath("m/44'/501'/0'/0'")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	enc := p.Encode()
	if len(enc) != 1+4*4 {
		t.Fatalf("encoded length = %d, want %d", len(enc), 1+4*4)
	}
	if enc[0] != 4 {
		t.Fatalf("encoded component count = %d, want 4", enc[0])
	}
	wantFirst := uint32(44) | hardenedBit
	gotFirst := uint32(enc[1])<<24 | uint32(enc[2])<<16 | uint32(enc[3])<<8 | uint32(enc[4])
	if gotFirst != wantFirst {
		t.Fatalf("first encoded component = %#x, want %#x", gotFirst, wantFirst)
	}
}
