package corefmt

import (
	"bytes"
	"testing"
)

func TestBase64URLRoundTrip(t *testing.T) {
	src := []byte{0xfb, 0xff, 0x00, 0x10, 0x3e}
	s := EncodeBase64URL(src)
	for _, c := range s {
		if c == '+' || c == '/' || c == '=' {
			t.Fatalf("not url safe: %s", s)
		}
	}
	back, err := DecodeBase64URL(s)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(back, src) {
		t.Fatalf("round trip got %v", back)
	}
	if _, err := DecodeBase64URL("!!"); err == nil {
		t.Fatalf("expected error for invalid input")
	}
}
