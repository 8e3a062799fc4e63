package yamfsig

import (
	"errors"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	var sig Signature
	for i := range sig {
		sig[i] = byte(i)
	}

	buf := make([]byte, Size+2)
	n, err := Encode(sig, buf)
	if err != nil {
		t.Fatal(err)
	}
	if n != Size {
		t.Fatalf("Encode wrote %d bytes, want %d", n, Size)
	}

	decoded, rest, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if decoded != sig {
		t.Fatalf("decoded signature != original")
	}
	if len(rest) != 2 {
		t.Fatalf("rest = %d bytes, want 2", len(rest))
	}
}

func TestDecodeTooShort(t *testing.T) {
	_, _, err := Decode(make([]byte, Size-1))
	if !errors.Is(err, ErrBufferTooShort) {
		t.Fatalf("err = %v, want ErrBufferTooShort", err)
	}
}

func TestEncodeBufferTooShort(t *testing.T) {
	_, err := Encode(Signature{}, make([]byte, Size-1))
	if !errors.Is(err, ErrBufferTooShort) {
		t.Fatalf("err = %v, want ErrBufferTooShort", err)
	}
}
