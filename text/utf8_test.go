package text

import (
	"testing"
)

func TestCharCount (t *testing.T) {
	if CharCount("") != 0 {
		t.Fatalf("expected 0")
	}
	if CharCount("abc") != 3 {
		t.Fatalf("expected 3")
	}
	if CharCount("你好") != 2 {
		t.Fatalf("expected 2 for two CJK characters, got %d", CharCount("你好"))
	}
}

func TestCharToByteAndBack (t *testing.T) {
	s := "a你b好c"
	for c := 0; c <= CharCount(s); c++ {
		b := CharToByte(s, c)
		if ByteToChar(s, b) != c {
			t.Fatalf("round trip failed at char %d: byte %d -> char %d", c, b, ByteToChar(s, b))
		}
	}
	if CharToByte(s, CharCount(s)) != len(s) {
		t.Fatalf("CharToByte at end should be len(s)")
	}
}

func TestSubstr (t *testing.T) {
	s := "hello 你好 world"
	if Substr(s, 0, 5) != "hello" {
		t.Fatalf("got %q", Substr(s, 0, 5))
	}
	if Substr(s, 6, 2) != "你好" {
		t.Fatalf("got %q", Substr(s, 6, 2))
	}
	if Substr(s, 100, 3) != "" {
		t.Fatalf("expected empty substring past end, got %q", Substr(s, 100, 3))
	}
}
