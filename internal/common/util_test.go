package common

import (
	"strings"
	"testing"
)

func TestWipeByteArray_ZerosBuffer(t *testing.T) {
	buf := []byte("123456")
	WipeByteArray(buf)
	for i, v := range buf {
		if v != 0 {
			t.Fatalf("expected buf[%d]==0, got %d", i, v)
		}
	}
}

func TestWipeByteArray_NilSafe(t *testing.T) {
	WipeByteArray(nil)
}

func TestBearerPrefix_EndsWithSpace(t *testing.T) {
	if !strings.HasSuffix(BearerPrefix, " ") {
		t.Fatalf("bearer prefix must end with a space, got %q", BearerPrefix)
	}
}
