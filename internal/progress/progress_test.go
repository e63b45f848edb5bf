package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCounterNonTTYUsesNewlines(t *testing.T) {
	var buf bytes.Buffer
	c := &Counter{w: &buf, tty: false, label: "records"}
	c.Add(1)
	c.Add(1) // first Add only primes c.last, forcing a real interval check
	c.Done()
	if strings.Contains(buf.String(), "\r") {
		t.Fatalf("non-tty output contains carriage return: %q", buf.String())
	}
	if !strings.Contains(buf.String(), "records:") {
		t.Fatalf("output missing label: %q", buf.String())
	}
}

func TestCounterTTYUsesCarriageReturn(t *testing.T) {
	var buf bytes.Buffer
	c := &Counter{w: &buf, tty: true, label: "records"}
	c.Done()
	if !strings.HasPrefix(buf.String(), "\r") {
		t.Fatalf("tty output should start with carriage return: %q", buf.String())
	}
}
