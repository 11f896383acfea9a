package prompt

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestCredentialsReadsLines(t *testing.T) {
	var out bytes.Buffer
	p := NewScripted(strings.NewReader("alice\ns3cret\n"), &out)

	username, password, err := p.Credentials("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "alice" || password != "s3cret" {
		t.Fatalf("got %q/%q", username, password)
	}
	if !strings.Contains(out.String(), "Username: ") || !strings.Contains(out.String(), "Password: ") {
		t.Fatalf("expected prompts, got %q", out.String())
	}
}

func TestCredentialsSkipsKnownUsername(t *testing.T) {
	p := NewScripted(strings.NewReader("pw"), io.Discard)

	username, password, err := p.Credentials("bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if username != "bob" || password != "pw" {
		t.Fatalf("got %q/%q", username, password)
	}
}

func TestCredentialsRequiresPassword(t *testing.T) {
	p := NewScripted(strings.NewReader("alice\n\n"), io.Discard)

	if _, _, err := p.Credentials(""); err == nil {
		t.Fatal("expected error for empty password")
	}
}

func TestCredentialsEOF(t *testing.T) {
	p := NewScripted(strings.NewReader(""), io.Discard)

	_, _, err := p.Credentials("")
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected EOF, got %v", err)
	}
}

func TestConfirm(t *testing.T) {
	cases := map[string]bool{
		"y\n":   true,
		"YES\n": true,
		"n\n":   false,
		"\n":    false,
		"maybe": false,
		"":      false,
	}
	for input, want := range cases {
		p := NewScripted(strings.NewReader(input), io.Discard)
		got, err := p.Confirm("Delete?")
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", input, err)
		}
		if got != want {
			t.Errorf("%q: got %v, want %v", input, got, want)
		}
	}
}
