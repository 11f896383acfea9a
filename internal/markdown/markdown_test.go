package markdown

import (
	"errors"
	"strings"
	"testing"
)

type panicRenderer struct{}

func (panicRenderer) Render(string) (string, error) {
	panic("boom")
}

type errorRenderer struct{}

func (errorRenderer) Render(string) (string, error) {
	return "", errors.New("bad markdown")
}

func withRenderer(t *testing.T, width int, r renderer) {
	t.Helper()
	rendererMu.Lock()
	prev, hadPrev := renderers[width]
	renderers[width] = r
	rendererMu.Unlock()

	t.Cleanup(func() {
		rendererMu.Lock()
		defer rendererMu.Unlock()
		if hadPrev {
			renderers[width] = prev
		} else {
			delete(renderers, width)
		}
	})
}

func TestRender_RecoversFromRendererPanic(t *testing.T) {
	withRenderer(t, 20, panicRenderer{})

	out := Render(20, 0, "hello\n")
	if out != "hello" {
		t.Fatalf("expected fallback to original markdown, got %q", out)
	}
}

func TestRender_FallsBackOnError(t *testing.T) {
	withRenderer(t, 18, errorRenderer{})

	out := Render(20, 2, "hello\r\nworld")
	if out != "  hello\n  world" {
		t.Fatalf("expected indented fallback, got %q", out)
	}
}

func TestRender_Blank(t *testing.T) {
	if out := Render(40, 0, " \n\n"); out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
}

func TestRender_FormatsList(t *testing.T) {
	out := Render(40, 4, "Shopping:\n\n* milk\n* eggs\n")
	if !strings.Contains(out, "- milk") || !strings.Contains(out, "- eggs") {
		t.Fatalf("expected rendered list items, got %q", out)
	}
	for _, line := range strings.Split(out, "\n") {
		if line != "" && !strings.HasPrefix(line, "    ") {
			t.Fatalf("expected indented line, got %q", line)
		}
	}
}
