// Package markdown renders task descriptions for the terminal.
package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

type renderer interface {
	Render(string) (string, error)
}

var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

var (
	rendererMu sync.Mutex
	renderers  = map[int]renderer{}
)

// Render formats markdown text at width columns, indenting every line by
// indent spaces. Blank input renders as "". If the renderer fails or
// panics the normalized input is returned instead.
func Render(width, indent int, input string) string {
	value := newlines.Replace(input)
	value = strings.TrimRight(value, "\n")
	if strings.TrimSpace(value) == "" {
		return ""
	}
	width = max(width, 1)
	indent = max(indent, 0)
	renderWidth := max(width-indent, 1)

	rendered := safeRender(markdownRenderer(renderWidth), value)
	rendered = strings.TrimRight(rendered, "\r\n")
	if strings.TrimSpace(rendered) == "" {
		return ""
	}
	return indentBlock(rendered, indent)
}

func safeRender(r renderer, value string) (out string) {
	if r == nil {
		return value
	}
	defer func() {
		if recover() != nil {
			out = value
		}
	}()
	formatted, err := r.Render(value)
	if err != nil {
		return value
	}
	return formatted
}

func markdownRenderer(width int) renderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	if cached, ok := renderers[width]; ok {
		return cached
	}
	style := styles.ASCIIStyleConfig
	style.Item.BlockPrefix = "- "
	style.ImageText.Format = "Image: {{.text}} ->"
	zero := uint(0)
	style.Document.Margin = &zero
	created, err := glamour.NewTermRenderer(
		glamour.WithStyles(style),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderers[width] = created
	return created
}

func indentBlock(value string, spaces int) string {
	if spaces <= 0 {
		return value
	}
	prefix := strings.Repeat(" ", spaces)
	lines := strings.Split(value, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			lines[i] = ""
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
