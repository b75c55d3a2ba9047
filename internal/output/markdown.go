package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const (
	defaultWrapWidth = 80
	maxWrapWidth     = 120
)

// MarkdownRenderer turns markdown into terminal text.
type MarkdownRenderer interface {
	Render(string) (string, error)
}

// MarkdownDisplay prints operator messages as rendered markdown. Rendering
// problems never surface: the raw text is printed instead.
type MarkdownDisplay struct {
	mu       sync.Mutex
	out      io.Writer
	renderer MarkdownRenderer
}

// NewMarkdownDisplay writes to out (stdout when nil) with a glamour renderer
// styled for whether out is a terminal.
func NewMarkdownDisplay(out io.Writer) *MarkdownDisplay {
	if out == nil {
		out = os.Stdout
	}
	return NewMarkdownDisplayWithRenderer(out, buildMarkdownRenderer(out))
}

// NewMarkdownDisplayWithRenderer allows tests to supply a lightweight renderer.
// A nil renderer prints plain text.
func NewMarkdownDisplayWithRenderer(out io.Writer, md MarkdownRenderer) *MarkdownDisplay {
	if out == nil {
		out = os.Stdout
	}
	return &MarkdownDisplay{out: out, renderer: md}
}

func buildMarkdownRenderer(out io.Writer) MarkdownRenderer {
	width := detectOutputWidth(out)
	style := "notty"
	if width > 0 {
		style = "dark"
	}
	switch {
	case width <= 0:
		width = defaultWrapWidth
	case width-4 > maxWrapWidth:
		width = maxWrapWidth
	default:
		width -= 4
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
		glamour.WithEmoji(),
	)
	if err != nil {
		return nil
	}
	return renderer
}

// Markdown renders text and writes it followed by a blank line.
func (d *MarkdownDisplay) Markdown(text string) {
	if d == nil {
		return
	}
	content := Dedent(text)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.renderer == nil {
		_, _ = fmt.Fprintln(d.out, content)
		return
	}
	rendered, err := d.renderer.Render(content)
	if err != nil {
		_, _ = fmt.Fprintln(d.out, content)
		return
	}
	_, _ = fmt.Fprint(d.out, rendered)
	if !strings.HasSuffix(rendered, "\n") {
		_, _ = fmt.Fprintln(d.out)
	}
}

// Dedent strips leading and trailing whitespace from every line and drops
// blank lines at either end, so indented message literals render flush left.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}

func detectOutputWidth(w io.Writer) int {
	file, ok := w.(*os.File)
	if !ok {
		return 0
	}
	fd := int(file.Fd())
	if !term.IsTerminal(fd) {
		return 0
	}
	width, _, err := term.GetSize(fd)
	if err != nil || width <= 0 {
		return 0
	}
	return width
}
