package runner

import (
	"io"
	"os"

	"github.com/dewakar-s/procflow/internal/presentation/tui"
	"golang.org/x/term"
)

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// MarkdownRenderer renders markdown with glamour, picking a light or dark
// style from the terminal background.
func MarkdownRenderer() (ContentRenderer, error) {
	r, err := tui.NewRenderer(0)
	if err != nil {
		return nil, err
	}
	return ContentRenderer(r), nil
}

// AutoRenderer returns a markdown renderer when w is a terminal, nil otherwise.
func AutoRenderer(w io.Writer) ContentRenderer {
	if !IsTerminal(w) {
		return nil
	}
	r, err := MarkdownRenderer()
	if err != nil {
		return nil
	}
	return r
}
