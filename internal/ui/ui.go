// Package ui renders command output for people.
//
// Styling is only applied when the writer is a terminal and NO_COLOR is
// unset, so redirected output and test buffers get plain text.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	colorPass   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#7BD88F"}
	colorWarn   = lipgloss.AdaptiveColor{Light: "#B26A00", Dark: "#FFD866"}
	colorFail   = lipgloss.AdaptiveColor{Light: "#C62828", Dark: "#FF6188"}
	colorAccent = lipgloss.AdaptiveColor{Light: "#1565C0", Dark: "#78DCE8"}
	colorMuted  = lipgloss.AdaptiveColor{Light: "#757575", Dark: "#939293"}
)

// Printer writes lines to w, styled when w is a terminal.
type Printer struct {
	w      io.Writer
	styled bool

	pass   lipgloss.Style
	warn   lipgloss.Style
	fail   lipgloss.Style
	accent lipgloss.Style
	muted  lipgloss.Style
	header lipgloss.Style
}

// NewPrinter creates a printer for w.
func NewPrinter(w io.Writer) *Printer {
	styled := IsTerminal(w) && os.Getenv("NO_COLOR") == ""

	r := lipgloss.NewRenderer(w)
	if !styled {
		r.SetColorProfile(termenv.Ascii)
	}

	return &Printer{
		w:      w,
		styled: styled,
		pass:   r.NewStyle().Foreground(colorPass),
		warn:   r.NewStyle().Foreground(colorWarn),
		fail:   r.NewStyle().Foreground(colorFail).Bold(true),
		accent: r.NewStyle().Foreground(colorAccent),
		muted:  r.NewStyle().Foreground(colorMuted),
		header: r.NewStyle().Bold(true).Underline(true),
	}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// IsInteractive reports whether r and w are both terminals.
func IsInteractive(r io.Reader, w io.Writer) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) && IsTerminal(w)
}

func (p *Printer) render(style lipgloss.Style, s string) string {
	if !p.styled {
		return s
	}
	return style.Render(s)
}

func (p *Printer) RenderPass(s string) string   { return p.render(p.pass, s) }
func (p *Printer) RenderWarn(s string) string   { return p.render(p.warn, s) }
func (p *Printer) RenderFail(s string) string   { return p.render(p.fail, s) }
func (p *Printer) RenderAccent(s string) string { return p.render(p.accent, s) }
func (p *Printer) RenderMuted(s string) string  { return p.render(p.muted, s) }
func (p *Printer) RenderHeader(s string) string { return p.render(p.header, s) }

// Printf writes a formatted line fragment.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Println writes a line.
func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, args...)
}
