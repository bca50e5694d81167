// Package output provides rendering helpers for CLI commands.
//
// Commands render through a Renderer that adapts to the environment:
// styled text on a terminal, markdown when piped, JSON on request.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Mode selects how command output is rendered.
type Mode string

const (
	// ModeAuto renders styled text on a terminal and markdown elsewhere.
	ModeAuto Mode = "auto"
	// ModeText renders styled terminal output.
	ModeText Mode = "text"
	// ModeMarkdown renders agent-friendly markdown.
	ModeMarkdown Mode = "markdown"
	// ModeJSON renders machine-readable JSON.
	ModeJSON Mode = "json"
	// ModeCSV renders comma-separated values where a command supports it.
	ModeCSV Mode = "csv"
)

// Styles holds the lipgloss styles used for terminal rendering.
type Styles struct {
	Header        lipgloss.Style
	Header2       lipgloss.Style
	Bold          lipgloss.Style
	Success       lipgloss.Style
	Warning       lipgloss.Style
	Error         lipgloss.Style
	Info          lipgloss.Style
	Muted         lipgloss.Style
	FieldCaption  lipgloss.Style
	StatusSuccess lipgloss.Style
	StatusFailed  lipgloss.Style
}

func defaultStyles() *Styles {
	return &Styles{
		Header:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header2:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		Bold:          lipgloss.NewStyle().Bold(true),
		Success:       lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning:       lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:         lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Info:          lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		Muted:         lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		FieldCaption:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		StatusSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
}

// Renderer writes command output in the configured mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	styles *Styles
}

// NewRenderer creates a renderer over the given writers.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		styles: defaultStyles(),
	}
}

// Writer returns the primary output writer.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the error output writer.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the terminal styles.
func (r *Renderer) Styles() *Styles { return r.styles }

// EffectiveMode resolves ModeAuto against the output destination:
// a terminal gets styled text, everything else markdown.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if f, ok := r.out.(*os.File); ok && isTerminal(f) {
		return ModeText
	}
	return ModeMarkdown
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Println writes a line to the primary output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to the primary output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// Header prints a heading, styled in text mode and as markdown otherwise.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeText {
		if level == 1 {
			r.Println(r.styles.Header.Render(text))
		} else {
			r.Println(r.styles.Header2.Render(text))
		}
		r.Println()
		return
	}
	r.Println(FormatHeader(level, text))
	r.Println()
}

// Success prints a success message.
func (r *Renderer) Success(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Success.Render("✓ " + msg))
		return
	}
	r.Println("✓ " + msg)
}

// Warning prints a warning message.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Warning.Render("⚠ " + msg))
		return
	}
	r.Println("⚠ " + msg)
}

// Error prints an error message to the error output.
func (r *Renderer) Error(msg string) {
	if r.EffectiveMode() == ModeText {
		_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("✗ "+msg))
		return
	}
	_, _ = fmt.Fprintln(r.errOut, "✗ "+msg)
}

// Muted prints secondary text.
func (r *Renderer) Muted(msg string) {
	if r.EffectiveMode() == ModeText {
		r.Println(r.styles.Muted.Render(msg))
		return
	}
	r.Println(msg)
}

// IsTTY reports whether the primary output is a terminal.
func (r *Renderer) IsTTY() bool {
	f, ok := r.out.(*os.File)
	return ok && isTerminal(f)
}

// StatusLine prints an indented per-item status line, as used by
// commands that report file-by-file progress.
func (r *Renderer) StatusLine(name, status, detail string) {
	symbol := "-"
	styled := symbol
	switch status {
	case "success":
		symbol = "✓"
		styled = r.styles.StatusSuccess.Render(symbol)
	case "failed":
		symbol = "✗"
		styled = r.styles.StatusFailed.Render(symbol)
	}
	if r.EffectiveMode() != ModeText {
		styled = symbol
	}

	if detail != "" {
		r.Printf("  %s %s  %s\n", styled, name, detail)
		return
	}
	r.Printf("  %s %s\n", styled, name)
}

// FieldLine prints one numbered catalog entry with its dependencies.
func (r *Renderer) FieldLine(i int, caption, category string, deps []string) {
	caption = r.styles.FieldCaption.Render(caption)
	line := fmt.Sprintf("%3d. %s", i, caption)
	if category != "" && category != "default" {
		line += " " + r.styles.Muted.Render("("+category+")")
	}
	if len(deps) > 0 {
		line += " " + r.styles.Muted.Render("← "+joinDeps(deps))
	}
	r.Println(line)
}

func joinDeps(deps []string) string {
	out := ""
	for i, d := range deps {
		if i > 0 {
			out += ", "
		}
		out += d
	}
	return out
}

// JSON writes the value as indented JSON to the primary output.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
