// Package console renders progress, warnings and interactive prompts.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/v0xg/formfill/internal/form"
)

var (
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
	labelStyle   = lipgloss.NewStyle().Bold(true)
	suggestStyle = lipgloss.NewStyle().Faint(true)
)

// Printer writes user-facing progress lines
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// Writer exposes the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Step starts a progress line, e.g. "→ Opening https://... "
func (p *Printer) Step(format string, args ...any) {
	fmt.Fprint(p.out, stepStyle.Render("→")+" "+fmt.Sprintf(format, args...)+"... ")
}

// Section prints a step heading on its own line
func (p *Printer) Section(format string, args ...any) {
	fmt.Fprintln(p.out, stepStyle.Render("→")+" "+fmt.Sprintf(format, args...))
}

// Done ends a progress line
func (p *Printer) Done(format string, args ...any) {
	if format == "" {
		fmt.Fprintln(p.out, "done")
		return
	}
	fmt.Fprintln(p.out, "done ("+fmt.Sprintf(format, args...)+")")
}

// Failed ends a progress line that did not complete
func (p *Printer) Failed() {
	fmt.Fprintln(p.out, "failed")
}

func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.out, warnStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.out, okStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// Summary lists the detected fields of every form
func (p *Printer) Summary(snapshots []form.Snapshot) {
	for _, snap := range snapshots {
		fmt.Fprintln(p.out, headerStyle.Render(fmt.Sprintf("--- Form %d ---", snap.Index+1)))
		buckets := []struct {
			title  string
			fields []form.Field
		}{
			{"Text inputs", snap.TextInputs},
			{"Dropdowns", snap.Dropdowns},
			{"Checkboxes", snap.Checkboxes},
			{"File inputs", snap.FileInputs},
		}
		for _, b := range buckets {
			fmt.Fprintf(p.out, "%s:\n", b.title)
			for _, f := range b.fields {
				fmt.Fprintf(p.out, "  - %s (%s)\n", f.DisplayName(), f.Type)
			}
		}
	}
}

func renderLabel(label, suggestion string) string {
	var b strings.Builder
	b.WriteString(labelStyle.Render(label))
	if suggestion != "" {
		b.WriteString(" " + suggestStyle.Render("["+suggestion+"]"))
	}
	b.WriteString(": ")
	return b.String()
}
