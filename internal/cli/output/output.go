// Package output renders CLI output with mode-aware formatting. Styled text
// is reserved for interactive terminals; piped output degrades to markdown
// so logs and CI captures stay free of escape codes.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// OutputMode selects how command output is rendered.
type OutputMode string

const (
	// ModeAuto picks text on a terminal and markdown everywhere else.
	ModeAuto     OutputMode = "auto"
	ModeText     OutputMode = "text"
	ModeMarkdown OutputMode = "markdown"
	ModeJSON     OutputMode = "json"
	ModeCSV      OutputMode = "csv"
)

// Mode normalizes a user-supplied format string. Unknown values fall back
// to auto detection.
func Mode(s string) OutputMode {
	switch strings.ToLower(s) {
	case "text", "table":
		return ModeText
	case "markdown", "md":
		return ModeMarkdown
	case "json":
		return ModeJSON
	case "csv":
		return ModeCSV
	default:
		return ModeAuto
	}
}

// Renderer writes mode-aware output. Regular output goes to out, warnings
// and errors to errOut.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	isTTY  bool
	mode   OutputMode
	styles Styles
}

// NewRenderer builds a renderer, detecting whether out is a terminal.
func NewRenderer(out, errOut io.Writer, mode OutputMode) *Renderer {
	isTTY := false
	if f, ok := out.(*os.File); ok {
		isTTY = term.IsTerminal(int(f.Fd()))
	}
	return NewRendererWithTTY(out, errOut, isTTY, mode)
}

// NewRendererWithTTY builds a renderer with an explicit TTY state. Tests use
// this to pin down mode resolution.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode OutputMode) *Renderer {
	r := &Renderer{
		out:    out,
		errOut: errOut,
		isTTY:  isTTY,
		mode:   mode,
	}
	// Styling is only safe when a human terminal renders text output.
	if isTTY && r.EffectiveMode() == ModeText {
		r.styles = DefaultStyles()
	} else {
		r.styles = PlainStyles()
	}
	return r
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() OutputMode {
	if r.mode != ModeAuto && r.mode != "" {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// Format returns the report format string for the effective mode.
func (r *Renderer) Format() string {
	switch r.EffectiveMode() {
	case ModeJSON:
		return "json"
	case ModeMarkdown:
		return "markdown"
	case ModeCSV:
		return "csv"
	default:
		return "table"
	}
}

// Writer returns the destination for regular output.
func (r *Renderer) Writer() io.Writer { return r.out }

// ErrWriter returns the destination for warnings and errors.
func (r *Renderer) ErrWriter() io.Writer { return r.errOut }

// Styles returns the renderer's style set.
func (r *Renderer) Styles() Styles { return r.styles }

// Println writes a line of regular output.
func (r *Renderer) Println(s string) {
	_, _ = fmt.Fprintln(r.out, s)
}

// Header writes a section heading, styled on terminals and as a markdown
// heading otherwise.
func (r *Renderer) Header(level int, text string) {
	switch {
	case r.EffectiveMode() == ModeMarkdown:
		r.Println(FormatHeader(level, text))
	case level <= 1:
		r.Println(r.styles.Header1.Render(text))
	default:
		r.Println(r.styles.Header2.Render(text))
	}
}

// Printf writes formatted regular output.
func (r *Renderer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

// Success writes a styled success line.
func (r *Renderer) Success(msg string) {
	_, _ = fmt.Fprintln(r.out, r.styles.Success.Render(msg))
}

// StatusLine writes a name prefixed with a status icon. Any status other
// than "success" renders the failure icon. A non-empty detail is appended
// in parentheses.
func (r *Renderer) StatusLine(name, status, detail string) {
	icon := r.styles.StatusSuccess.String()
	if status != "success" {
		icon = r.styles.StatusFailed.String()
	}
	if detail != "" {
		r.Printf("%s %s (%s)\n", icon, name, detail)
		return
	}
	r.Printf("%s %s\n", icon, name)
}

// Warning writes a styled warning line to the error stream.
func (r *Renderer) Warning(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Warning.Render("Warning: "+msg))
}

// Error writes a styled error line to the error stream.
func (r *Renderer) Error(msg string) {
	_, _ = fmt.Fprintln(r.errOut, r.styles.Error.Render("Error: "+msg))
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatHeader renders a markdown heading.
func FormatHeader(level int, text string) string {
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue renders a markdown key/value bullet.
func FormatKeyValue(key, value string) string {
	return fmt.Sprintf("- **%s:** %s", key, value)
}
