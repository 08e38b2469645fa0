package main

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

const defaultWidth = 80

// terminalFile returns w as a terminal, or nil when output is redirected.
func terminalFile(w io.Writer) *os.File {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) { //nolint:gosec // fd fits in int
		return nil
	}
	return f
}

// terminalWidth returns the column count of w, or defaultWidth.
func terminalWidth(w io.Writer) int {
	f := terminalFile(w)
	if f == nil {
		return defaultWidth
	}

	width, _, err := term.GetSize(int(f.Fd())) //nolint:gosec // fd fits in int
	if err != nil || width <= 0 {
		return defaultWidth
	}

	return width
}

// renderMarkdown formats text for a terminal of the given width. Plain text
// is returned when the renderer cannot be built or fails.
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}

	out, err := r.Render(text)
	if err != nil {
		return text
	}

	return strings.Trim(out, "\n")
}

// truncate shortens s to at most width display columns, appending "..."
// when cut. Newlines are replaced with spaces for single-line display.
func truncate(s string, width int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "...")
}

// resultBlock lays out the prompt header and the reply between borders.
func resultBlock(prompt, reply string, width int) string {
	border := borderStyle.Render(strings.Repeat("=", width))

	const label = "PROMPT: "
	header := promptLabelStyle.Render(strings.TrimSpace(label)) + " " +
		promptTextStyle.Render(truncate(prompt, width-len(label)))

	var sb strings.Builder
	sb.WriteString(border)
	sb.WriteString("\n")
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(border)
	sb.WriteString("\n")
	sb.WriteString(reply)
	sb.WriteString("\n")
	sb.WriteString(border)

	return sb.String()
}

// banner renders the title box.
func banner() string {
	return bannerStyle.Render(
		bannerTitleStyle.Render("🧙  AI CONTENT WIZARD  🧙") + "\n\n" + "Groq-Powered Content Generation Tool",
	)
}
