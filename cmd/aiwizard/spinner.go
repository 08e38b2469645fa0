package main

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// generationDoneMsg carries the finished call into the spinner program.
type generationDoneMsg struct {
	text string
	err  error
}

// spinnerModel animates a label until a generationDoneMsg arrives.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	done    bool
}

func newSpinnerModel(label string) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(spinnerStyle),
	)

	return spinnerModel{spinner: s, label: label}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case generationDoneMsg:
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label
}

// withSpinner runs fn while showing label. On a terminal the label is
// animated; otherwise it is printed once.
func withSpinner(ctx context.Context, out io.Writer, label string, fn func(context.Context) (string, error)) (string, error) {
	f := terminalFile(out)
	if f == nil {
		_, _ = fmt.Fprintln(out, dimStyle.Render(label))
		return fn(ctx)
	}

	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(f),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)

	done := make(chan generationDoneMsg, 1)

	go func() {
		text, err := fn(ctx)
		msg := generationDoneMsg{text: text, err: err}
		done <- msg
		p.Send(msg)
	}()

	// Run errors are ignored; the result always comes from done.
	_, _ = p.Run()

	res := <-done

	return res.text, res.err
}
