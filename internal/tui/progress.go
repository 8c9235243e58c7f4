package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/questload/pkg/questload"
)

type phaseMsg struct {
	phase  questload.Phase
	detail string
}

type finishMsg struct {
	err error
}

type step struct {
	phase  questload.Phase
	detail string
}

func (s step) label() string {
	if s.detail == "" {
		return s.phase.String()
	}
	return fmt.Sprintf("%s %s", s.phase, MutedStyle.Render("("+s.detail+")"))
}

// progressModel renders finished import phases with a spinner on the current one.
type progressModel struct {
	title    string
	spinner  spinner.Model
	finished []step
	current  *step
	done     bool
	err      error
}

func newProgressModel(title string) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	return progressModel{title: title, spinner: s}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case phaseMsg:
		if m.current != nil {
			m.finished = append(m.finished, *m.current)
		}
		if msg.phase == questload.PhaseDone {
			m.current = nil
			return m, nil
		}
		m.current = &step{phase: msg.phase, detail: msg.detail}
		return m, nil

	case finishMsg:
		if m.current != nil && msg.err == nil {
			m.finished = append(m.finished, *m.current)
			m.current = nil
		}
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	if m.title != "" {
		b.WriteString(TitleStyle.Render(m.title))
		b.WriteString("\n")
	}

	for _, s := range m.finished {
		b.WriteString(SuccessStyle.Render(SymbolCheck) + " " + s.label() + "\n")
	}

	if m.current != nil {
		if m.done {
			b.WriteString(ErrorStyle.Render(SymbolCross) + " " + m.current.label() + "\n")
		} else {
			b.WriteString(m.spinner.View() + " " + m.current.label() + "\n")
		}
	}

	if m.done && m.err != nil {
		b.WriteString(ErrorStyle.Render(m.err.Error()) + "\n")
	}
	return b.String()
}

// ProgressView shows import progress as a live spinner list.
// It implements questload.ProgressReporter.
type ProgressView struct {
	program *tea.Program
	exited  chan struct{}
}

var _ questload.ProgressReporter = (*ProgressView)(nil)

// StartProgressView starts rendering to out. Call Finish exactly once.
func StartProgressView(out io.Writer, title string) *ProgressView {
	p := tea.NewProgram(newProgressModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	v := &ProgressView{program: p, exited: make(chan struct{})}

	go func() {
		defer close(v.exited)
		_, _ = p.Run()
	}()
	return v
}

// Report moves the view to phase.
func (v *ProgressView) Report(phase questload.Phase, detail string) {
	v.program.Send(phaseMsg{phase: phase, detail: detail})
}

// Finish marks the run as ended, with err on failure, and waits for the
// final frame to be drawn.
func (v *ProgressView) Finish(err error) {
	v.program.Send(finishMsg{err: err})
	<-v.exited
}
