// Package ui carries the user-visible status messaging and the post-action
// navigation flow of the CLI.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Kind classifies a status message. The set is open-ended; unknown kinds fall
// back to plain rendering.
type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindLoading Kind = "loading"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

// Printer writes classified status messages to a target area (one io.Writer
// per logical message area).
type Printer struct {
	Out io.Writer
}

// Show writes text tagged with its kind's style.
func (p *Printer) Show(text string, kind Kind) {
	var styled string
	switch kind {
	case KindSuccess:
		styled = successStyle.Render(text)
	case KindError:
		styled = errorStyle.Render(text)
	case KindLoading:
		styled = loadingStyle.Render(text)
	case KindInfo:
		styled = infoStyle.Render(text)
	default:
		styled = text
	}
	fmt.Fprintln(p.Out, styled)
}

// Successf formats and shows a success message.
func (p *Printer) Successf(format string, a ...interface{}) {
	p.Show(fmt.Sprintf(format, a...), KindSuccess)
}

// Errorf formats and shows an error message.
func (p *Printer) Errorf(format string, a ...interface{}) {
	p.Show(fmt.Sprintf(format, a...), KindError)
}

// Loadingf formats and shows an in-progress message.
func (p *Printer) Loadingf(format string, a ...interface{}) {
	p.Show(fmt.Sprintf(format, a...), KindLoading)
}
