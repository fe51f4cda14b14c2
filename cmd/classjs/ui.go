// # cmd/classjs/ui.go
package main

import (
	"fmt"
	"strings"
	"time"

	"classjs/internal/app"
	"classjs/internal/stacktrace"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	failureStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Italic(true)

	frameStyle = lipgloss.NewStyle().PaddingLeft(4)
)

func renderReport(r *app.Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("classjs build"))
	b.WriteString(" ")
	b.WriteString(statusStyle.Render(fmt.Sprintf("run %s in %s", r.RunID, r.Duration.Round(time.Millisecond))))
	b.WriteString("\n")

	summary := fmt.Sprintf("%d generated, %d unchanged, %d failed", r.Generated, r.Skipped, r.Failed)
	if r.Failed == 0 {
		b.WriteString(successStyle.Render(summary))
	} else {
		b.WriteString(failureStyle.Render(summary))
	}
	b.WriteString("\n")

	for _, u := range r.Failures() {
		b.WriteString(failureStyle.Render("FAIL"))
		b.WriteString(" ")
		b.WriteString(u.Source)
		b.WriteString("\n")
		b.WriteString(frameStyle.Render(u.Err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func renderFrames(frames []stacktrace.Frame) string {
	var b strings.Builder
	for _, f := range frames {
		b.WriteString(frameStyle.Render("at " + f.String()))
		b.WriteString("\n")
	}
	return b.String()
}
