// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package report renders human-readable run summaries for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"grimm.is/voxdoc/internal/diagnostic"
	"grimm.is/voxdoc/internal/engine"
)

var (
	StyleTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	StyleOk      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	StyleWarn    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	StyleErr     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	StyleSubtle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	StyleComment = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Faint(true)

	StyleBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Options controls what Summary includes.
type Options struct {
	// ShowWarnings lists every warning instead of only counting them.
	ShowWarnings bool
}

// Summary renders the entity counts and diagnostics of a run.
func Summary(res *engine.Result, opts Options) string {
	var rows []string
	for _, g := range res.Registry.Groups() {
		count := StyleSubtle.Render("0")
		if g.Len() > 0 {
			count = StyleOk.Render(fmt.Sprintf("%d", g.Len()))
		}
		rows = append(rows, fmt.Sprintf("%-26s %s", g.DisplayName(), count))
	}

	warnings := res.Diagnostics.Warnings()
	errs := res.Diagnostics.Errors()

	status := StyleOk.Render("OK")
	switch {
	case res.Cancelled:
		status = StyleWarn.Render("CANCELLED")
	case len(errs) > 0:
		status = StyleErr.Render(fmt.Sprintf("%d ERRORS", len(errs)))
	case len(warnings) > 0:
		status = StyleWarn.Render(fmt.Sprintf("%d WARNINGS", len(warnings)))
	}

	header := fmt.Sprintf("%s  %s", StyleTitle.Render("voxdoc"), status)
	stats := StyleComment.Render(fmt.Sprintf("%d files (%d failed), %d statements in %s",
		len(res.Files), res.Failed, res.Statements, res.Duration.Round(time.Millisecond)))

	parts := []string{
		header,
		StyleBox.Render(lipgloss.JoinVertical(lipgloss.Left, rows...)),
		stats,
	}

	for _, d := range errs {
		parts = append(parts, Diagnostic(d))
	}
	if opts.ShowWarnings {
		for _, d := range warnings {
			parts = append(parts, Diagnostic(d))
		}
	} else if len(warnings) > 0 {
		parts = append(parts, StyleSubtle.Render(fmt.Sprintf("%d warnings", len(warnings))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// Diagnostic renders one diagnostic on a single line.
func Diagnostic(d diagnostic.Diagnostic) string {
	switch d.Severity {
	case diagnostic.SeverityError:
		return StyleErr.Render(d.String())
	case diagnostic.SeverityWarning:
		return StyleWarn.Render(d.String())
	default:
		return StyleSubtle.Render(d.String())
	}
}

// HighlightDiff colors a unified diff line by line.
func HighlightDiff(diff string) string {
	lines := strings.Split(diff, "\n")
	for i, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			lines[i] = StyleTitle.Render(line)
		case strings.HasPrefix(line, "@@"):
			lines[i] = StyleComment.Render(line)
		case strings.HasPrefix(line, "+"):
			lines[i] = StyleOk.Render(line)
		case strings.HasPrefix(line, "-"):
			lines[i] = StyleErr.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
