// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"mytasks/internal/task"
)

const (
	// EmptyMessage is shown in place of an empty task list.
	EmptyMessage = "You have no tasks"

	// NoSummaryMessage is shown for a task whose summary is empty.
	NoSummaryMessage = "No summary was provided for this task"
)

// FormatTask formats a task card.
// Format: "{N:>4}  {TITLE}\n      {SUMMARY}\n"
func FormatTask(w io.Writer, num int, t task.Task) {
	fmt.Fprintf(w, "%4d  %s\n", num, NormalizeTitle(t.Title))
	fmt.Fprintf(w, "      %s\n", Summary(t))
}

// FormatTasks writes every task numbered from 1, or EmptyMessage when there
// are none and quiet is false.
func FormatTasks(w io.Writer, tasks []task.Task, quiet bool) {
	if len(tasks) == 0 {
		if !quiet {
			fmt.Fprintln(w, EmptyMessage)
		}
		return
	}
	for i, t := range tasks {
		FormatTask(w, i+1, t)
	}
}

// Summary returns the display text for a task summary.
func Summary(t task.Task) string {
	s := flatten(t.Summary)
	if strings.TrimSpace(s) == "" {
		return NoSummaryMessage
	}
	return s
}

// NormalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func NormalizeTitle(title string) string {
	title = flatten(title)
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

func flatten(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
