// Package export renders the task list as JSON, CSV or PDF.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"mytasks/internal/output"
	"mytasks/internal/task"
)

// Formats lists the accepted format names.
var Formats = []string{"json", "csv", "pdf"}

// Export renders tasks in format.
func Export(tasks []task.Task, format string) ([]byte, error) {
	if tasks == nil {
		tasks = []task.Task{}
	}
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(tasks, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "csv":
		var b bytes.Buffer
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"title", "summary"})
		for _, t := range tasks {
			_ = w.Write([]string{t.Title, t.Summary})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	case "pdf":
		return renderPDF(tasks)
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}

// Write renders tasks in format to w.
func Write(w io.Writer, format string, tasks []task.Task) error {
	data, err := Export(tasks, format)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func renderPDF(tasks []task.Task) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("My Tasks", true)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "My Tasks")
	pdf.Ln(14)

	if len(tasks) == 0 {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 6, output.EmptyMessage)
		pdf.Ln(8)
	}
	for i, t := range tasks {
		pdf.SetFont("Arial", "B", 12)
		pdf.MultiCell(0, 7, tr(fmt.Sprintf("%d. %s", i+1, output.NormalizeTitle(t.Title))), "0", "L", false)
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(0, 5, tr(output.Summary(t)), "0", "L", false)
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
