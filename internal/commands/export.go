package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/export"
	"mytasks/internal/service"
)

func init() {
	Register(&ExportCmd{})
}

// ExportCmd writes the task list as JSON, CSV or PDF.
type ExportCmd struct {
	format string
	output string
}

// SetFormat sets the format and output path (for testing).
func (c *ExportCmd) SetFormat(format, output string) {
	c.format = format
	c.output = output
}

func (c *ExportCmd) Name() string      { return "export" }
func (c *ExportCmd) Aliases() []string { return nil }
func (c *ExportCmd) Synopsis() string  { return "Export tasks" }
func (c *ExportCmd) Usage() string {
	return "mytasks export [--format json|csv|pdf] [--output <file>]"
}
func (c *ExportCmd) NeedsStore() bool { return true }

func (c *ExportCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.format, "format", "json", "")
	fs.StringVar(&c.format, "f", "json", "")
	fs.StringVar(&c.output, "output", "", "")
	fs.StringVar(&c.output, "o", "", "")
}

func (c *ExportCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	format := strings.ToLower(c.format)
	if format == "" {
		format = "json"
	}
	if !slices.Contains(export.Formats, format) {
		fmt.Fprintf(errOut, "error: unknown format: %s\n", c.format)
		return exitcode.UserError
	}

	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return storageFailure(errOut, err)
	}
	data, err := export.Export(tasks, format)
	if err != nil {
		fmt.Fprintf(errOut, "error: export failed: %v\n", err)
		return exitcode.UserError
	}

	if c.output == "" {
		out.Write(data)
		return exitcode.Success
	}
	if err := os.WriteFile(c.output, data, 0644); err != nil {
		fmt.Fprintf(errOut, "error: failed to write %s: %v\n", c.output, err)
		return exitcode.UserError
	}
	if !cfg.Quiet {
		fmt.Fprintf(out, "wrote %d tasks to %s\n", len(tasks), c.output)
	}
	return exitcode.Success
}
