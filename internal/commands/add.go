package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/service"
)

func init() {
	Register(&AddCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	summary string
}

// SetSummary sets the summary (for testing).
func (c *AddCmd) SetSummary(summary string) {
	c.summary = summary
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "mytasks add [--summary <text>] <title...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.summary, "summary", "", "")
	fs.StringVar(&c.summary, "s", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	// Join args to form title
	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	if err := svc.CreateTask(ctx, title, c.summary); err != nil {
		return storageFailure(errOut, err)
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
