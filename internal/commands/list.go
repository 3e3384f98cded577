package commands

import (
	"context"
	"flag"
	"io"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/output"
	"mytasks/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `mytasks` (no args) and `mytasks list`.
type ListCmd struct{}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "mytasks list [common flags]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	tasks, err := svc.ListTasks(ctx)
	if err != nil {
		return storageFailure(errOut, err)
	}
	output.FormatTasks(out, tasks, cfg.Quiet)
	return exitcode.Success
}
