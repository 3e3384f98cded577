package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/service"
	"mytasks/internal/theme"
)

func init() {
	Register(&ThemeCmd{})
}

// ThemeCmd prints, sets, or flips the display theme.
type ThemeCmd struct{}

func (c *ThemeCmd) Name() string      { return "theme" }
func (c *ThemeCmd) Aliases() []string { return nil }
func (c *ThemeCmd) Synopsis() string  { return "Show or change the theme" }
func (c *ThemeCmd) Usage() string     { return "mytasks theme [light|dark|toggle]" }
func (c *ThemeCmd) NeedsStore() bool  { return true }

func (c *ThemeCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ThemeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}

	if len(args) == 0 {
		t, err := svc.Theme(ctx)
		if err != nil {
			return storageFailure(errOut, err)
		}
		fmt.Fprintln(out, t)
		return exitcode.Success
	}

	var value theme.Theme
	if args[0] != "toggle" {
		t, err := theme.Parse(args[0])
		if errors.Is(err, theme.ErrInvalidTheme) {
			fmt.Fprintf(errOut, "error: invalid theme: %s\n", args[0])
			return exitcode.UserError
		}
		value = t
	}

	t, err := svc.ToggleTheme(ctx, value)
	if err != nil {
		return storageFailure(errOut, err)
	}
	if !cfg.Quiet {
		fmt.Fprintln(out, t)
	}
	return exitcode.Success
}
