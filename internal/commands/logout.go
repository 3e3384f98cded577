package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/log"
	"mytasks/internal/service"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd forgets the Google token. The OAuth client file is kept so a
// later login needs no setup.
type LogoutCmd struct{}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove the saved Google token" }
func (c *LogoutCmd) Usage() string     { return "mytasks logout [common flags]" }
func (c *LogoutCmd) NeedsStore() bool  { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	msg := "not logged in"
	if cfg.HasToken() {
		if err := cfg.RemoveToken(); err != nil {
			fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
			return exitcode.AuthError
		}
		log.Debug().Str("path", cfg.TokenPath()).Msg("token removed")

		msg = "ok"
		if cfg.Storage.Driver == config.DriverGTasks {
			msg = "ok (the gtasks storage driver needs 'mytasks login' again)"
		}
	}

	if !cfg.Quiet {
		fmt.Fprintln(out, msg)
	}
	return exitcode.Success
}
