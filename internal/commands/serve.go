package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/service"
	"mytasks/internal/web"
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd serves the task page over HTTP until interrupted.
type ServeCmd struct {
	addr string
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Serve the task page over HTTP" }
func (c *ServeCmd) Usage() string     { return "mytasks serve [--addr <host:port>]" }
func (c *ServeCmd) NeedsStore() bool  { return true }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", "", "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	if !cfg.Quiet {
		fmt.Fprintf(errOut, "serving on http://%s\n", addr)
	}
	if err := web.New(svc, web.WithRateLimit(cfg.Server.RateLimit)).ListenAndServe(ctx, addr); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
