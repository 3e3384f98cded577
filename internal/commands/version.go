package commands

import (
	"cmp"
	"context"
	"flag"
	"fmt"
	"io"
	"runtime"

	"mytasks/internal/config"
	"mytasks/internal/exitcode"
	"mytasks/internal/service"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0"

func init() {
	Register(&VersionCmd{})
}

// VersionCmd prints the version, and with --verbose where data is stored.
type VersionCmd struct {
	verbose bool
}

func (c *VersionCmd) Name() string      { return "version" }
func (c *VersionCmd) Aliases() []string { return nil }
func (c *VersionCmd) Synopsis() string  { return "Print version" }
func (c *VersionCmd) Usage() string     { return "mytasks version [--verbose]" }
func (c *VersionCmd) NeedsStore() bool  { return false }

func (c *VersionCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.verbose, "verbose", false, "")
	fs.BoolVar(&c.verbose, "v", false, "")
}

// SetVerbose sets the --verbose flag (for testing).
func (c *VersionCmd) SetVerbose(v bool) { c.verbose = v }

func (c *VersionCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprintf(out, "%s %s\n", config.AppName, Version)
	if !c.verbose {
		return exitcode.Success
	}

	fmt.Fprintf(out, "go:      %s\n", runtime.Version())
	fmt.Fprintf(out, "config:  %s\n", cfg.Dir)
	fmt.Fprintf(out, "storage: %s\n", describeStorage(cfg))
	return exitcode.Success
}

// describeStorage names the configured backend and its location.
func describeStorage(cfg *config.Config) string {
	switch driver := cfg.Storage.Driver; driver {
	case "", config.DriverFile, config.DriverSQLite:
		return cmp.Or(driver, config.DriverFile) + " " + cfg.StoragePath()
	case config.DriverRedis:
		return fmt.Sprintf("redis %s db %d", cfg.Storage.RedisAddr, cfg.Storage.RedisDB)
	case config.DriverGTasks:
		return fmt.Sprintf("gtasks list %q", cfg.Storage.GTasksList)
	default:
		return driver
	}
}
