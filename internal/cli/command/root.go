package command

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/remotebean-go/internal/cli/config"
	"github.com/yndnr/remotebean-go/internal/cli/output"
	"github.com/yndnr/remotebean-go/internal/client/remoting"
	"github.com/yndnr/remotebean-go/internal/infra/buildinfo"
	"github.com/yndnr/remotebean-go/internal/telemetry/logger"
)

const envKey = "env"

// Env is the per-invocation state shared by all commands.
type Env struct {
	Config *config.ClientConfig
	Format output.Format
	Logger *slog.Logger
}

// App creates the CLI application. Running it without a command runs
// both demo scenarios.
func App() *cli.App {
	return &cli.App{
		Name:    "remotebean-client",
		Usage:   "Look up and call remote Calculator and Counter components",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			RunCommand(),
			LookupCommand(),
			VersionCommand(),
		},
		Before:          setup,
		Action:          runScenarios,
		HideHelpCommand: true,
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "remotebean server address (default " + remoting.DefaultServer + ")",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "client configuration file (default ~/.remotebean/client.yaml)",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: text, json, yaml",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-call timeout",
		},
		&cli.StringFlag{
			Name:  "distinct",
			Usage: "distinct name of the target deployment",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"V"},
			Usage:   "enable debug logging on stderr",
		},
	}
}

// flagOverrides maps explicitly set global flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	overrides := make(map[string]any)
	if c.IsSet("server") {
		overrides["server"] = c.String("server")
	}
	if c.IsSet("output") {
		overrides["output"] = c.String("output")
	}
	if c.IsSet("timeout") {
		overrides["timeout"] = c.Duration("timeout").String()
	}
	if c.IsSet("distinct") {
		overrides["deployment.distinct"] = c.String("distinct")
	}
	if c.Bool("verbose") {
		overrides["log.level"] = "debug"
	}
	return overrides
}

func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), flagOverrides(c))
	if err != nil {
		return err
	}
	format, err := output.ParseFormat(cfg.Output)
	if err != nil {
		return err
	}

	lc := logger.DefaultConfig()
	lc.Level = cfg.Log.Level
	lc.Format = cfg.Log.Format
	lc.Output = c.App.ErrWriter
	if lc.Output == nil {
		lc.Output = os.Stderr
	}
	l, err := logger.New(lc)
	if err != nil {
		return err
	}

	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[envKey] = &Env{Config: cfg, Format: format, Logger: l}
	return nil
}

// GetEnv returns the state prepared before the command ran.
func GetEnv(c *cli.Context) (*Env, error) {
	if env, ok := c.App.Metadata[envKey].(*Env); ok {
		return env, nil
	}
	return nil, fmt.Errorf("command environment not initialised")
}

func newClient(env *Env) (*remoting.Client, error) {
	rc := env.Config.RemotingConfig()
	rc.Logger = env.Logger
	return remoting.New(rc)
}

func stdout(c *cli.Context) io.Writer {
	if c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func elapsed(start time.Time) string {
	return time.Since(start).Round(time.Millisecond).String()
}

// PrintError prints an error message to stderr.
func PrintError(w io.Writer, err error) {
	if w == nil {
		w = os.Stderr
	}
	fmt.Fprintf(w, "error: %v\n", err)
}
