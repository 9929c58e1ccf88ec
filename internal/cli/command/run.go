package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/remotebean-go/internal/cli/output"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/internal/scenario"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// RunCommand returns the run command.
func RunCommand() *cli.Command {
	return &cli.Command{
		Name:  "run",
		Usage: "Run the stateless and stateful scenarios",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "only",
				Usage: "run a single scenario: stateless or stateful",
			},
			&cli.IntFlag{
				Name:  "iterations",
				Usage: "increments and decrements in the stateful scenario",
			},
		},
		Action: runScenarios,
	}
}

func runScenarios(c *cli.Context) error {
	env, err := GetEnv(c)
	if err != nil {
		return err
	}

	var names []string
	if only := c.String("only"); only != "" {
		kind, err := naming.ParseKind(only)
		if err != nil {
			return domain.ErrInvalidArgument.WithDetailsf("--only must be %s or %s, got %q",
				scenario.Stateless, scenario.Stateful, only)
		}
		names = []string{kind.String()}
	}

	client, err := newClient(env)
	if err != nil {
		return err
	}
	defer client.Close()

	out := stdout(c)
	sc := env.Config.ScenarioConfig()
	sc.Logger = env.Logger
	if n := c.Int("iterations"); n > 0 {
		sc.Iterations = n
	}
	if env.Format == output.FormatText {
		sc.OnStep = func(name string, step scenario.Step) {
			output.WriteStep(out, name, step)
		}
	}

	start := time.Now()
	report, runErr := scenario.NewRunner(client, sc).Run(c.Context, names...)
	if report != nil {
		if env.Format == output.FormatText {
			fmt.Fprintln(out)
		}
		if err := output.NewFormatter(env.Format).Format(out, report); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	env.Logger.Debug("scenarios completed", "duration", elapsed(start))
	if env.Format == output.FormatText {
		fmt.Fprintf(out, "\nall scenarios passed against %s\n", client.Server())
	}
	return nil
}
