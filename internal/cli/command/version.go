package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/remotebean-go/internal/cli/output"
	"github.com/yndnr/remotebean-go/internal/infra/buildinfo"
)

// VersionCommand returns the version command.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Print build information",
		Action: func(c *cli.Context) error {
			env, err := GetEnv(c)
			if err != nil {
				return err
			}
			return output.NewFormatter(env.Format).Format(stdout(c), buildinfo.Get())
		},
	}
}
