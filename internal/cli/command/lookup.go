package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/remotebean-go/internal/cli/output"
	"github.com/yndnr/remotebean-go/internal/core/domain"
	"github.com/yndnr/remotebean-go/pkg/naming"
)

// LookupCommand returns the lookup command.
func LookupCommand() *cli.Command {
	return &cli.Command{
		Name:      "lookup",
		Usage:     "Resolve a lookup key and print the binding",
		ArgsUsage: "ejb:<app>/<module>/<distinct>/<component>!<contract>[?stateful]",
		Action:    lookup,
	}
}

// bindingView is the printable form of a resolved binding.
type bindingView struct {
	Key         string   `json:"key" yaml:"key"`
	Kind        string   `json:"kind" yaml:"kind"`
	Application string   `json:"application" yaml:"application"`
	Module      string   `json:"module" yaml:"module"`
	Distinct    string   `json:"distinct" yaml:"distinct"`
	Component   string   `json:"component" yaml:"component"`
	Contract    string   `json:"contract" yaml:"contract"`
	Methods     []string `json:"methods" yaml:"methods"`
}

func lookup(c *cli.Context) error {
	env, err := GetEnv(c)
	if err != nil {
		return err
	}
	if c.NArg() != 1 {
		return domain.ErrInvalidArgument.WithDetails("lookup takes exactly one key")
	}

	d, err := naming.ParseKey(c.Args().First())
	if err != nil {
		return err
	}

	client, err := newClient(env)
	if err != nil {
		return err
	}
	defer client.Close()

	b, err := client.Lookup(c.Context, d)
	if err != nil {
		return fmt.Errorf("lookup %s: %w", d.Key(), err)
	}

	view := bindingView{
		Key:         b.Key.String(),
		Kind:        b.Descriptor.Kind.String(),
		Application: b.Descriptor.Application,
		Module:      b.Descriptor.Module,
		Distinct:    b.Descriptor.Distinct,
		Component:   b.Descriptor.Component,
		Contract:    b.Descriptor.Contract,
		Methods:     b.Methods,
	}
	return output.NewFormatter(env.Format).Format(stdout(c), view)
}
