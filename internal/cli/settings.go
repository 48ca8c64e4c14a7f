package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	ucli "github.com/urfave/cli/v3"
)

func configCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "config",
		Usage: "Show or change the settings file",
		Commands: []*ucli.Command{
			{
				Name:  "show",
				Usage: "Print every setting",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					settings, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					out := cmd.Root().Writer
					fmt.Fprintf(out, "# %s\n", settings.Path())
					w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
					for _, entry := range settings.Values() {
						fmt.Fprintf(w, "%s\t%s\n", entry[0], entry[1])
					}
					return w.Flush()
				},
			},
			{
				Name:      "set",
				Usage:     "Change one setting",
				ArgsUsage: "KEY VALUE",
				Action: func(ctx context.Context, cmd *ucli.Command) error {
					if cmd.Args().Len() != 2 {
						return errors.New("usage: sitr config set KEY VALUE")
					}
					settings, err := loadSettings(cmd)
					if err != nil {
						return err
					}
					key, value := cmd.Args().Get(0), cmd.Args().Get(1)
					if err := settings.Set(key, value); err != nil {
						return err
					}
					if err := settings.Save(); err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "✓ %s = %s\n", key, value)
					return nil
				},
			},
		},
	}
}
