package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/terraincognita07/sitr/internal/models"
	ucli "github.com/urfave/cli/v3"
)

func projectName(cmd *ucli.Command) (string, error) {
	name := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if name == "" {
		return "", errors.New("project name is required")
	}
	return name, nil
}

func projectCommand() *ucli.Command {
	return &ucli.Command{
		Name:    "project",
		Aliases: []string{"projects"},
		Usage:   "Manage projects of the selected user",
		Commands: []*ucli.Command{
			{
				Name:      "add",
				Usage:     "Create a project without starting it",
				ArgsUsage: "NAME",
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					name, err := projectName(cmd)
					if err != nil {
						return err
					}
					project, err := s.services.Projects.Create(ctx, userID, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Created project '%s'\n", project.Name)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List projects",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include archived projects"},
					&ucli.BoolFlag{Name: "alphabet", Usage: "sort by name instead of creation"},
				},
				Action: withUser(listProjects),
			},
			{
				Name:      "archive",
				Usage:     "Archive a project; archived projects cannot be started",
				ArgsUsage: "NAME",
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					name, err := projectName(cmd)
					if err != nil {
						return err
					}
					project, err := s.services.Projects.Archive(ctx, userID, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Archived project '%s'\n", project.Name)
					return nil
				}),
			},
			{
				Name:      "unarchive",
				Usage:     "Restore an archived project",
				ArgsUsage: "NAME",
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					name, err := projectName(cmd)
					if err != nil {
						return err
					}
					project, err := s.services.Projects.Unarchive(ctx, userID, name)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Unarchived project '%s'\n", project.Name)
					return nil
				}),
			},
		},
	}
}

func listProjects(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
	order := models.ProjectOrderCreated
	if cmd.Bool("alphabet") {
		order = models.ProjectOrderName
	}
	projects, err := s.services.Projects.List(ctx, userID, cmd.Bool("all"), order)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		fmt.Fprintln(s.out, "No projects yet. Start one with 'sitr start NAME'.")
		return nil
	}

	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSTATE\tSESSIONS\tCREATED")
	for _, project := range projects {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			project.Name,
			project.State,
			project.TrackingCount,
			project.CreatedAt.In(s.location).Format("2006-01-02"),
		)
	}
	return w.Flush()
}
