package cli

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/terraincognita07/sitr/internal/models"
	"github.com/terraincognita07/sitr/internal/services"
	ucli "github.com/urfave/cli/v3"
)

func emailFlag() ucli.Flag {
	return &ucli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "user email address"}
}

// emailArg takes the email from --email or the first argument.
func emailArg(cmd *ucli.Command) (string, error) {
	email := cmd.String("email")
	if email == "" {
		email = cmd.Args().First()
	}
	if email == "" {
		return "", errors.New("email is required")
	}
	return email, nil
}

func userCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "user",
		Usage: "Manage users; commands work on the selected user",
		Commands: []*ucli.Command{
			{
				Name:  "add",
				Usage: "Create a user",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "first", Aliases: []string{"f"}, Required: true, Usage: "first name"},
					&ucli.StringFlag{Name: "middle", Aliases: []string{"i"}, Usage: "middle initial"},
					&ucli.StringFlag{Name: "last", Aliases: []string{"l"}, Required: true, Usage: "last name"},
					&ucli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true, Usage: "email address"},
				},
				Action: withSession(addUser),
			},
			{
				Name:  "list",
				Usage: "List users",
				Flags: []ucli.Flag{
					&ucli.BoolFlag{Name: "all", Aliases: []string{"a"}, Usage: "include archived users"},
				},
				Action: withSession(listUsers),
			},
			{
				Name:      "select",
				Usage:     "Select the user the tracking commands work on",
				ArgsUsage: "EMAIL",
				Flags:     []ucli.Flag{emailFlag()},
				Action: withSession(func(ctx context.Context, cmd *ucli.Command, s *session) error {
					email, err := emailArg(cmd)
					if err != nil {
						return err
					}
					user, err := s.services.Users.Select(ctx, email)
					if err != nil {
						return err
					}
					if err := s.settings.SelectUser(user.ID, user.Email); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Selected %s <%s>\n", user.DisplayName(), user.Email)
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "Change a user's names or email",
				ArgsUsage: "EMAIL",
				Flags: []ucli.Flag{
					emailFlag(),
					&ucli.StringFlag{Name: "first", Usage: "new first name"},
					&ucli.StringFlag{Name: "middle", Usage: "new middle initial, empty to clear"},
					&ucli.StringFlag{Name: "last", Usage: "new last name"},
					&ucli.StringFlag{Name: "new-email", Usage: "new email address"},
				},
				Action: withSession(updateUser),
			},
			{
				Name:      "archive",
				Usage:     "Archive a user; archived users cannot track time",
				ArgsUsage: "EMAIL",
				Flags:     []ucli.Flag{emailFlag()},
				Action: withSession(func(ctx context.Context, cmd *ucli.Command, s *session) error {
					email, err := emailArg(cmd)
					if err != nil {
						return err
					}
					user, err := s.services.Users.Archive(ctx, email)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Archived %s\n", user.Email)
					return nil
				}),
			},
			{
				Name:      "unarchive",
				Usage:     "Restore an archived user",
				ArgsUsage: "EMAIL",
				Flags:     []ucli.Flag{emailFlag()},
				Action: withSession(func(ctx context.Context, cmd *ucli.Command, s *session) error {
					email, err := emailArg(cmd)
					if err != nil {
						return err
					}
					user, err := s.services.Users.Unarchive(ctx, email)
					if err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Unarchived %s\n", user.Email)
					return nil
				}),
			},
			{
				Name:      "delete",
				Usage:     "Delete a user",
				ArgsUsage: "EMAIL",
				Flags: []ucli.Flag{
					emailFlag(),
					&ucli.BoolFlag{Name: "cascade", Usage: "also delete the user's projects and events"},
				},
				Action: withSession(func(ctx context.Context, cmd *ucli.Command, s *session) error {
					email, err := emailArg(cmd)
					if err != nil {
						return err
					}
					user, err := s.services.Users.Delete(ctx, email, cmd.Bool("cascade"))
					if err != nil {
						return err
					}
					if err := s.settings.ClearUser(user.ID); err != nil {
						return err
					}
					fmt.Fprintf(s.out, "✓ Deleted %s\n", user.Email)
					return nil
				}),
			},
		},
	}
}

// addUser selects the new user when nobody is selected yet.
func addUser(ctx context.Context, cmd *ucli.Command, s *session) error {
	user, err := s.services.Users.Create(ctx, services.UserInput{
		FirstName:     cmd.String("first"),
		MiddleInitial: cmd.String("middle"),
		LastName:      cmd.String("last"),
		Email:         cmd.String("email"),
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "✓ Created %s <%s> (id %d)\n", user.DisplayName(), user.Email, user.ID)

	if s.settings.CurrentUserID() == 0 {
		if err := s.settings.SelectUser(user.ID, user.Email); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "✓ Selected %s\n", user.Email)
	}
	return nil
}

func listUsers(ctx context.Context, cmd *ucli.Command, s *session) error {
	users, err := s.services.Users.List(ctx, cmd.Bool("all"))
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Fprintln(s.out, "No users found. Create one with 'sitr user add'.")
		return nil
	}

	current := s.settings.CurrentUserID()
	w := tabwriter.NewWriter(s.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tID\tNAME\tEMAIL\tSTATE\tLAST ACTIVE")
	for _, user := range users {
		marker := ""
		if user.ID == current {
			marker = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", marker, user.ID, user.DisplayName(), user.Email, user.State, lastActive(user, s))
	}
	return w.Flush()
}

func lastActive(user models.User, s *session) string {
	if user.LastActive == nil {
		return "-"
	}
	return user.LastActive.In(s.location).Format("2006-01-02 15:04")
}

func updateUser(ctx context.Context, cmd *ucli.Command, s *session) error {
	email, err := emailArg(cmd)
	if err != nil {
		return err
	}

	update := services.UserUpdate{}
	if cmd.IsSet("first") {
		value := cmd.String("first")
		update.FirstName = &value
	}
	if cmd.IsSet("middle") {
		value := cmd.String("middle")
		update.MiddleInitial = &value
	}
	if cmd.IsSet("last") {
		value := cmd.String("last")
		update.LastName = &value
	}
	if cmd.IsSet("new-email") {
		value := cmd.String("new-email")
		update.Email = &value
	}

	user, err := s.services.Users.Update(ctx, email, update)
	if err != nil {
		return err
	}
	if user.ID == s.settings.CurrentUserID() && user.Email != s.settings.CurrentUserEmail() {
		if err := s.settings.SelectUser(user.ID, user.Email); err != nil {
			return err
		}
	}
	fmt.Fprintf(s.out, "✓ Updated %s <%s> (id %d)\n", user.DisplayName(), user.Email, user.ID)
	return nil
}
