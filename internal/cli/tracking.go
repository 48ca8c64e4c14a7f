package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/terraincognita07/sitr/internal/services"
	ucli "github.com/urfave/cli/v3"
)

func startDayCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "start-day",
		Usage: "Start your workday",
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			result, err := s.services.Time.StartDay(ctx, userID)
			if err != nil {
				return err
			}
			s.printResult(result)
			return nil
		}),
	}
}

func endDayCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "end-day",
		Usage: "End your workday, closing any active project and break",
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			result, err := s.services.Time.EndDay(ctx, userID)
			if err != nil {
				return err
			}
			s.printResult(result)
			if result.ClosedProject {
				s.printNote("active project was auto-closed")
			}
			if result.ClosedBreak {
				s.printNote("active break was auto-closed")
			}
			return nil
		}),
	}
}

func startCommand() *ucli.Command {
	return &ucli.Command{
		Name:      "start",
		Usage:     "Start working on a project, ending the active one",
		ArgsUsage: "PROJECT",
		Flags: []ucli.Flag{
			&ucli.BoolFlag{Name: "no-create", Usage: "fail instead of creating an unknown project"},
		},
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			name := strings.Join(cmd.Args().Slice(), " ")
			result, err := s.services.Time.StartProject(ctx, userID, name, !cmd.Bool("no-create"))
			if err != nil {
				return err
			}
			s.printResult(result)
			if result.WasCreated {
				s.printNote(fmt.Sprintf("created project '%s'", result.ProjectName))
			}
			if result.ClosedProject {
				s.printNote("previous project was auto-ended")
			}
			if result.ClosedBreak {
				s.printNote("active break was auto-ended")
			}
			return nil
		}),
	}
}

func endCommand() *ucli.Command {
	return &ucli.Command{
		Name:      "end",
		Usage:     "End work on a project, the active one when no name is given",
		ArgsUsage: "[PROJECT]",
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			result, err := s.services.Time.EndProject(ctx, userID, strings.Join(cmd.Args().Slice(), " "))
			if err != nil {
				return err
			}
			s.printResult(result)
			return nil
		}),
	}
}

func breakCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "break",
		Usage: "Pause and resume project work",
		Commands: []*ucli.Command{
			{
				Name:  "start",
				Usage: "Start a break",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "message", Aliases: []string{"m"}, Usage: "reason for the break, e.g. Lunch"},
				},
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					result, err := s.services.Time.StartBreak(ctx, userID, cmd.String("message"))
					if err != nil {
						return err
					}
					s.printResult(result)
					return nil
				}),
			},
			{
				Name:  "end",
				Usage: "End a break without resuming work (see 'sitr continue')",
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					result, err := s.services.Time.EndBreak(ctx, userID)
					if err != nil {
						return err
					}
					s.printResult(result)
					return nil
				}),
			},
		},
	}
}

func continueCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "continue",
		Usage: "End the break and resume the project it interrupted",
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			result, err := s.services.Time.ContinueProject(ctx, userID)
			if err != nil {
				return err
			}
			s.printResult(result)
			return nil
		}),
	}
}

func statusCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "status",
		Usage: "Show what you are tracking right now",
		Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
			status, err := s.services.Events.Status(ctx, userID, s.location)
			if err != nil {
				return err
			}
			printStatus(s, status)
			return nil
		}),
	}
}

func printStatus(s *session, status services.Status) {
	fmt.Fprintf(s.out, "User:    %s <%s>\n", status.User.DisplayName(), status.User.Email)
	switch status.State.State {
	case services.StateNoDay:
		fmt.Fprintln(s.out, "State:   no workday started")
	case services.StateIdle:
		fmt.Fprintln(s.out, "State:   workday open, no active project")
	case services.StateProjectActive:
		fmt.Fprintf(s.out, "State:   working on '%s'\n", status.ActiveProjectName)
	case services.StateOnBreak:
		if status.ResumeProjectName != "" {
			fmt.Fprintf(s.out, "State:   on break from '%s'\n", status.ResumeProjectName)
		} else {
			fmt.Fprintln(s.out, "State:   on break")
		}
	}
	if status.State.DayStartedAt != nil {
		fmt.Fprintf(s.out, "Started: %s\n", status.State.DayStartedAt.In(s.location).Format(clockLayout))
	}
	fmt.Fprintf(s.out, "Worked:  %s\n", services.FormatDuration(status.WorkedToday))
	fmt.Fprintf(s.out, "Breaks:  %s\n", services.FormatDuration(status.BreakToday))
}
