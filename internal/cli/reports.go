package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/terraincognita07/sitr/internal/services"
	ucli "github.com/urfave/cli/v3"
)

const dateLayout = "2006-01-02"

func formatFlag() ucli.Flag {
	return &ucli.StringFlag{Name: "format", Value: "ascii", Usage: "ascii, csv, markdown or json"}
}

func dayFlag(name string, usage string) ucli.Flag {
	return &ucli.StringFlag{Name: name, Usage: usage + " (YYYY-MM-DD, default today)"}
}

// flagDay parses a YYYY-MM-DD flag as a local day, defaulting to today.
func (s *session) flagDay(cmd *ucli.Command, name string) (time.Time, error) {
	raw := strings.TrimSpace(cmd.String(name))
	if raw == "" {
		return time.Now().In(s.location), nil
	}
	day, err := time.ParseInLocation(dateLayout, raw, s.location)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --%s: expected YYYY-MM-DD", name)
	}
	return day, nil
}

func reportCommand() *ucli.Command {
	return &ucli.Command{
		Name:  "report",
		Usage: "Print timesheets derived from the event log",
		Commands: []*ucli.Command{
			{
				Name:  "daily",
				Usage: "Report one day",
				Flags: []ucli.Flag{dayFlag("date", "day to report"), formatFlag()},
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					day, err := s.flagDay(cmd, "date")
					if err != nil {
						return err
					}
					return s.renderReport(cmd, func() (services.PeriodReport, error) {
						return s.services.Reports.Daily(ctx, userID, day, s.location)
					})
				}),
			},
			{
				Name:  "weekly",
				Usage: "Report the ISO week containing a day",
				Flags: []ucli.Flag{dayFlag("date", "any day of the week"), formatFlag()},
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					day, err := s.flagDay(cmd, "date")
					if err != nil {
						return err
					}
					return s.renderReport(cmd, func() (services.PeriodReport, error) {
						return s.services.Reports.Weekly(ctx, userID, day, s.location)
					})
				}),
			},
			{
				Name:      "project",
				Usage:     "Report one project over a range of days",
				ArgsUsage: "NAME",
				Flags:     []ucli.Flag{dayFlag("from", "first day"), dayFlag("to", "last day"), formatFlag()},
				Action: withUser(func(ctx context.Context, cmd *ucli.Command, s *session, userID uint) error {
					name, err := projectName(cmd)
					if err != nil {
						return err
					}
					from, err := s.flagDay(cmd, "from")
					if err != nil {
						return err
					}
					to, err := s.flagDay(cmd, "to")
					if err != nil {
						return err
					}
					return s.renderReport(cmd, func() (services.PeriodReport, error) {
						return s.services.Reports.Project(ctx, userID, name, from, to, s.location)
					})
				}),
			},
		},
	}
}

// renderReport validates --format before building the report.
func (s *session) renderReport(cmd *ucli.Command, build func() (services.PeriodReport, error)) error {
	format, err := services.ParseReportFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	period, err := build()
	if err != nil {
		return err
	}
	return services.RenderReport(s.out, period, format)
}
