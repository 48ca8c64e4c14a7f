package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
)

type ReportFormat string

const (
	FormatASCII    ReportFormat = "ascii"
	FormatCSV      ReportFormat = "csv"
	FormatMarkdown ReportFormat = "markdown"
	FormatJSON     ReportFormat = "json"
)

func ParseReportFormat(raw string) (ReportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "ascii", "table", "text":
		return FormatASCII, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", invalidOperationf("unknown report format %q", raw)
	}
}

func (format ReportFormat) ContentType() string {
	switch format {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatJSON:
		return "application/json"
	default:
		return "text/plain; charset=utf-8"
	}
}

// FormatDuration renders whole minutes as "Xh Ym".
func FormatDuration(duration time.Duration) string {
	minutes := int64(max(duration, 0) / time.Minute)
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func formatClock(value time.Time, location *time.Location) string {
	return value.In(location).Format("15:04")
}

func RenderReport(w io.Writer, period PeriodReport, format ReportFormat) error {
	if period.Location == nil {
		period.Location = time.UTC
	}
	switch format {
	case FormatCSV:
		return renderCSV(w, period)
	case FormatMarkdown:
		return renderMarkdown(w, period)
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(NewReportDocument(period))
	default:
		return renderASCII(w, period)
	}
}

func sessionEnd(session Session, location *time.Location) string {
	if session.Ongoing {
		return "now"
	}
	return formatClock(session.End, location)
}

func renderASCII(w io.Writer, period PeriodReport) error {
	location := period.Location
	report := period.Report
	var out strings.Builder

	fmt.Fprintf(&out, "%s\n", period.Title())
	fmt.Fprintf(&out, "User: %s <%s>\n\n", period.User.DisplayName(), period.User.Email)

	table := tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(table, "DATE\tPROJECT\tSTART\tEND\tDURATION\t")
	for _, session := range report.Sessions {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t\n",
			DayKey(session.Start.In(location)),
			session.Project,
			formatClock(session.Start, location),
			sessionEnd(session, location),
			FormatDuration(session.Duration),
		)
	}
	if len(report.Sessions) == 0 {
		fmt.Fprintln(table, "-\t(no sessions)\t\t\t\t")
	}
	if err := table.Flush(); err != nil {
		return err
	}

	if len(report.Breaks) > 0 {
		out.WriteString("\nBreaks\n")
		table = tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(table, "DATE\tSTART\tEND\tDURATION\tNOTE\t")
		for _, item := range report.Breaks {
			fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t\n",
				DayKey(item.Start.In(location)),
				formatClock(item.Start, location),
				formatClock(item.End, location),
				FormatDuration(item.Duration),
				item.Message,
			)
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	if period.Kind == ReportWeekly {
		out.WriteString("\nDays\n")
		table = tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(table, "DAY\tWORK\tBREAK\t")
		for _, day := range period.Days {
			fmt.Fprintf(table, "%s\t%s\t%s\t\n", day.Day.Format("Mon 2006-01-02"), FormatDuration(day.TotalWork()), FormatDuration(day.TotalBreak()))
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	if totals := report.ProjectTotals(); len(totals) > 0 {
		out.WriteString("\nProjects\n")
		table = tabwriter.NewWriter(&out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(table, "PROJECT\tSESSIONS\tTOTAL\t")
		for _, total := range totals {
			fmt.Fprintf(table, "%s\t%d\t%s\t\n", total.Project, total.Sessions, FormatDuration(total.Duration))
		}
		if err := table.Flush(); err != nil {
			return err
		}
	}

	fmt.Fprintf(&out, "\nTotal work:  %s\n", FormatDuration(report.TotalWork()))
	fmt.Fprintf(&out, "Total break: %s\n", FormatDuration(report.TotalBreak()))
	_, err := io.WriteString(w, out.String())
	return err
}

var reportCSVHeaders = []string{"kind", "date", "project", "start", "end", "duration_minutes", "ongoing", "note"}

func renderCSV(w io.Writer, period PeriodReport) error {
	location := period.Location
	writer := csv.NewWriter(w)
	if err := writer.Write(reportCSVHeaders); err != nil {
		return err
	}

	for _, session := range period.Report.Sessions {
		if err := writer.Write([]string{
			"session",
			DayKey(session.Start.In(location)),
			session.Project,
			formatClock(session.Start, location),
			formatClock(session.End, location),
			strconv.FormatInt(int64(session.Duration/time.Minute), 10),
			strconv.FormatBool(session.Ongoing),
			"",
		}); err != nil {
			return err
		}
	}
	for _, item := range period.Report.Breaks {
		if err := writer.Write([]string{
			"break",
			DayKey(item.Start.In(location)),
			"",
			formatClock(item.Start, location),
			formatClock(item.End, location),
			strconv.FormatInt(int64(item.Duration/time.Minute), 10),
			"false",
			item.Message,
		}); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func markdownCell(value string) string {
	return strings.ReplaceAll(value, "|", `\|`)
}

func renderMarkdown(w io.Writer, period PeriodReport) error {
	location := period.Location
	report := period.Report
	var out strings.Builder

	fmt.Fprintf(&out, "# %s\n\n", period.Title())
	fmt.Fprintf(&out, "User: %s <%s>\n\n", markdownCell(period.User.DisplayName()), period.User.Email)

	out.WriteString("## Sessions\n\n| Date | Project | Start | End | Duration |\n|---|---|---|---|---|\n")
	for _, session := range report.Sessions {
		fmt.Fprintf(&out, "| %s | %s | %s | %s | %s |\n",
			DayKey(session.Start.In(location)),
			markdownCell(session.Project),
			formatClock(session.Start, location),
			sessionEnd(session, location),
			FormatDuration(session.Duration),
		)
	}

	if len(report.Breaks) > 0 {
		out.WriteString("\n## Breaks\n\n| Date | Start | End | Duration | Note |\n|---|---|---|---|---|\n")
		for _, item := range report.Breaks {
			fmt.Fprintf(&out, "| %s | %s | %s | %s | %s |\n",
				DayKey(item.Start.In(location)),
				formatClock(item.Start, location),
				formatClock(item.End, location),
				FormatDuration(item.Duration),
				markdownCell(item.Message),
			)
		}
	}

	if totals := report.ProjectTotals(); len(totals) > 0 {
		out.WriteString("\n## Projects\n\n| Project | Sessions | Total |\n|---|---|---|\n")
		for _, total := range totals {
			fmt.Fprintf(&out, "| %s | %d | %s |\n", markdownCell(total.Project), total.Sessions, FormatDuration(total.Duration))
		}
	}

	fmt.Fprintf(&out, "\n**Total work:** %s  \n**Total break:** %s\n", FormatDuration(report.TotalWork()), FormatDuration(report.TotalBreak()))
	_, err := io.WriteString(w, out.String())
	return err
}

type ReportDocument struct {
	Kind              ReportKind             `json:"kind"`
	Title             string                 `json:"title"`
	UserID            uint                   `json:"user_id"`
	Project           string                 `json:"project,omitempty"`
	From              time.Time              `json:"from"`
	To                time.Time              `json:"to"`
	Sessions          []SessionDocument      `json:"sessions"`
	Breaks            []BreakDocument        `json:"breaks"`
	Days              []DayDocument          `json:"days"`
	Projects          []ProjectTotalDocument `json:"projects"`
	TotalWorkSeconds  int64                  `json:"total_work_seconds"`
	TotalBreakSeconds int64                  `json:"total_break_seconds"`
	TotalWork         string                 `json:"total_work"`
	TotalBreak        string                 `json:"total_break"`
}

type SessionDocument struct {
	ProjectID       uint      `json:"project_id"`
	Project         string    `json:"project"`
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
	Ongoing         bool      `json:"ongoing"`
}

type BreakDocument struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationSeconds int64     `json:"duration_seconds"`
	Message         string    `json:"message,omitempty"`
}

type DayDocument struct {
	Date         string `json:"date"`
	WorkSeconds  int64  `json:"work_seconds"`
	BreakSeconds int64  `json:"break_seconds"`
	Sessions     int    `json:"sessions"`
}

type ProjectTotalDocument struct {
	ProjectID       uint   `json:"project_id"`
	Project         string `json:"project"`
	Sessions        int    `json:"sessions"`
	DurationSeconds int64  `json:"duration_seconds"`
}

func seconds(duration time.Duration) int64 {
	return int64(duration / time.Second)
}

func NewReportDocument(period PeriodReport) ReportDocument {
	location := period.Location
	if location == nil {
		location = time.UTC
	}
	report := period.Report
	document := ReportDocument{
		Kind:              period.Kind,
		Title:             period.Title(),
		UserID:            period.User.ID,
		From:              period.From.In(location),
		To:                period.To.In(location),
		Sessions:          make([]SessionDocument, 0, len(report.Sessions)),
		Breaks:            make([]BreakDocument, 0, len(report.Breaks)),
		Days:              make([]DayDocument, 0, len(period.Days)),
		Projects:          make([]ProjectTotalDocument, 0),
		TotalWorkSeconds:  seconds(report.TotalWork()),
		TotalBreakSeconds: seconds(report.TotalBreak()),
		TotalWork:         FormatDuration(report.TotalWork()),
		TotalBreak:        FormatDuration(report.TotalBreak()),
	}
	if period.Project != nil {
		document.Project = period.Project.Name
	}
	for _, session := range report.Sessions {
		document.Sessions = append(document.Sessions, SessionDocument{
			ProjectID:       session.ProjectID,
			Project:         session.Project,
			Start:           session.Start.In(location),
			End:             session.End.In(location),
			DurationSeconds: seconds(session.Duration),
			Ongoing:         session.Ongoing,
		})
	}
	for _, item := range report.Breaks {
		document.Breaks = append(document.Breaks, BreakDocument{
			Start:           item.Start.In(location),
			End:             item.End.In(location),
			DurationSeconds: seconds(item.Duration),
			Message:         item.Message,
		})
	}
	for _, day := range period.Days {
		document.Days = append(document.Days, DayDocument{
			Date:         DayKey(day.Day),
			WorkSeconds:  seconds(day.TotalWork()),
			BreakSeconds: seconds(day.TotalBreak()),
			Sessions:     len(day.Sessions),
		})
	}
	for _, total := range report.ProjectTotals() {
		document.Projects = append(document.Projects, ProjectTotalDocument{
			ProjectID:       total.ProjectID,
			Project:         total.Project,
			Sessions:        total.Sessions,
			DurationSeconds: seconds(total.Duration),
		})
	}
	return document
}
