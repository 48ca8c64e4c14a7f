package services

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/terraincognita07/sitr/internal/models"
)

// Session is a contiguous span of work on one project.
type Session struct {
	ProjectID uint
	Project   string
	Start     time.Time
	End       time.Time
	Duration  time.Duration
	Ongoing   bool
}

type Break struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
	Message  string
}

// Workday is a WorkdayStart with its matching WorkdayEnd. Open days end at
// the report's now and are flagged Ongoing.
type Workday struct {
	Start   time.Time
	End     time.Time
	Ongoing bool
}

type ProjectTotal struct {
	ProjectID uint
	Project   string
	Duration  time.Duration
	Sessions  int
}

// Report is derived from an event log and never written back.
type Report struct {
	Sessions []Session
	Breaks   []Break
	Workdays []Workday
}

// BuildReport replays events in timestamp then id order. Starting or resuming
// a project closes any open session at that instant. Break Start closes the
// open session but keeps its project paused: a plain Break End reopens a
// session for it, a Resume or Start at the same instant takes over instead.
// While a break is open no session is ongoing. A Break Start without a Break
// End yields no break.
func BuildReport(events []models.Event, now time.Time) Report {
	ordered := slices.Clone(events)
	slices.SortStableFunc(ordered, func(left, right models.Event) int {
		return cmp.Or(left.Timestamp.Compare(right.Timestamp), cmp.Compare(left.ID, right.ID))
	})

	report := Report{Sessions: []Session{}, Breaks: []Break{}, Workdays: []Workday{}}
	var open *Session
	var paused *Session
	var pendingBreak *models.Event
	var openDay *time.Time
	// reopened marks a session started by a plain Break End; it is dropped
	// when it closes at the instant it opened.
	reopened := false

	closeSession := func(at time.Time) {
		if open == nil {
			return
		}
		if !(reopened && at.Equal(open.Start)) {
			open.End = at
			open.Duration = nonNegative(at.Sub(open.Start))
			report.Sessions = append(report.Sessions, *open)
		}
		open = nil
		reopened = false
	}

	for index := range ordered {
		event := ordered[index]
		switch event.Action {
		case models.ActionWorkdayStart:
			if openDay == nil {
				started := event.Timestamp
				openDay = &started
			}
		case models.ActionWorkdayEnd:
			closeSession(event.Timestamp)
			paused = nil
			if openDay != nil {
				report.Workdays = append(report.Workdays, Workday{Start: *openDay, End: event.Timestamp})
				openDay = nil
			}
		case models.ActionProjectStart, models.ActionProjectResume:
			closeSession(event.Timestamp)
			paused = nil
			if event.ProjectID != nil {
				open = &Session{ProjectID: *event.ProjectID, Project: eventProjectName(event), Start: event.Timestamp}
			}
		case models.ActionProjectEnd:
			closeSession(event.Timestamp)
			paused = nil
		case models.ActionBreakStart:
			if open != nil {
				paused = &Session{ProjectID: open.ProjectID, Project: open.Project}
			}
			closeSession(event.Timestamp)
			pendingBreak = &ordered[index]
		case models.ActionBreakEnd:
			if pendingBreak != nil {
				report.Breaks = append(report.Breaks, Break{
					Start:    pendingBreak.Timestamp,
					End:      event.Timestamp,
					Duration: nonNegative(event.Timestamp.Sub(pendingBreak.Timestamp)),
					Message:  pendingBreak.Message,
				})
				pendingBreak = nil
			}
			if paused != nil && open == nil {
				open = &Session{ProjectID: paused.ProjectID, Project: paused.Project, Start: event.Timestamp}
				reopened = true
			}
			paused = nil
		}
	}

	if open != nil {
		open.End = now
		open.Duration = nonNegative(now.Sub(open.Start))
		open.Ongoing = true
		report.Sessions = append(report.Sessions, *open)
	}
	if openDay != nil {
		report.Workdays = append(report.Workdays, Workday{Start: *openDay, End: now, Ongoing: true})
	}
	return report
}

func eventProjectName(event models.Event) string {
	if name := event.ProjectName(); name != "" {
		return name
	}
	if event.ProjectID != nil {
		return fmt.Sprintf("project #%d", *event.ProjectID)
	}
	return ""
}

func nonNegative(duration time.Duration) time.Duration {
	return max(duration, 0)
}

func (report Report) TotalWork() time.Duration {
	var total time.Duration
	for _, session := range report.Sessions {
		total += session.Duration
	}
	return total
}

func (report Report) TotalBreak() time.Duration {
	var total time.Duration
	for _, item := range report.Breaks {
		total += item.Duration
	}
	return total
}

func (report Report) OngoingSession() (Session, bool) {
	for _, session := range report.Sessions {
		if session.Ongoing {
			return session, true
		}
	}
	return Session{}, false
}

// ProjectTotals sums sessions per project, longest first.
func (report Report) ProjectTotals() []ProjectTotal {
	byProject := make(map[uint]*ProjectTotal)
	order := make([]uint, 0)
	for _, session := range report.Sessions {
		total, ok := byProject[session.ProjectID]
		if !ok {
			total = &ProjectTotal{ProjectID: session.ProjectID, Project: session.Project}
			byProject[session.ProjectID] = total
			order = append(order, session.ProjectID)
		}
		total.Duration += session.Duration
		total.Sessions++
	}

	totals := make([]ProjectTotal, 0, len(order))
	for _, projectID := range order {
		totals = append(totals, *byProject[projectID])
	}
	slices.SortStableFunc(totals, func(left, right ProjectTotal) int {
		return cmp.Or(cmp.Compare(right.Duration, left.Duration), cmp.Compare(left.Project, right.Project))
	})
	return totals
}

// FilterProject keeps only the sessions of projectID. Breaks and workdays
// are dropped since they do not belong to a project.
func (report Report) FilterProject(projectID uint) Report {
	filtered := Report{Sessions: []Session{}, Breaks: []Break{}, Workdays: []Workday{}}
	for _, session := range report.Sessions {
		if session.ProjectID == projectID {
			filtered.Sessions = append(filtered.Sessions, session)
		}
	}
	return filtered
}

// DayGroup is the part of a report whose sessions start on one local day.
type DayGroup struct {
	Day      time.Time
	Sessions []Session
	Breaks   []Break
}

func (group DayGroup) TotalWork() time.Duration {
	return Report{Sessions: group.Sessions}.TotalWork()
}

func (group DayGroup) TotalBreak() time.Duration {
	return Report{Breaks: group.Breaks}.TotalBreak()
}

// GroupByDay buckets sessions and breaks by the local day they start on.
// Every day in [from, to) gets a group even when it is empty.
func GroupByDay(report Report, from time.Time, to time.Time, location *time.Location) []DayGroup {
	groups := make([]DayGroup, 0)
	index := make(map[string]int)
	for day := DateAtLocation(from, location); day.Before(to); day = day.AddDate(0, 0, 1) {
		index[DayKey(day)] = len(groups)
		groups = append(groups, DayGroup{Day: day, Sessions: []Session{}, Breaks: []Break{}})
	}

	for _, session := range report.Sessions {
		if position, ok := index[DayKey(session.Start.In(location))]; ok {
			groups[position].Sessions = append(groups[position].Sessions, session)
		}
	}
	for _, item := range report.Breaks {
		if position, ok := index[DayKey(item.Start.In(location))]; ok {
			groups[position].Breaks = append(groups[position].Breaks, item)
		}
	}
	return groups
}
