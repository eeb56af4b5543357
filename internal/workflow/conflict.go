package workflow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tandikan/enroll/internal/models"
)

// ConflictOutcome is the tri-state result of a conflict check. An empty
// selection is its own outcome, distinct from "no conflicts".
type ConflictOutcome string

const (
	OutcomeNothingSelected ConflictOutcome = "nothing_selected"
	OutcomeClear           ConflictOutcome = "clear"
	OutcomeConflicts       ConflictOutcome = "conflicts"
)

// ConflictPair names two schedules that meet on at least one shared weekday
// with intersecting time ranges.
type ConflictPair struct {
	First      models.Schedule `json:"first"`
	Second     models.Schedule `json:"second"`
	SharedDays []string        `json:"sharedDays"`
}

// ConflictReport is the result of checking a selected schedule set.
type ConflictReport struct {
	Outcome ConflictOutcome `json:"outcome"`
	Pairs   []ConflictPair  `json:"pairs,omitempty"`
}

// Message renders the report for display.
func (r ConflictReport) Message() string {
	switch r.Outcome {
	case OutcomeNothingSelected:
		return "Select subjects first."
	case OutcomeClear:
		return "No conflicts detected."
	default:
		return fmt.Sprintf("%d conflicting schedule pair(s) detected.", len(r.Pairs))
	}
}

// CheckConflicts evaluates every pair of schedules for weekday and time
// overlap. Time ranges are half-open, so back-to-back sections sharing a
// boundary minute do not conflict. Unparseable meeting times fail the check
// rather than passing silently.
func CheckConflicts(schedules []models.Schedule) (ConflictReport, error) {
	if len(schedules) == 0 {
		return ConflictReport{Outcome: OutcomeNothingSelected}, nil
	}

	type window struct {
		schedule models.Schedule
		days     map[string]struct{}
		start    int
		end      int
	}

	windows := make([]window, 0, len(schedules))
	for _, s := range schedules {
		start, err := parseClock(s.TimeStart)
		if err != nil {
			return ConflictReport{}, fmt.Errorf("schedule %d (%s): %w", s.ID, s.Subject.Code, err)
		}
		end, err := parseClock(s.TimeEnd)
		if err != nil {
			return ConflictReport{}, fmt.Errorf("schedule %d (%s): %w", s.ID, s.Subject.Code, err)
		}
		if end <= start {
			return ConflictReport{}, fmt.Errorf("schedule %d (%s): end %q not after start %q", s.ID, s.Subject.Code, s.TimeEnd, s.TimeStart)
		}
		days := make(map[string]struct{}, len(s.Days))
		for _, d := range s.Days {
			days[normalizeDay(d)] = struct{}{}
		}
		windows = append(windows, window{schedule: s, days: days, start: start, end: end})
	}

	var pairs []ConflictPair
	for i := 0; i < len(windows); i++ {
		for j := i + 1; j < len(windows); j++ {
			a, b := windows[i], windows[j]
			if a.start >= b.end || b.start >= a.end {
				continue
			}
			shared := sharedDays(a.schedule.Days, b.days)
			if len(shared) == 0 {
				continue
			}
			pairs = append(pairs, ConflictPair{First: a.schedule, Second: b.schedule, SharedDays: shared})
		}
	}

	if len(pairs) == 0 {
		return ConflictReport{Outcome: OutcomeClear}, nil
	}
	return ConflictReport{Outcome: OutcomeConflicts, Pairs: pairs}, nil
}

// parseClock converts "HH:MM" or "HH:MM:SS" to minutes since midnight.
func parseClock(raw string) (int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	if len(parts) == 3 {
		second, err := strconv.Atoi(parts[2])
		if err != nil || second < 0 || second > 59 {
			return 0, fmt.Errorf("invalid time %q", raw)
		}
	}
	return hour*60 + minute, nil
}

func normalizeDay(day string) string {
	d := strings.ToLower(strings.TrimSpace(day))
	if len(d) > 3 {
		d = d[:3]
	}
	return d
}

func sharedDays(days []string, other map[string]struct{}) []string {
	var shared []string
	seen := make(map[string]struct{})
	for _, d := range days {
		key := normalizeDay(d)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if _, ok := other[key]; ok {
			shared = append(shared, d)
		}
	}
	return shared
}
