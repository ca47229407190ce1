// Package stats derives hour totals and course progress from flight logs.
// Only validated records count toward any figure.
package stats

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/models"
)

// HourTotals holds validated flight time in minutes. Hours are derived on read.
type HourTotals struct {
	Flights          int `json:"flights"`
	TotalMinutes     int `json:"totalMinutes"`
	RealMinutes      int `json:"realMinutes"`
	SimulatorMinutes int `json:"simulatorMinutes"`
	TrainerMinutes   int `json:"trainerMinutes"`
}

func (h HourTotals) TotalHours() float64     { return minutesToHours(h.TotalMinutes) }
func (h HourTotals) RealHours() float64      { return minutesToHours(h.RealMinutes) }
func (h HourTotals) SimulatorHours() float64 { return minutesToHours(h.SimulatorMinutes) }
func (h HourTotals) TrainerHours() float64   { return minutesToHours(h.TrainerMinutes) }

// ComputeHourTotals sums the flight time of validated records.
func ComputeHourTotals(records []models.FlightLog) HourTotals {
	var totals HourTotals
	for _, r := range records {
		if !r.IsValidated() {
			continue
		}
		minutes := r.TotalTime
		if minutes < 0 {
			minutes = 0
		}
		totals.Flights++
		totals.TotalMinutes += minutes
		switch r.FlightType {
		case models.FlightTypeSimulator:
			totals.SimulatorMinutes += minutes
		case models.FlightTypeTrainer:
			totals.TrainerMinutes += minutes
		default:
			totals.RealMinutes += minutes
		}
	}
	return totals
}

// ModuleProgress is the completion of one curriculum module.
type ModuleProgress struct {
	Code      string `json:"code"`
	Label     string `json:"label"`
	Required  int    `json:"required"`
	Completed int    `json:"completed"`
	Percent   int    `json:"percent"`
	Sessions  []int  `json:"sessions"`
}

// ParseSession splits a session name like "VBAS-3" or "vbas-03" into its
// module code and number.
func ParseSession(session string) (string, int, bool) {
	parts := strings.Split(strings.TrimSpace(session), "-")
	if len(parts) < 2 {
		return "", 0, false
	}
	code := strings.ToUpper(strings.TrimSpace(parts[0]))
	n, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if code == "" || err != nil {
		return "", 0, false
	}
	return code, n, true
}

// ComputeProgress reports, per module, how many distinct sessions numbered
// 1..Required have a validated record. Percent is rounded and never above 100.
func ComputeProgress(records []models.FlightLog, modules []constants.CurriculumModule) []ModuleProgress {
	done := completedSessions(records)

	out := make([]ModuleProgress, 0, len(modules))
	for _, m := range modules {
		p := ModuleProgress{
			Code:     m.Code,
			Label:    m.Label,
			Required: m.Required,
			Sessions: []int{},
		}
		for n := 1; n <= m.Required; n++ {
			if done[strings.ToUpper(m.Code)][n] {
				p.Sessions = append(p.Sessions, n)
			}
		}
		p.Completed = len(p.Sessions)
		p.Percent = percent(float64(p.Completed), float64(m.Required))
		out = append(out, p)
	}
	return out
}

func completedSessions(records []models.FlightLog) map[string]map[int]bool {
	done := make(map[string]map[int]bool)
	for _, r := range records {
		if !r.IsValidated() {
			continue
		}
		code, n, ok := ParseSession(r.Session)
		if !ok {
			continue
		}
		if done[code] == nil {
			done[code] = make(map[int]bool)
		}
		done[code][n] = true
	}
	return done
}

// StudentMeter is one student's validated hours against the course goals.
type StudentMeter struct {
	Student          string  `json:"student"`
	RealMinutes      int     `json:"realMinutes"`
	SimulatorMinutes int     `json:"simulatorMinutes"`
	RealHours        float64 `json:"realHours"`
	SimulatorHours   float64 `json:"simulatorHours"`
	TotalHours       float64 `json:"totalHours"`
	RealPercent      int     `json:"realPercent"`
	SimulatorPercent int     `json:"simulatorPercent"`
	TotalPercent     int     `json:"totalPercent"`
	GoalReached      bool    `json:"goalReached"`
}

// ComputeStudentMeter returns a meter per student. Every roster student gets a
// row, in roster order; students found only in the records follow, sorted by
// name. Simulator and trainer time both count toward the simulator goal.
func ComputeStudentMeter(records []models.FlightLog, roster []string, goals constants.HourGoals) []StudentMeter {
	type minutes struct{ real, sim int }
	byStudent := make(map[string]*minutes, len(roster))
	order := make([]string, 0, len(roster))
	for _, s := range roster {
		if _, seen := byStudent[s]; seen {
			continue
		}
		byStudent[s] = &minutes{}
		order = append(order, s)
	}

	var extra []string
	for _, r := range records {
		if !r.IsValidated() {
			continue
		}
		key := studentKey(r.StudentName, roster)
		if key == "" {
			continue
		}
		m, ok := byStudent[key]
		if !ok {
			m = &minutes{}
			byStudent[key] = m
			extra = append(extra, key)
		}
		if r.FlightType == models.FlightTypeReal || r.FlightType == "" {
			m.real += max(r.TotalTime, 0)
		} else {
			m.sim += max(r.TotalTime, 0)
		}
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := make([]StudentMeter, 0, len(order))
	for _, name := range order {
		m := byStudent[name]
		total := minutesToHours(m.real + m.sim)
		out = append(out, StudentMeter{
			Student:          name,
			RealMinutes:      m.real,
			SimulatorMinutes: m.sim,
			RealHours:        minutesToHours(m.real),
			SimulatorHours:   minutesToHours(m.sim),
			TotalHours:       total,
			RealPercent:      percent(minutesToHours(m.real), goals.Real),
			SimulatorPercent: percent(minutesToHours(m.sim), goals.Simulator),
			TotalPercent:     percent(total, goals.Total),
			GoalReached:      goals.Total > 0 && total >= goals.Total,
		})
	}
	return out
}

// StudentProgress is the course tracker row of one student.
type StudentProgress struct {
	Student string           `json:"student"`
	Modules []ModuleProgress `json:"modules"`
}

// ComputeCourseProgress runs ComputeProgress per student, roster students first.
func ComputeCourseProgress(records []models.FlightLog, roster []string, modules []constants.CurriculumModule) []StudentProgress {
	byStudent := make(map[string][]models.FlightLog)
	order := append([]string(nil), roster...)
	known := make(map[string]bool, len(roster))
	for _, s := range roster {
		known[s] = true
	}

	var extra []string
	for _, r := range records {
		key := studentKey(r.StudentName, roster)
		if key == "" {
			continue
		}
		if !known[key] {
			known[key] = true
			extra = append(extra, key)
		}
		byStudent[key] = append(byStudent[key], r)
	}
	sort.Strings(extra)
	order = append(order, extra...)

	out := make([]StudentProgress, 0, len(order))
	seen := make(map[string]bool, len(order))
	for _, name := range order {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, StudentProgress{
			Student: name,
			Modules: ComputeProgress(byStudent[name], modules),
		})
	}
	return out
}

// studentKey maps a record's student to its roster spelling, or to the
// trimmed upper-cased name when the roster does not know it.
func studentKey(name string, roster []string) string {
	if match, ok := common.MatchRoster(name, roster); ok {
		return match
	}
	return strings.ToUpper(strings.TrimSpace(name))
}

func minutesToHours(minutes int) float64 {
	return float64(minutes) / 60
}

func percent(value, goal float64) int {
	if goal <= 0 {
		return 0
	}
	p := int(math.Round(value / goal * 100))
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}
