// Package studyplan serves the fixed Prelims preparation plan.
package studyplan

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed plan.yaml
var builtinYAML []byte

// Plan is the full study plan document. JSON field names are part of the
// public API.
type Plan struct {
	Overview      Overview `yaml:"overview" json:"overview"`
	Phases        []Phase  `yaml:"phases" json:"phases"`
	WeeklyTargets []string `yaml:"weeklyTargets" json:"weeklyTargets"`
}

// Overview holds the headline dates and totals.
type Overview struct {
	StartDate  string `yaml:"startDate" json:"startDate"`
	ExamDate   string `yaml:"examDate" json:"examDate"`
	TotalDays  int    `yaml:"totalDays" json:"totalDays"`
	TotalWeeks int    `yaml:"totalWeeks" json:"totalWeeks"`
	DailyHours string `yaml:"dailyHours" json:"dailyHours"`
}

// Phase is one block of weeks. Early phases list per-subject tasks, later
// ones a flat task list.
type Phase struct {
	Name         string    `yaml:"name" json:"name"`
	Weeks        string    `yaml:"weeks" json:"weeks"`
	Focus        string    `yaml:"focus" json:"focus"`
	Subjects     []Subject `yaml:"subjects,omitempty" json:"subjects,omitempty"`
	Tasks        []string  `yaml:"tasks,omitempty" json:"tasks,omitempty"`
	DailyRoutine string    `yaml:"dailyRoutine" json:"dailyRoutine"`
}

// Subject is a named group of tasks within a phase.
type Subject struct {
	Name  string   `yaml:"name" json:"name"`
	Tasks []string `yaml:"tasks" json:"tasks"`
}

var defaultPlan = sync.OnceValue(func() *Plan {
	p, err := Parse(builtinYAML)
	if err != nil {
		panic(fmt.Sprintf("studyplan: embedded plan is invalid: %v", err))
	}
	return p
})

// Default returns the built-in plan. Callers must not modify it.
func Default() *Plan {
	return defaultPlan()
}

// Parse decodes and validates a YAML plan.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing study plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads a plan from a YAML file.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading study plan: %w", err)
	}
	return Parse(data)
}

// Validate checks the fields every plan needs.
func (p *Plan) Validate() error {
	if p.Overview.ExamDate == "" {
		return fmt.Errorf("study plan: overview.examDate is required")
	}
	if len(p.Phases) == 0 {
		return fmt.Errorf("study plan: at least one phase is required")
	}
	for i, ph := range p.Phases {
		if ph.Name == "" {
			return fmt.Errorf("study plan: phases[%d].name is required", i)
		}
	}
	return nil
}

// DaysUntilExam returns whole calendar days from now to the exam date. It
// reports false when the date does not parse or the exam has passed.
func (p *Plan) DaysUntilExam(now time.Time) (int, bool) {
	exam, err := time.ParseInLocation(time.DateOnly, p.Overview.ExamDate, now.Location())
	if err != nil {
		return 0, false
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	if exam.Before(today) {
		return 0, false
	}
	return int(math.Round(exam.Sub(today).Hours() / 24)), true
}
