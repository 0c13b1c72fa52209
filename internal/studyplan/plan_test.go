package studyplan

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soyeahso/prelims-tutor/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func silentLog() *logging.Logger {
	return logging.New(nil, "silent")
}

const minimalPlan = `
overview:
  startDate: "2026-02-01"
  examDate: "2026-05-24"
  totalDays: 112
  totalWeeks: 16
  dailyHours: "6"
phases:
  - name: Only phase
    weeks: 1-16
    focus: Everything
    tasks: [Read, Revise]
    dailyRoutine: Study
weeklyTargets: ["Week 1: Start"]
`

func TestDefault(t *testing.T) {
	p := Default()

	assert.Equal(t, "2026-01-31", p.Overview.StartDate)
	assert.Equal(t, "2026-05-24", p.Overview.ExamDate)
	assert.Equal(t, 113, p.Overview.TotalDays)
	assert.Equal(t, 16, p.Overview.TotalWeeks)
	assert.Equal(t, "8-10 recommended", p.Overview.DailyHours)

	require.Len(t, p.Phases, 4)
	assert.Equal(t, "Phase 1: Foundation", p.Phases[0].Name)
	require.Len(t, p.Phases[0].Subjects, 4)
	assert.Equal(t, "Polity", p.Phases[0].Subjects[2].Name)
	assert.Contains(t, p.Phases[0].Subjects[2].Tasks, "Fundamental Rights & DPSP")
	assert.Len(t, p.Phases[1].Subjects, 6)
	assert.Empty(t, p.Phases[2].Subjects)
	assert.Len(t, p.Phases[2].Tasks, 6)
	assert.Equal(t, "2-3 light mock tests", p.Phases[3].Tasks[2])

	require.Len(t, p.WeeklyTargets, 16)
	assert.Equal(t, "Week 1: History NCERT (Ancient + Medieval)", p.WeeklyTargets[0])
	assert.Equal(t, "Week 16: Final prep + Confidence + Exam ready", p.WeeklyTargets[15])
}

func TestDefault_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(Default())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	overview := doc["overview"].(map[string]any)
	assert.Equal(t, "2026-01-31", overview["startDate"])
	assert.EqualValues(t, 113, overview["totalDays"])

	phases := doc["phases"].([]any)
	first := phases[0].(map[string]any)
	assert.Contains(t, first, "subjects")
	assert.NotContains(t, first, "tasks")
	assert.Equal(t, "6 hrs static + 1 hr current affairs + 1 hr revision", first["dailyRoutine"])

	third := phases[2].(map[string]any)
	assert.Contains(t, third, "tasks")
	assert.NotContains(t, third, "subjects")

	assert.Len(t, doc["weeklyTargets"], 16)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"not yaml", "overview: [", "parsing study plan"},
		{"no exam date", "phases: [{name: x}]", "examDate"},
		{"no phases", `overview: {examDate: "2026-05-24"}`, "at least one phase"},
		{"unnamed phase", "overview: {examDate: x}\nphases: [{focus: y}]", "phases[0].name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestDaysUntilExam(t *testing.T) {
	p := Default()
	tests := []struct {
		name string
		now  time.Time
		want int
		ok   bool
	}{
		{"plan start", time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC), 112, true},
		{"day before", time.Date(2026, 5, 23, 23, 59, 0, 0, time.UTC), 1, true},
		{"exam day", time.Date(2026, 5, 24, 8, 0, 0, 0, time.UTC), 0, true},
		{"after exam", time.Date(2026, 5, 25, 0, 0, 0, 0, time.UTC), 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days, ok := p.DaysUntilExam(tt.now)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, days)
		})
	}

	bad := &Plan{Overview: Overview{ExamDate: "late May"}}
	_, ok := bad.DaysUntilExam(time.Now())
	assert.False(t, ok)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalPlan), 0o600))

	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 112, p.Overview.TotalDays)
	assert.Equal(t, []string{"Read", "Revise"}, p.Phases[0].Tasks)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_Builtin(t *testing.T) {
	l, err := NewLoader("", silentLog())
	require.NoError(t, err)
	assert.Same(t, Default(), l.Current())
	require.NoError(t, l.Watch())
	require.NoError(t, l.Reload())
	require.NoError(t, l.Close())
}

func TestLoader_BadOverrideFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte("phases: []"), 0o600))

	_, err := NewLoader(path, silentLog())
	assert.Error(t, err)
}

func TestLoader_ReloadKeepsPreviousOnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalPlan), 0o600))

	l, err := NewLoader(path, silentLog())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("overview: ["), 0o600))
	assert.Error(t, l.Reload())
	assert.Equal(t, 112, l.Current().Overview.TotalDays)
}

func TestLoader_WatchReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalPlan), 0o600))

	l, err := NewLoader(path, silentLog())
	require.NoError(t, err)
	l.debounce = 10 * time.Millisecond
	require.NoError(t, l.Watch())
	defer l.Close()

	updated := `
overview:
  examDate: "2026-05-24"
  totalDays: 90
phases:
  - name: Sprint
`
	require.NoError(t, os.WriteFile(path, []byte(updated), 0o600))

	assert.Eventually(t, func() bool {
		return l.Current().Overview.TotalDays == 90
	}, 5*time.Second, 20*time.Millisecond)
}
