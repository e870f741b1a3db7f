package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("á", 100)

	cases := []struct {
		name string
		in   *Analysis
		want string
	}{
		{"nil analysis", nil, "Reporte sin título"},
		{"first sentence", &Analysis{ShortSummary: "Patient improved. Continue meds."}, "Patient improved"},
		{"question mark", &Analysis{ShortSummary: "  ¿Dolor persistente? Sí"}, "¿Dolor persistente"},
		{"key point", &Analysis{KeyPoints: []string{"Elevated BP", "other"}}, "Elevated BP"},
		{"empty sentence falls through", &Analysis{ShortSummary: "...", KeyPoints: []string{"Fiebre"}}, "Fiebre"},
		{"decision", &Analysis{Decisions: []string{"Iniciar losartán"}}, "Iniciar losartán"},
		{"empty", &Analysis{}, "Reporte de reunión"},
		{"truncated by runes", &Analysis{ShortSummary: long}, strings.Repeat("á", 80)},
		{"truncated key point", &Analysis{KeyPoints: []string{long}}, strings.Repeat("á", 80)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, DeriveTitle(tc.in))
		})
	}
}

func TestParseFormat(t *testing.T) {
	f, ok := ParseFormat("")
	assert.True(t, ok)
	assert.Equal(t, FormatSOAP, f)

	f, ok = ParseFormat("hpi_ros")
	assert.True(t, ok)
	assert.Equal(t, FormatHPIROS, f)

	_, ok = ParseFormat("dap")
	assert.False(t, ok)
}

func TestSummarize(t *testing.T) {
	r := &Report{
		ID:       "r1",
		Title:    "Control",
		Analysis: &Analysis{ShortSummary: "Control anual", Decisions: []string{"a"}, Tasks: []Task{{}, {}}},
	}
	s := r.Summarize()
	assert.Equal(t, "Control anual", s.Summary)
	assert.Equal(t, 2, s.TasksCount)
	assert.Equal(t, []string{"a"}, s.Decisions)
	assert.Equal(t, FormatSOAP, s.Format)
	assert.NotNil(t, s.Meta)
	assert.Nil(t, s.PatientName)

	empty := (&Report{ID: "r2"}).Summarize()
	assert.Equal(t, []string{}, empty.Decisions)
	assert.Equal(t, 0, empty.TasksCount)
}
