package cli

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pfeifer.dev/velfilter/plan"
)

func viewResult() plan.Result {
	return plan.Result{
		Order:          plan.SmoothThenLimit,
		Arclength:      []float64{0, 1, 2},
		UpperBound:     []float64{4, 4, 4},
		SmoothedVel:    []float64{4, 4, 4},
		SmoothedAcc:    []float64{0, 0, 0},
		FinalVel:       []float64{4, 4, 4},
		Fallback:       true,
		FallbackReason: "obstacle does not intersect the path",
	}
}

func TestResultRows(t *testing.T) {
	rows := resultRows(viewResult())

	require.Len(t, rows, 3)
	assert.Equal(t, []string{"1", "1.00", "4.000", "4.000", "0.000", "-", "4.000"}, []string(rows[1]))
}

func TestViewModel(t *testing.T) {
	m := newViewModel(viewResult(), "crossing")

	out := m.View()
	assert.Contains(t, out, "crossing (smooth_then_limit)")
	assert.Contains(t, out, "fallback: obstacle does not intersect the path")
	assert.Contains(t, out, "final")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}
