package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/pkg/errors"

	"pfeifer.dev/velfilter/plan"
)

var docStyle = lipgloss.NewStyle().Margin(1, 2)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	fallbackStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	baseStyle     = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240"))
)

type viewModel struct {
	title  string
	result plan.Result
	table  table.Model
}

func formatSpeed(values []float64, i int) string {
	if i >= len(values) {
		return "-"
	}
	return strconv.FormatFloat(values[i], 'f', 3, 64)
}

func resultRows(res plan.Result) []table.Row {
	rows := make([]table.Row, len(res.Arclength))
	for i, s := range res.Arclength {
		rows[i] = table.Row{
			strconv.Itoa(i),
			strconv.FormatFloat(s, 'f', 2, 64),
			formatSpeed(res.UpperBound, i),
			formatSpeed(res.SmoothedVel, i),
			formatSpeed(res.SmoothedAcc, i),
			formatSpeed(res.LimitedVel, i),
			formatSpeed(res.FinalVel, i),
		}
	}
	return rows
}

func newViewModel(res plan.Result, title string) viewModel {
	columns := []table.Column{
		{Title: "#", Width: 5},
		{Title: "s (m)", Width: 9},
		{Title: "bound", Width: 9},
		{Title: "smoothed", Width: 9},
		{Title: "acc", Width: 9},
		{Title: "limited", Width: 9},
		{Title: "final", Width: 9},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(resultRows(res)),
		table.WithFocused(true),
		table.WithHeight(min(len(res.Arclength), 20)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(false)
	t.SetStyles(s)

	return viewModel{title: title, result: res, table: t}
}

func (m viewModel) Init() tea.Cmd {
	return nil
}

func (m viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m viewModel) View() string {
	header := titleStyle.Render(fmt.Sprintf("%s (%s)", m.title, m.result.Order))
	if m.result.Fallback {
		header += "\n" + fallbackStyle.Render("fallback: "+m.result.FallbackReason)
	}
	return docStyle.Render(header+"\n"+baseStyle.Render(m.table.View())+"\n(q to quit)") + "\n"
}

func view(res plan.Result, title string) error {
	p := tea.NewProgram(newViewModel(res, title))
	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "could not show table")
	}
	return nil
}
