package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/cellforge/pkg/templatedb"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// TemplateListModel - Interactive template selection
// =============================================================================

// TemplateListModel is the bubbletea model for picking a stored template.
// Typing filters by cell name; Selected is set when the user presses enter.
type TemplateListModel struct {
	Records  []templatedb.Record
	Filter   string
	Cursor   int
	Offset   int
	Height   int
	Selected *templatedb.Record
}

// NewTemplateListModel creates a list over recs.
func NewTemplateListModel(recs []templatedb.Record) TemplateListModel {
	return TemplateListModel{Records: recs, Height: 15}
}

// visible returns the records matching the filter.
func (m TemplateListModel) visible() []templatedb.Record {
	if m.Filter == "" {
		return m.Records
	}
	var out []templatedb.Record
	for _, r := range m.Records {
		if strings.Contains(r.Cell, m.Filter) {
			out = append(out, r)
		}
	}
	return out
}

func (m TemplateListModel) Init() tea.Cmd {
	return nil
}

func (m TemplateListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		recs := m.visible()
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyUp:
			if m.Cursor > 0 {
				m.Cursor--
			}
		case tea.KeyDown:
			if m.Cursor < len(recs)-1 {
				m.Cursor++
			}
		case tea.KeyEnter:
			if len(recs) == 0 {
				return m, nil
			}
			rec := recs[m.Cursor]
			m.Selected = &rec
			return m, tea.Quit
		case tea.KeyBackspace:
			if m.Filter != "" {
				m.Filter = m.Filter[:len(m.Filter)-1]
				m.Cursor, m.Offset = 0, 0
			}
		case tea.KeyRunes:
			m.Filter += string(msg.Runes)
			m.Cursor, m.Offset = 0, 0
		}
		if m.Cursor < m.Offset {
			m.Offset = m.Cursor
		}
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m TemplateListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Template"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  type to filter  ⏎ select  esc quit"))
	b.WriteString("\n")
	if m.Filter != "" {
		b.WriteString(StyleHighlight.Render("filter: " + m.Filter))
	}
	b.WriteString("\n")

	recs := m.visible()
	end := min(m.Offset+m.Height, len(recs))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		r := recs[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		bounds := r.Bounds.Rect()
		pins := make([]string, len(r.Pins))
		for j, p := range r.Pins {
			pins[j] = p.Name
		}
		rows = append(rows, []string{cursor, r.Cell, fmt.Sprintf("%dx%d", bounds.Width(), bounds.Height()), strconv.Itoa(len(r.Pins)), strings.Join(pins, " ")})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Cell", "Size", "Pins", "Names").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleTableHeader
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 4 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	if len(recs) == 0 {
		b.WriteString(listDimStyle.Render("  no matching templates"))
	} else {
		b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(recs))))
	}

	return b.String()
}
