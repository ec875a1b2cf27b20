package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modelgraph/pkg/core/entity"
	"github.com/matzehuels/modelgraph/pkg/errors"
	"github.com/matzehuels/modelgraph/pkg/workspace"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// DiagramListModel - Interactive diagram selection
// =============================================================================

// DiagramListModel is the bubbletea model for interactive diagram selection.
type DiagramListModel struct {
	Diagrams []workspace.DiagramSummary
	Cursor   int
	Selected *workspace.DiagramSummary
	Height   int
	Offset   int
}

// NewDiagramListModel creates a new diagram list model.
func NewDiagramListModel(diagrams []workspace.DiagramSummary) DiagramListModel {
	return DiagramListModel{Diagrams: diagrams, Height: 15}
}

func (m DiagramListModel) Init() tea.Cmd {
	return nil
}

func (m DiagramListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Diagrams)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Diagrams) == 0 {
				return m, tea.Quit
			}
			d := m.Diagrams[m.Cursor]
			m.Selected = &d
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m DiagramListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Diagram"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Diagrams))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Diagrams[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, d.Name, d.ViewType,
			strconv.Itoa(d.ModelNodes), strconv.Itoa(d.ViewNodes)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Diagram", "Notation", "Model", "Views").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col >= 3 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Diagrams))))
	return b.String()
}

// =============================================================================
// Diagram Selection
// =============================================================================

// selectDiagram resolves a diagram argument given by UUID or name. Without
// an argument the only diagram is chosen, or the user picks one when stdin
// is a terminal.
func (c *CLI) selectDiagram(ctx context.Context, runner *workspace.Runner, name string, args []string) (entity.ViewID, error) {
	if len(args) > 0 {
		if id, err := entity.ParseViewID(args[0]); err == nil {
			return id, nil
		}
	}
	s, err := runner.Inspect(ctx, name)
	if err != nil {
		return entity.ViewID{}, err
	}

	var chosen *workspace.DiagramSummary
	switch {
	case len(args) > 0:
		chosen, err = findDiagram(s.Diagrams, args[0])
	case len(s.Diagrams) == 1:
		chosen = &s.Diagrams[0]
	case len(s.Diagrams) == 0:
		err = errors.New(errors.ErrCodeNotFound, "project %q has no diagrams", name)
	case !isTerminal(os.Stdin):
		err = errors.New(errors.ErrCodeInvalidInput, "project %q has %d diagrams; name one", name, len(s.Diagrams))
	default:
		chosen, err = pickDiagram(s.Diagrams)
	}
	if err != nil {
		return entity.ViewID{}, err
	}
	return entity.ParseViewID(chosen.ID)
}

// findDiagram matches a diagram name, failing when it is absent or ambiguous.
func findDiagram(diagrams []workspace.DiagramSummary, name string) (*workspace.DiagramSummary, error) {
	var found *workspace.DiagramSummary
	for i := range diagrams {
		if diagrams[i].Name != name {
			continue
		}
		if found != nil {
			return nil, errors.New(errors.ErrCodeInvalidInput, "several diagrams are named %q; use the UUID", name)
		}
		found = &diagrams[i]
	}
	if found == nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no diagram named %q", name)
	}
	return found, nil
}

func pickDiagram(diagrams []workspace.DiagramSummary) (*workspace.DiagramSummary, error) {
	final, err := tea.NewProgram(NewDiagramListModel(diagrams)).Run()
	if err != nil {
		return nil, fmt.Errorf("diagram picker: %w", err)
	}
	if m, ok := final.(DiagramListModel); ok && m.Selected != nil {
		return m.Selected, nil
	}
	return nil, context.Canceled
}
