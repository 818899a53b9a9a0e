package chat

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lcfern/converse/directory"
)

// Selection is the outcome of the startup menu.
type Selection struct {
	NewConversation bool
	Session         directory.Session // Valid when NewConversation is false.
}

var (
	menuTitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).MarginBottom(1)
	menuSelectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	menuItemStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	menuHelpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
)

type menuItem struct {
	label string
	id    int64 // 0 means new conversation.
}

type menuModel struct {
	items    []menuItem
	cursor   int
	chosen   bool
	quitting bool
}

func (m menuModel) Init() tea.Cmd { return nil }

func (m menuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case "enter":
		m.chosen = true
		return m, tea.Quit
	case "q", "esc", "ctrl+c":
		m.quitting = true
		return m, tea.Quit
	}
	return m, nil
}

func (m menuModel) View() string {
	if m.chosen || m.quitting {
		return ""
	}

	s := menuTitleStyle.Render("Selecione uma conversa ou crie uma nova:") + "\n"
	for i, item := range m.items {
		if i == m.cursor {
			s += menuSelectedStyle.Render("> "+item.label) + "\n"
		} else {
			s += menuItemStyle.Render("  "+item.label) + "\n"
		}
	}
	s += menuHelpStyle.Render("↑/↓ navegar • enter selecionar • q sair") + "\n"
	return s
}

// ChooseSession renders the startup menu over the session catalog and
// returns the user's choice. Any menu or catalog failure degrades to a
// new conversation so the assistant always starts.
func ChooseSession(ctx context.Context, dir *directory.Directory, out io.Writer) Selection {
	entries, err := dir.List(ctx)
	if err != nil {
		fmt.Fprintf(out, "\n❌ Erro ao carregar conversas: %v\n", err)
		return Selection{NewConversation: true}
	}

	items := []menuItem{{label: "💬 Nova conversa"}}
	for _, e := range entries {
		items = append(items, menuItem{
			label: fmt.Sprintf("ID %d - %s - %s", e.ID, e.FirstMessage, e.UpdatedAt),
			id:    e.ID,
		})
	}

	final, err := tea.NewProgram(menuModel{items: items}).Run()
	if err != nil {
		fmt.Fprintf(out, "\n❌ Erro ao carregar conversas: %v\n", err)
		return Selection{NewConversation: true}
	}

	m := final.(menuModel)
	if m.quitting || m.items[m.cursor].id == 0 {
		return Selection{NewConversation: true}
	}

	session, ok, err := dir.Get(ctx, m.items[m.cursor].id)
	if err != nil || !ok {
		fmt.Fprintf(out, "\n❌ Erro ao carregar conversas: %v\n", err)
		return Selection{NewConversation: true}
	}
	return Selection{Session: session}
}
