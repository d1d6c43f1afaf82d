package leadsctl

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leadscrm/leads.go/pkg/constants"
	"github.com/leadscrm/leads.go/pkg/listpage"
	"github.com/leadscrm/leads.go/pkg/models"
	"github.com/leadscrm/leads.go/pkg/store"
)

func newBrowseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Browse, filter and archive leads interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := AppFrom(cmd)
			if err != nil {
				return err
			}

			st := store.New(app.Client,
				store.WithLogger(&app.Logger),
				store.WithFilters(models.Filters{PageSize: models.Ptr(app.Config.PageSize)}),
			)
			page := listpage.New(st, listpage.WithLogger(&app.Logger))

			p := tea.NewProgram(newBrowseModel(cmd.Context(), st, page),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
				tea.WithAltScreen(),
			)
			cancel := st.Subscribe(func(store.State) { p.Send(stateMsg{}) })
			defer cancel()

			_, err = p.Run()
			return err
		},
	}
}

// stateMsg asks for a redraw after the store or the controller changed.
type stateMsg struct{}

type archivedMsg struct{ err error }

type browseModel struct {
	ctx    context.Context
	store  *store.Store
	page   *listpage.Controller
	styles Styles
	grace  time.Duration

	search    textinput.Model
	searching bool
	cursor    int
	flash     string
}

func newBrowseModel(ctx context.Context, st *store.Store, page *listpage.Controller) *browseModel {
	search := textinput.New()
	search.Prompt = "search: "
	search.Placeholder = "name, email, company"
	search.SetValue(page.Draft().Search)
	search.Cursor.SetMode(cursor.CursorStatic)

	return &browseModel{
		ctx:    ctx,
		store:  st,
		page:   page,
		styles: DefaultStyles(),
		grace:  constants.EmptyStateGracePeriod,
		search: search,
	}
}

func (m *browseModel) Init() tea.Cmd {
	// The tick redraws once the empty-state grace period is over.
	return tea.Batch(m.mount(), tea.Tick(m.grace, func(time.Time) tea.Msg { return stateMsg{} }))
}

func (m *browseModel) mount() tea.Cmd {
	return m.run(func(ctx context.Context) { m.page.Mount(ctx) })
}

func (m *browseModel) run(fn func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		fn(m.ctx)
		return stateMsg{}
	}
}

func (m *browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case stateMsg:
		m.clampCursor()
		return m, nil
	case archivedMsg:
		if msg.err == nil {
			m.flash = "Archived"
		}
		m.clampCursor()
		return m, nil
	case tea.KeyMsg:
		if m.page.Confirmation().Open {
			return m, m.confirmKey(msg)
		}
		if m.searching {
			return m, m.searchKey(msg)
		}
		return m.listKey(msg)
	}
	return m, nil
}

func (m *browseModel) confirmKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "enter":
		if m.page.Confirmation().Archiving {
			return nil
		}
		return func() tea.Msg {
			return archivedMsg{err: m.page.ConfirmArchive(m.ctx)}
		}
	case "n", "esc":
		m.page.CancelArchive()
	}
	return nil
}

func (m *browseModel) searchKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.search.Blur()
		m.page.SetSearch(strings.TrimSpace(m.search.Value()))
		m.cursor = 0
		return m.run(m.page.ApplyFilters)
	case "esc":
		m.searching = false
		m.search.Blur()
		m.search.SetValue(m.page.Draft().Search)
		return nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return cmd
}

func (m *browseModel) listKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	leads := m.page.VisibleLeads()

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(leads)-1 {
			m.cursor++
		}
	case " ", "space":
		if m.cursor < len(leads) {
			id := leads[m.cursor].ID
			m.page.Toggle(id, !m.page.IsSelected(id))
		}
	case "a":
		m.page.SelectAll(len(m.page.Selected()) < len(leads))
	case "d":
		ids := m.page.Selected()
		if len(ids) == 0 && m.cursor < len(leads) {
			ids = []int64{leads[m.cursor].ID}
		}
		m.page.RequestArchive(ids...)
	case "/":
		m.searching = true
		return m, m.search.Focus()
	case "s":
		m.page.SetStatus(nextStatus(m.page.Draft().Status))
		m.cursor = 0
		return m, m.run(m.page.ApplyFilters)
	case "c":
		m.search.SetValue("")
		m.cursor = 0
		return m, m.run(m.page.ClearFilters)
	case "n", "right":
		current, _ := m.page.Page()
		m.cursor = 0
		return m, m.run(func(ctx context.Context) { m.page.GoToPage(ctx, current+1) })
	case "p", "left":
		current, _ := m.page.Page()
		m.cursor = 0
		return m, m.run(func(ctx context.Context) { m.page.GoToPage(ctx, current-1) })
	case "r":
		current, _ := m.page.Page()
		return m, m.run(func(ctx context.Context) { m.page.GoToPage(ctx, current) })
	}
	return m, nil
}

func (m *browseModel) clampCursor() {
	n := len(m.page.VisibleLeads())
	if m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// nextStatus cycles "" -> every status -> "".
func nextStatus(s models.LeadStatus) models.LeadStatus {
	i := slices.Index(models.AllLeadStatuses, s)
	if i+1 >= len(models.AllLeadStatuses) {
		return ""
	}
	return models.AllLeadStatuses[i+1]
}

func (m *browseModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("Leads"))
	if d := m.page.Draft(); d.Status != "" {
		b.WriteString(m.styles.Muted.Render("  status: " + string(d.Status)))
	}
	b.WriteString("\n")

	if m.searching || m.search.Value() != "" {
		b.WriteString(m.search.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	leads := m.page.VisibleLeads()
	switch {
	case m.page.ShowEmptyState():
		b.WriteString(m.styles.Muted.Render("No leads found"))
		b.WriteString("\n")
	case len(leads) == 0:
		b.WriteString(m.styles.Muted.Render("Loading..."))
		b.WriteString("\n")
	default:
		b.WriteString(m.styles.Header.Render(fmt.Sprintf("    %-6s %-24s %-28s %-20s %-10s", "ID", "Name", "Email", "Status", "Priority")))
		b.WriteString("\n")
		for i, l := range leads {
			box := "[ ]"
			if m.page.IsSelected(l.ID) {
				box = "[x]"
			}
			line := fmt.Sprintf("%s %-6d %-24s %-28s %-20s %-10s",
				box, l.ID, truncate(l.FullName(), 24), truncate(l.Email, 28), l.Status, l.Priority)
			switch {
			case i == m.cursor:
				line = m.styles.Cursor.Render(line)
			case m.page.IsSelected(l.ID):
				line = m.styles.Selected.Render(line)
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	current, last := m.page.Page()
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("page %d of %d", current, last)))
	if n := len(m.page.Selected()); n > 0 {
		b.WriteString(m.styles.Selected.Render(fmt.Sprintf("  %d selected", n)))
	}
	b.WriteString("\n")

	if c := m.page.Confirmation(); c.Open {
		prompt := fmt.Sprintf("Archive %d lead(s)? [y/n]", len(c.IDs))
		if c.Archiving {
			prompt = "Archiving..."
		}
		if msg := c.Message(); msg != "" {
			prompt += "\n" + m.styles.Error.Render(msg)
		}
		b.WriteString(m.styles.Prompt.Render(prompt))
		b.WriteString("\n")
	} else if err := m.store.Snapshot().Err; err != nil {
		b.WriteString(m.styles.Error.Render(err.Error()))
		b.WriteString("\n")
	} else if m.flash != "" {
		b.WriteString(m.styles.Success.Render(m.flash))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.Muted.Render("j/k move  space select  a all  d archive  / search  s status  c clear  n/p page  r reload  q quit"))
	b.WriteString("\n")
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
