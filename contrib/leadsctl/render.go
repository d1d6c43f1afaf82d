package leadsctl

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/leadscrm/leads.go/pkg/models"
)

// Styles used by command output and the browse view.
type Styles struct {
	Title    lipgloss.Style
	Header   lipgloss.Style
	Cursor   lipgloss.Style
	Selected lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Prompt   lipgloss.Style
}

func DefaultStyles() Styles {
	return Styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		Header:   lipgloss.NewStyle().Bold(true).Underline(true),
		Cursor:   lipgloss.NewStyle().Reverse(true),
		Selected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Success:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Error:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Prompt: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("11")).
			Padding(0, 1),
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var leadHeader = table.Row{"ID", "Name", "Email", "Phone", "Status", "Priority", "Type", "Follow-up"}

func leadRow(l models.Lead) table.Row {
	return table.Row{l.ID, l.FullName(), l.Email, l.Phone, l.Status, l.Priority, l.LeadType, l.FollowUpDate.Display()}
}

func renderLeadPage(w io.Writer, page *models.Page[models.Lead]) {
	if len(page.Data) == 0 {
		_, _ = fmt.Fprintln(w, "No leads found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(leadHeader)
	for _, l := range page.Data {
		t.AppendRow(leadRow(l))
	}
	t.Render()

	_, _ = fmt.Fprintf(w, "page %d of %d (%d leads)\n",
		page.Page, models.LastPage(page.Total, page.PageSize), page.Total)
}

func renderLead(w io.Writer, l *models.Lead) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendRows([]table.Row{
		{"ID", l.ID},
		{"Name", l.FullName()},
		{"Email", l.Email},
		{"Phone", l.Phone},
		{"Company", l.Company},
		{"Position", l.Position},
		{"Type", l.LeadType},
		{"Source", l.Source},
		{"Status", l.Status},
		{"Priority", l.Priority},
		{"Contact method", l.ContactMethod},
		{"Follow-up", l.FollowUpDate.Display()},
		{"Archived", l.IsArchived},
		{"Notes", l.Notes},
	})
	if addr := l.DefaultAddress(); addr != nil {
		t.AppendRow(table.Row{"Address", addr.AddressLine1 + ", " + addr.City})
	}
	t.Render()
}

func renderLookups(w io.Writer, sources []models.MasterLeadSource, tags []models.Tag) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Lead sources")
	t.AppendHeader(table.Row{"ID", "Name", "Type"})
	for _, s := range sources {
		t.AppendRow(table.Row{s.ID, s.Name, s.Type})
	}
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Tags")
	t.AppendHeader(table.Row{"ID", "Name"})
	for _, tag := range tags {
		t.AppendRow(table.Row{tag.ID, tag.Name})
	}
	t.Render()
}

func formatIDs(ids []int64) string {
	s := ""
	for i, id := range ids {
		if i > 0 {
			s += ", "
		}
		s += strconv.FormatInt(id, 10)
	}
	return s
}
