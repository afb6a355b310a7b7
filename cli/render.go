package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/warp/pettycash/generic"
	"github.com/warp/pettycash/pettycash"
)

// Palette
var (
	ColorBorder = lipgloss.Color("#575653")
	ColorMuted  = lipgloss.Color("#878580")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorYellow = lipgloss.Color("#D0A215")
	ColorRed    = lipgloss.Color("#D14D41")
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorText).Align(lipgloss.Center)
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(ColorAccent)
	valueStyle   = lipgloss.NewStyle().Foreground(ColorText)
	mutedStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	borderStyle  = lipgloss.NewStyle().Foreground(ColorBorder)
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorGreen)
	warnStyle    = lipgloss.NewStyle().Foreground(ColorYellow)
	failureStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorRed)
)

// Table is a bordered text table.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Right   []int // indexes of right-aligned (amount) columns
}

// RenderTitle renders a centered title in a rounded box.
func RenderTitle(title string) string {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(60).
		Align(lipgloss.Center).
		Padding(0, 1).
		Render(titleStyle.Render(title))
}

// RenderTable renders t, or empty when it has neither headers nor rows.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}
	right := make(map[int]bool, len(t.Right))
	for _, i := range t.Right {
		right[i] = true
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  " + headerStyle.Render(t.Title) + "\n")
	}

	rule := func(left, mid, end string) {
		b.WriteString(borderStyle.Render(left))
		for i, w := range widths {
			b.WriteString(borderStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render(mid))
			}
		}
		b.WriteString(borderStyle.Render(end) + "\n")
	}
	row := func(cells []string, style lipgloss.Style) {
		b.WriteString(borderStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
			if right[i] {
				cell = pad + cell
			} else {
				cell += pad
			}
			b.WriteString(style.Render(" " + cell + " "))
			if i < numCols-1 {
				b.WriteString(borderStyle.Render("│"))
			}
		}
		b.WriteString(borderStyle.Render("│") + "\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		row(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, r := range t.Rows {
		if len(r) == 1 && r[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}
		row(r, valueStyle)
	}
	rule("╰", "┴", "╯")
	return b.String()
}

// RenderOutcome renders a result envelope as a one-line verdict plus details.
func RenderOutcome[T any](res generic.Result[T]) string {
	if res.Success {
		return successStyle.Render("✔ " + res.Message)
	}
	out := failureStyle.Render("✘ " + res.Message)
	if len(res.Errors) > 0 {
		out += "\n" + mutedStyle.Render("  Details: "+strings.Join(res.Errors, " | "))
	}
	return out
}

// RenderError renders err the way a failed result would be rendered.
func RenderError(err error) string {
	return RenderOutcome(generic.Failed[struct{}](err))
}

// =============================================================================
// DOMAIN TABLES
// =============================================================================

func transactionRows(txs []pettycash.Transaction) [][]string {
	rows := make([][]string, 0, len(txs))
	for i, t := range txs {
		detail := ""
		if e, ok := t.AsExpense(); ok {
			detail = string(e.Category)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			generic.FormatDate(t.Date),
			string(t.Kind),
			detail,
			t.Reference(),
			FormatAmount(t.Amount),
			renderStatus(t.Status),
			t.RequestedBy,
			t.Narration,
		})
	}
	return rows
}

// TransactionTable lists transactions with a running row number.
func TransactionTable(title string, txs []pettycash.Transaction) Table {
	return Table{
		Title:   title,
		Headers: []string{"#", "Date", "Type", "Category", "Ref", "Amount", "Status", "By", "Narration"},
		Rows:    transactionRows(txs),
		Right:   []int{0, 5},
	}
}

// FundTable lists funds with their balances.
func FundTable(funds []pettycash.Fund) Table {
	rows := make([][]string, 0, len(funds))
	for i, f := range funds {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			f.Name,
			FormatAmount(f.OpeningBalance),
			FormatAmount(f.CurrentBalance),
			generic.FormatDate(f.CreatedOn),
		})
	}
	return Table{
		Title:   "Funds",
		Headers: []string{"#", "Name", "Opening", "Balance", "Opened"},
		Rows:    rows,
		Right:   []int{0, 2, 3},
	}
}

func renderStatus(s pettycash.Status) string {
	switch s {
	case pettycash.StatusApproved:
		return successStyle.Render(string(s))
	case pettycash.StatusPending:
		return warnStyle.Render(string(s))
	case pettycash.StatusRejected:
		return failureStyle.Render(string(s))
	default:
		return string(s)
	}
}
