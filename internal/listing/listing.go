// Package listing prints task tables and status lines for the CLI.
package listing

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"

	"github.com/taskban/taskban/internal/taskstore"
)

// Printer writes styled output to one writer.
type Printer struct {
	w      io.Writer
	styles Styles
	width  int
}

// NewPrinter creates a Printer for w. Colors and table width follow the
// terminal when w is one.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{
		w:      w,
		styles: NewStyles(lipgloss.NewRenderer(w)),
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if width, _, err := term.GetSize(int(f.Fd())); err == nil {
			p.width = width
		}
	}
	return p
}

// Styles returns the printer's palette.
func (p *Printer) Styles() Styles {
	return p.styles
}

// Title prints a bold heading.
func (p *Printer) Title(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Title.Render(fmt.Sprintf(format, args...)))
}

// Info prints a muted line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Muted.Render(fmt.Sprintf(format, args...)))
}

// Success prints a confirmation line.
func (p *Printer) Success(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Warning.Render(fmt.Sprintf(format, args...)))
}

// TableOptions controls Tasks.
type TableOptions struct {
	// Limit caps the number of rows; 0 means no limit.
	Limit int
	// Highlight marks one task id, typically the one just moved.
	Highlight int
	// ShowLane adds a lane column, for listings spanning lanes.
	ShowLane bool
}

// Tasks prints tasks as a table in the given order.
func (p *Printer) Tasks(tasks []taskstore.Task, opts TableOptions) {
	if len(tasks) == 0 {
		p.Info("No pending tasks.")
		return
	}

	shown := tasks
	if opts.Limit > 0 && len(shown) > opts.Limit {
		shown = shown[:opts.Limit]
	}

	headers := []string{"ID", "Urg", "Ord", "Est", "Project"}
	if opts.ShowLane {
		headers = append(headers, "Lane")
	}
	headers = append(headers, "Description")

	highlightRow := -1
	rows := make([][]string, 0, len(shown))
	for i, t := range shown {
		row := []string{
			strconv.Itoa(t.ID),
			strconv.FormatFloat(t.Urgency, 'f', 2, 64),
			formatOptional(t.RankKey),
			formatOptional(t.Estimate),
			t.Project,
		}
		if opts.ShowLane {
			row = append(row, t.Lane)
		}
		row = append(row, t.Description)
		rows = append(rows, row)
		if opts.Highlight != 0 && t.ID == opts.Highlight {
			highlightRow = i
		}
	}

	tbl := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.Border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return p.styles.Header
			case row == highlightRow:
				return p.styles.Highlight
			default:
				return p.styles.Cell
			}
		})
	if p.width > 0 {
		tbl = tbl.Width(p.width)
	}
	fmt.Fprintln(p.w, tbl.String())

	if hidden := len(tasks) - len(shown); hidden > 0 {
		p.Info("... and %d more", hidden)
	}
}

// Projects prints project paths indented by depth, marking current.
func (p *Printer) Projects(paths []string, current string) {
	for _, path := range paths {
		depth := strings.Count(path, ".")
		name := path[strings.LastIndex(path, ".")+1:]
		line := strings.Repeat("  ", depth) + name
		if path == current {
			fmt.Fprintln(p.w, p.styles.Title.Render("> "+line))
			continue
		}
		fmt.Fprintln(p.w, "  "+line)
	}
}

func formatOptional(v *float64) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
