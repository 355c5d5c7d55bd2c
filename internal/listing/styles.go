package listing

import "github.com/charmbracelet/lipgloss"

// Colors meet WCAG AA contrast on both black and dark surfaces.
var (
	PrimaryColor   = lipgloss.Color("#A78BFA") // Purple
	SecondaryColor = lipgloss.Color("#10B981") // Green
	WarningColor   = lipgloss.Color("#F59E0B") // Amber
	ErrorColor     = lipgloss.Color("#F87171") // Red
	MutedColor     = lipgloss.Color("#9CA3AF") // Gray
	BorderColor    = lipgloss.Color("#6B7280") // Gray
)

// Styles are bound to one renderer so color support is detected per output.
type Styles struct {
	Title     lipgloss.Style
	Subtitle  lipgloss.Style
	Header    lipgloss.Style
	Cell      lipgloss.Style
	Highlight lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Border    lipgloss.Style
}

// NewStyles builds the palette for r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title: r.NewStyle().
			Bold(true).
			Foreground(PrimaryColor),
		Subtitle: r.NewStyle().
			Foreground(MutedColor).
			Italic(true),
		Header: r.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			Padding(0, 1),
		Cell: r.NewStyle().
			Padding(0, 1),
		Highlight: r.NewStyle().
			Bold(true).
			Foreground(SecondaryColor).
			Padding(0, 1),
		Muted:   r.NewStyle().Foreground(MutedColor),
		Success: r.NewStyle().Foreground(SecondaryColor),
		Warning: r.NewStyle().Foreground(WarningColor),
		Error:   r.NewStyle().Foreground(ErrorColor).Bold(true),
		Border:  r.NewStyle().Foreground(BorderColor),
	}
}
