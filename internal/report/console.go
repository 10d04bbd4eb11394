package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/loykin/apiprobe/internal/constants"
	"github.com/loykin/apiprobe/internal/dispatch"
)

// DisplayBody prepares a stored response body for the console. Empty 200/204
// bodies become a "No content" note; unless full is set, bodies longer than
// the display limit are cut and suffixed with "...".
func DisplayBody(status int, body string, full bool) string {
	if strings.TrimSpace(body) == "" && (status == 200 || status == 204) {
		return constants.NoContentMessage
	}
	if full || utf8.RuneCountInString(body) <= constants.DisplayTruncateLimit {
		return body
	}
	runes := []rune(body)
	return string(runes[:constants.DisplayTruncateLimit]) + constants.TruncateSuffix
}

// BackendLabel is the heading used for a backend's panel and text export.
func BackendLabel(name string) string {
	switch name {
	case constants.BackendAName:
		return "AIOHTTP"
	case constants.BackendBName:
		return "TLS Client"
	default:
		return name
	}
}

type styles struct {
	url     lipgloss.Style
	panel   lipgloss.Style
	title   lipgloss.Style
	headerA lipgloss.Style
	headerB lipgloss.Style
	errMsg  lipgloss.Style
	okMsg   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		url:     r.NewStyle().Underline(true),
		panel:   r.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		headerA: r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
		headerB: r.NewStyle().Bold(true).Foreground(lipgloss.Color("3")),
		errMsg:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("1")),
		okMsg:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("2")),
	}
}

// Console renders outcomes as bordered panels. Colors are enabled only when
// the writer is a terminal.
type Console struct {
	w      io.Writer
	full   bool
	styles styles
}

// NewConsole creates a console writing to w. full disables body truncation.
func NewConsole(w io.Writer, full bool) *Console {
	return &Console{w: w, full: full, styles: newStyles(lipgloss.NewRenderer(w))}
}

// Outcome prints the tested URL followed by one panel per backend that ran.
func (c *Console) Outcome(o dispatch.Outcome) {
	_, _ = fmt.Fprintf(c.w, "\n%s %s\n", c.styles.title.Render("Testing URL:"), c.styles.url.Render(o.URL))
	for _, r := range o.Results(constants.BackendAName, constants.BackendBName) {
		header := c.styles.headerA
		if r.Name == constants.BackendBName {
			header = c.styles.headerB
		}
		content := strings.Join([]string{
			c.styles.title.Render("Method: " + o.Method),
			header.Render(fmt.Sprintf("%s Response (%d):", BackendLabel(r.Name), r.Status)),
			DisplayBody(r.Status, r.Body, c.full),
		}, "\n")
		_, _ = fmt.Fprintln(c.w, c.styles.panel.Render(content))
	}
}

// Error prints a failure message.
func (c *Console) Error(msg string) {
	_, _ = fmt.Fprintln(c.w, c.styles.errMsg.Render(msg))
}

// Success prints a success message.
func (c *Console) Success(msg string) {
	_, _ = fmt.Fprintln(c.w, c.styles.okMsg.Render(msg))
}
