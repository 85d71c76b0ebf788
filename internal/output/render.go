package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/todolite/todolite/internal/observability"
	"github.com/todolite/todolite/internal/tui"
)

// Renderer handles styled terminal output.
type Renderer struct {
	width   int
	styled  bool
	printer *message.Printer

	Summary lipgloss.Style
	Muted   lipgloss.Style
	Data    lipgloss.Style
	Error   lipgloss.Style
	Hint    lipgloss.Style
	Success lipgloss.Style

	Header    lipgloss.Style
	Cell      lipgloss.Style
	CellMuted lipgloss.Style
}

// NewRenderer creates a renderer with styles from the default theme.
// Styling is enabled when writing to a TTY, or when forceStyled is true.
func NewRenderer(w io.Writer, forceStyled bool) *Renderer {
	return NewRendererWithTheme(w, forceStyled, tui.ResolveTheme())
}

// NewRendererWithTheme creates a renderer with a specific theme (for testing).
func NewRendererWithTheme(w io.Writer, forceStyled bool, theme tui.Theme) *Renderer {
	width, isTTY := terminalInfo(w)
	styled := isTTY || forceStyled

	r := &Renderer{
		width:   width,
		styled:  styled,
		printer: localePrinter(),
	}

	// lipgloss.NewRenderer does not honor forced styling on a non-TTY
	// writer, so the global profile is raised instead.
	if styled {
		lipgloss.SetColorProfile(2) // TrueColor
	}

	plain := lipgloss.NewStyle()
	r.Summary, r.Muted, r.Data, r.Error, r.Hint, r.Success = plain, plain, plain, plain, plain, plain
	r.Header, r.Cell, r.CellMuted = plain, plain, plain
	if !styled {
		return r
	}

	// Dark variants: background detection is unreliable when piped.
	r.Summary = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Primary.Dark)).Bold(true)
	r.Muted = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted.Dark))
	r.Data = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Foreground.Dark))
	r.Error = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Error.Dark)).Bold(true)
	r.Hint = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted.Dark)).Italic(true)
	r.Success = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Success.Dark))
	r.Header = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Foreground.Dark)).Bold(true)
	r.Cell = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Foreground.Dark))
	r.CellMuted = lipgloss.NewStyle().Foreground(lipgloss.Color(theme.Muted.Dark))
	return r
}

// terminalInfo returns the terminal width and whether the writer is a TTY.
func terminalInfo(w io.Writer) (width int, isTTY bool) {
	width = 80

	if f, ok := w.(*os.File); ok {
		if w, _, err := term.GetSize(f.Fd()); err == nil && w >= 40 {
			width = w
		}
		fi, err := f.Stat()
		if err == nil && (fi.Mode()&os.ModeCharDevice) != 0 {
			isTTY = true
		}
	}

	return width, isTTY
}

// localePrinter formats numbers using the locale from LC_ALL / LANG.
func localePrinter() *message.Printer {
	tag := language.AmericanEnglish
	for _, env := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		v := os.Getenv(env)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		if i := strings.IndexAny(v, ".@"); i >= 0 {
			v = v[:i]
		}
		if t, err := language.Parse(strings.ReplaceAll(v, "_", "-")); err == nil {
			tag = t
			break
		}
	}
	return message.NewPrinter(tag)
}

// RenderResponse renders a success response to the writer.
func (r *Renderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString(r.Summary.Render(resp.Summary))
		b.WriteString("\n\n")
	}

	r.renderData(&b, NormalizeData(resp.Data))

	if page := extractPage(resp.Meta); page != nil {
		b.WriteString(r.Muted.Render(formatPage(r.printer, page)))
		b.WriteString("\n")
	}

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n")
		b.WriteString(r.Muted.Render("Next:"))
		b.WriteString("\n")
		for _, bc := range resp.Breadcrumbs {
			line := r.Muted.Render("  " + bc.Cmd)
			if bc.Description != "" {
				line += r.Muted.Render("  # " + bc.Description)
			}
			b.WriteString(line + "\n")
		}
	}

	if stats := extractStats(resp.Meta); stats != nil {
		if parts := observability.SessionMetricsFromMap(stats).FormatParts(); len(parts) > 0 {
			b.WriteString("\n")
			b.WriteString(r.Muted.Render("Stats: " + strings.Join(parts, " | ")))
			b.WriteString("\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError renders an error response to the writer.
func (r *Renderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder

	b.WriteString(r.Error.Render("Error: " + resp.Error))
	b.WriteString("\n")

	if resp.Hint != "" {
		b.WriteString(r.Hint.Render("Hint: " + resp.Hint))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Renderer) renderData(b *strings.Builder, data any) {
	switch d := data.(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString(r.Muted.Render("(no todos)"))
			b.WriteString("\n")
			return
		}
		r.renderTable(b, d)
	case map[string]any:
		r.renderObject(b, d)
	case string:
		b.WriteString(r.Data.Render(d))
		b.WriteString("\n")
	case nil:
		b.WriteString(r.Muted.Render("(no data)"))
		b.WriteString("\n")
	default:
		b.WriteString(r.Data.Render(fmt.Sprintf("%v", data)))
		b.WriteString("\n")
	}
}

// Column priority for table rendering (lower = higher priority)
var columnPriority = map[string]int{
	"id":          1,
	"title":       2,
	"completed":   3,
	"description": 4,
}

var mutedColumns = map[string]bool{
	"id": true,
}

type column struct {
	key      string
	header   string
	priority int
	muted    bool
	width    int
}

func (r *Renderer) renderTable(b *strings.Builder, data []map[string]any) {
	columns := r.selectColumns(detectColumns(data), data)
	if len(columns) == 0 {
		return
	}

	t := table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return r.Header
			}
			if col < len(columns) && columns[col].muted {
				return r.CellMuted
			}
			return r.Cell
		})

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	t.Headers(headers...)

	for _, item := range data {
		row := make([]string, len(columns))
		for i, col := range columns {
			row[i] = formatCell(item[col.key])
		}
		t.Row(row...)
	}

	b.WriteString(t.String())
	b.WriteString("\n")
}

func detectColumns(data []map[string]any) []column {
	if len(data) == 0 {
		return nil
	}

	var cols []column
	for key, val := range data[0] {
		switch val.(type) {
		case map[string]any, []map[string]any, []any:
			continue
		}
		priority := columnPriority[key]
		if priority == 0 {
			priority = 50
		}
		cols = append(cols, column{
			key:      key,
			header:   formatHeader(key),
			priority: priority,
			muted:    mutedColumns[key],
		})
	}

	sort.Slice(cols, func(i, j int) bool {
		if cols[i].priority != cols[j].priority {
			return cols[i].priority < cols[j].priority
		}
		return cols[i].key < cols[j].key
	})
	return cols
}

// selectColumns drops lowest-priority columns until the table fits the terminal.
func (r *Renderer) selectColumns(cols []column, data []map[string]any) []column {
	for i := range cols {
		cols[i].width = lipgloss.Width(cols[i].header)
		for _, row := range data {
			if w := lipgloss.Width(formatCell(row[cols[i].key])); w > cols[i].width {
				cols[i].width = w
			}
		}
		if cols[i].width > 40 {
			cols[i].width = 40
		}
	}

	const padding = 2
	selected := cols
	for len(selected) > 1 {
		total := 0
		for _, col := range selected {
			total += col.width + padding
		}
		if total <= r.width {
			break
		}
		selected = selected[:len(selected)-1]
	}
	return selected
}

func (r *Renderer) renderObject(b *strings.Builder, data map[string]any) {
	keys := sortedKeys(data)
	if len(keys) == 0 {
		b.WriteString(r.Muted.Render("(no data)"))
		b.WriteString("\n")
		return
	}

	maxLen := 0
	for _, k := range keys {
		if l := len(formatHeader(k)); l > maxLen {
			maxLen = l
		}
	}

	for _, k := range keys {
		label := r.Muted.Render(fmt.Sprintf("%-*s: ", maxLen, formatHeader(k)))
		style := r.Data
		if mutedColumns[k] {
			style = r.CellMuted
		}
		b.WriteString(label + style.Render(formatValue(data[k])) + "\n")
	}
}

// sortedKeys orders object keys by column priority, then name.
func sortedKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k, v := range data {
		switch v.(type) {
		case map[string]any, []map[string]any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, pj := columnPriority[keys[i]], columnPriority[keys[j]]
		if pi == 0 {
			pi = 50
		}
		if pj == 0 {
			pj = 50
		}
		if pi != pj {
			return pi < pj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func formatHeader(key string) string {
	words := strings.Fields(strings.ReplaceAll(key, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// formatCell formats a value for a table cell, truncating long strings.
func formatCell(val any) string {
	s := formatValue(val)
	if r := []rune(s); len(r) > 40 {
		return string(r[:37]) + "..."
	}
	return s
}

func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "yes"
		}
		return "no"
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%.2f", v)
	case int, int64:
		return fmt.Sprintf("%d", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// pageInfo is the pagination block commands attach under meta["page"].
type pageInfo struct {
	number, totalPages, totalItems int
}

func extractPage(meta map[string]any) *pageInfo {
	raw, ok := meta["page"]
	if !ok {
		return nil
	}
	m, ok := NormalizeData(raw).(map[string]any)
	if !ok {
		return nil
	}
	return &pageInfo{
		number:     toInt(m["number"]),
		totalPages: toInt(m["total_pages"]),
		totalItems: toInt(m["total_items"]),
	}
}

func formatPage(p *message.Printer, page *pageInfo) string {
	if page.totalItems == 0 {
		return "No todos"
	}
	noun := "todos"
	if page.totalItems == 1 {
		noun = "todo"
	}
	return p.Sprintf("Page %d of %d · %d %s", page.number, page.totalPages, page.totalItems, noun)
}

func extractStats(meta map[string]any) map[string]any {
	if meta == nil {
		return nil
	}
	stats, _ := meta["stats"].(map[string]any)
	return stats
}

func toInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

// MarkdownRenderer outputs literal Markdown syntax (portable, pipeable).
type MarkdownRenderer struct {
	printer *message.Printer
}

// NewMarkdownRenderer creates a renderer for literal Markdown output.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{printer: localePrinter()}
}

// RenderResponse renders a success response as literal Markdown.
func (r *MarkdownRenderer) RenderResponse(w io.Writer, resp *Response) error {
	var b strings.Builder

	if resp.Summary != "" {
		b.WriteString("## " + resp.Summary + "\n\n")
	}

	switch d := NormalizeData(resp.Data).(type) {
	case []map[string]any:
		if len(d) == 0 {
			b.WriteString("*No todos*\n")
			break
		}
		cols := detectColumns(d)
		headers := make([]string, len(cols))
		seps := make([]string, len(cols))
		for i, c := range cols {
			headers[i] = c.header
			seps[i] = "---"
		}
		b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
		b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
		for _, item := range d {
			cells := make([]string, len(cols))
			for i, c := range cols {
				cells[i] = strings.ReplaceAll(formatCell(item[c.key]), "|", "\\|")
			}
			b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
		}
	case map[string]any:
		for _, k := range sortedKeys(d) {
			b.WriteString("- **" + formatHeader(k) + ":** " + formatValue(d[k]) + "\n")
		}
	case nil:
		b.WriteString("*No data*\n")
	default:
		b.WriteString(fmt.Sprintf("%v\n", d))
	}

	if page := extractPage(resp.Meta); page != nil {
		b.WriteString("\n*" + formatPage(r.printer, page) + "*\n")
	}

	if len(resp.Breadcrumbs) > 0 {
		b.WriteString("\n### Next\n\n")
		for _, bc := range resp.Breadcrumbs {
			line := "- `" + bc.Cmd + "`"
			if bc.Description != "" {
				line += ": " + bc.Description
			}
			b.WriteString(line + "\n")
		}
	}

	if stats := extractStats(resp.Meta); stats != nil {
		if parts := observability.SessionMetricsFromMap(stats).FormatParts(); len(parts) > 0 {
			b.WriteString("\n*Stats: " + strings.Join(parts, " | ") + "*\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderError renders an error response as literal Markdown.
func (r *MarkdownRenderer) RenderError(w io.Writer, resp *ErrorResponse) error {
	var b strings.Builder

	b.WriteString("**Error:** " + resp.Error + "\n")
	if resp.Hint != "" {
		b.WriteString("\n*Hint: " + resp.Hint + "*\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}
