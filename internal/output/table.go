package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// GroupRow is one line of the results table.
type GroupRow struct {
	Name     string
	Passed   int
	Total    int
	Duration time.Duration
	Error    string
}

// ResultsTable renders the per-group outcome of a run.
func (w *Writer) ResultsTable(title string, rows []GroupRow) {
	t := table.NewWriter()
	t.SetOutputMirror(w.out)
	t.SetTitle(title)
	t.AppendHeader(table.Row{"Group", "Tests", "Passed", "Failed", "Duration", "Status", "Error"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Error", WidthMax: 50, WidthMaxEnforcer: text.WrapSoft},
	})

	var passed, total int
	var elapsed time.Duration
	for _, r := range rows {
		t.AppendRow(table.Row{
			DisplayName(r.Name),
			r.Total,
			r.Passed,
			r.Total - r.Passed,
			formatDuration(r.Duration),
			statusString(r.Passed, r.Total),
			r.Error,
		})
		passed += r.Passed
		total += r.Total
		elapsed += r.Duration
	}
	t.AppendFooter(table.Row{"TOTAL", total, passed, total - passed, formatDuration(elapsed), statusString(passed, total), ""})

	if w.color {
		t.SetStyle(table.StyleColoredDark)
	} else {
		t.SetStyle(table.StyleLight)
	}
	t.Render()
}

// DisplayName turns a group identifier such as "container_manipulations"
// into "Container Manipulations".
func DisplayName(name string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func statusString(passed, total int) string {
	switch {
	case total == 0:
		return "- skip"
	case passed == total:
		return "✓ pass"
	default:
		return "✗ fail"
	}
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
