// Package format renders analysis reports and simulation summaries as
// terminal or Markdown tables.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/types"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// NewTable returns a table writer styled for m.
func NewTable(m Mode) table.Writer {
	w := table.NewWriter()
	if m == ASCII {
		w.SetStyle(table.StyleLight)
	}
	return w
}

// Render renders w in the given Mode.
func Render(w table.Writer, m Mode) string {
	if m == Markdown {
		return w.RenderMarkdown()
	}
	return w.Render()
}

// Report renders a report as two tables: one row per competitor with its
// verdict, then the low-win listing. An all-excluded report gets a notice
// instead of an empty recommendation.
func Report(rep types.Report, m Mode) string {
	var b strings.Builder

	verdicts := NewTable(m)
	verdicts.SetTitle("Analysis")
	verdicts.AppendHeader(table.Row{"#", "Competitor", "Wins", "Verdict", "Reasons"})
	reasons := rep.Result.Reasons()
	for i, c := range rep.Roster {
		verdict, why := "recommended", ""
		if rs, ok := reasons[c]; ok {
			verdict = "excluded"
			why = model.Exclusion{Competitor: c, Reasons: rs}.Text()
		}
		verdicts.AppendRow(table.Row{i + 1, c, rep.Distribution.Get(c), verdict, why})
	}
	verdicts.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	b.WriteString(Render(verdicts, m))
	b.WriteString("\n\n")

	if rep.Result.AllExcluded() {
		b.WriteString("Every competitor is excluded; nobody is recommended.\n")
	} else {
		fmt.Fprintf(&b, "Recommended: %s\n", joinCompetitors(rep.Result.Recommendation))
	}

	if len(rep.LowWins) > 0 {
		low := NewTable(m)
		low.SetTitle("Low wins")
		low.AppendHeader(table.Row{"Competitor", "Wins"})
		for _, lw := range rep.LowWins {
			low.AppendRow(table.Row{lw.Competitor, lw.Count})
		}
		low.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
		b.WriteString("\n")
		b.WriteString(Render(low, m))
		b.WriteString("\n")
	}
	return b.String()
}

// KeyValues renders a two-column table of labelled values, in order.
func KeyValues(title string, rows [][2]any, m Mode) string {
	w := NewTable(m)
	if title != "" {
		w.SetTitle(title)
	}
	for _, r := range rows {
		w.AppendRow(table.Row{r[0], r[1]})
	}
	w.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	return Render(w, m)
}

func joinCompetitors(cs []model.Competitor) string {
	parts := make([]string, len(cs))
	for i, c := range cs {
		parts[i] = string(c)
	}
	return strings.Join(parts, ", ")
}
