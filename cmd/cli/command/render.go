package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"immersionhub/cmd/cli/command/client"
	"immersionhub/internal/immersion"
	"immersionhub/internal/microservices/http-api/dto"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderDailyGoals shows each goal with today's amount against its target.
// Inactive goals are listed but never marked complete.
func renderDailyGoals(resp *dto.DailyGoalsResponse) string {
	if len(resp.Goals) == 0 {
		return "No goals yet. Create one with: immersionctl goals create --type time --target 60"
	}

	rows := make([][]string, 0, len(resp.Goals))
	for _, g := range resp.Goals {
		dim := immersion.Dimension(g.Type)
		current := resp.TodayProgress.Sum(dim)

		status := color.HiBlackString("inactive")
		if g.IsActive {
			if resp.TodayProgress.Completed.Get(dim) {
				status = color.GreenString("✓ done")
			} else {
				status = color.YellowString("%s to go", formatAmount(dim, g.Target-current))
			}
		}

		rows = append(rows, []string{
			g.ID,
			g.Type,
			formatAmount(dim, current) + " / " + formatAmount(dim, g.Target),
			progressBar(current, g.Target, 20),
			status,
		})
	}

	header := fmt.Sprintf("Today (%s)\n", resp.TodayProgress.Date.Format("Mon 2006-01-02"))
	return header + renderTable(
		[]string{"ID", "Type", "Progress", "", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func renderGoal(g *dto.GoalResponse) string {
	active := "no"
	if g.IsActive {
		active = "yes"
	}
	return renderTable(
		[]string{"ID", "Type", "Target", "Active"},
		[][]string{{g.ID, g.Type, formatAmount(immersion.Dimension(g.Type), g.Target), active}},
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}

func renderLogs(logs []dto.LogResponse) string {
	if len(logs) == 0 {
		return "No logs found."
	}

	rows := make([][]string, 0, len(logs))
	for _, l := range logs {
		title := l.Description
		if l.Media != nil {
			title = l.Media.Title
		}
		rows = append(rows, []string{
			l.ID,
			l.Date.Local().Format("2006-01-02 15:04"),
			l.Type,
			optionalFloat(l.Time, "m"),
			optionalInt(l.Episodes),
			optionalInt(l.Pages),
			optionalInt(l.Chars),
			strconv.Itoa(l.XP),
			truncate(title, 32),
		})
	}

	return renderTable(
		[]string{"ID", "Date", "Type", "Time", "Eps", "Pages", "Chars", "XP", "Title"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}

func renderStats(stats *immersion.PeriodStatistics) string {
	var b strings.Builder

	t := stats.Totals
	fmt.Fprintf(&b, "%s  %s  (%s)\n",
		color.New(color.Bold).Sprint("Statistics"), string(stats.TimeRange), stats.Type)

	speed := "-"
	if t.AverageReadingSpeed != nil {
		speed = fmt.Sprintf("%.0f chars/h", *t.AverageReadingSpeed)
	}
	b.WriteString(renderTable(
		[]string{"Logs", "XP", "Total hours", "Reading h", "Listening h", "Chars", "Episodes", "Pages", "Avg speed"},
		[][]string{{
			strconv.Itoa(t.TotalLogs),
			strconv.Itoa(t.TotalXP),
			fmt.Sprintf("%.1f", t.TotalTimeHours),
			fmt.Sprintf("%.1f", t.ReadingHours),
			fmt.Sprintf("%.1f", t.ListeningHours),
			strconv.Itoa(t.TotalChars),
			strconv.Itoa(t.TotalEpisodes),
			strconv.Itoa(t.TotalPages),
			speed,
		}},
		[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight},
	))

	if len(stats.StatsByType) > 0 {
		rows := make([][]string, 0, len(stats.StatsByType))
		for _, s := range stats.StatsByType {
			rows = append(rows, []string{
				string(s.Type),
				strconv.Itoa(s.Count),
				fmt.Sprintf("%.1f", s.TotalTimeHours),
				strconv.Itoa(s.TotalXP),
			})
		}
		b.WriteString("\n")
		b.WriteString(renderTable(
			[]string{"Type", "Logs", "Hours", "XP"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
	}

	if t.UntrackedCount > 0 {
		fmt.Fprintf(&b, "\n%s\n", color.HiBlackString("%d log(s) without time; hours may be estimated", t.UntrackedCount))
	}
	return b.String()
}

func renderImportResult(result *client.ImportResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s imported %d log(s)", color.GreenString("✓"), result.Imported)
	if result.Skipped > 0 {
		fmt.Fprintf(&b, ", %s", color.YellowString("skipped %d row(s)", result.Skipped))
	}
	b.WriteString("\n")

	if len(result.Errors) > 0 {
		rows := make([][]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			rows = append(rows, []string{strconv.Itoa(e.Line), e.Message})
		}
		b.WriteString(renderTable([]string{"Line", "Error"}, rows, []columnAlignment{alignRight, alignLeft}))
	}
	return b.String()
}

func formatAmount(dim immersion.Dimension, v float64) string {
	if v < 0 {
		v = 0
	}
	switch dim {
	case immersion.DimensionTime:
		return fmt.Sprintf("%.0fm", v)
	default:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
}

func progressBar(current, target float64, width int) string {
	if target <= 0 {
		return ""
	}
	ratio := current / target
	if ratio > 1 {
		ratio = 1
	}
	if ratio < 0 {
		ratio = 0
	}
	filled := int(ratio * float64(width))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func optionalFloat(v *float64, unit string) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + unit
}

func optionalInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
