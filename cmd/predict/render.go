package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"loopplanner/internal/app/predict"
	"loopplanner/internal/domain/survival"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFA500"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#EEEEEE")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	rejectedStyle = cellStyle.
			Foreground(lipgloss.Color("#888888"))

	failStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF5F5F"))

	okStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5FD75F"))

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D7AF00"))
)

// readPlan reads one action per line. Blank lines and lines starting with #
// are ignored.
func readPlan(r io.Reader) ([]string, error) {
	var actions []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		actions = append(actions, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	return actions, nil
}

func renderReport(resp predict.Response) string {
	rows := make([][]string, 0, len(resp.Timeline))
	rejected := map[int]bool{}
	for i, step := range resp.Timeline {
		note := step.Warning
		if step.Rejected && step.FailureReason != nil {
			note = *step.FailureReason
			rejected[i+1] = true
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", step.Index),
			step.Action,
			fmt.Sprintf("%.1fs", step.ActionDuration),
			fmt.Sprintf("%.1f", step.TimeElapsed),
			fmt.Sprintf("%.2f", step.Vitals.Air),
			fmt.Sprintf("%.2f", step.Vitals.Water),
			fmt.Sprintf("%.2f", step.Vitals.Food),
			step.Location,
			note,
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3C3C3C"))).
		Headers("#", "Action", "Took", "Time", "Air", "Water", "Food", "Location", "Note").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case rejected[row+1]:
				return rejectedStyle
			default:
				return cellStyle
			}
		})

	var b strings.Builder
	b.WriteString(titleStyle.Render("Loop prediction"))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(renderSummary(resp))
	return b.String()
}

func renderSummary(resp predict.Response) string {
	s := resp.Summary
	lines := []string{}
	if s.LoopFailed && s.FailureReason != nil && s.FailureIndex != nil {
		lines = append(lines, failStyle.Render(fmt.Sprintf("Loop fails at step %d: %s", *s.FailureIndex, *s.FailureReason)))
	} else {
		lines = append(lines, okStyle.Render("Loop survives"))
	}
	lines = append(lines,
		fmt.Sprintf("Steps %d, elapsed %.1fs, ends at %s", s.LoopLength, s.TimeElapsed, s.Location),
		fmt.Sprintf("Air %.2f  Water %.2f  Food %.2f", s.FinalVitals.Air, s.FinalVitals.Water, s.FinalVitals.Food),
	)
	for _, v := range survival.AllVitals {
		if secs, ok := s.TimeToDepletion[v]; ok {
			lines = append(lines, fmt.Sprintf("%s lasts another %.1fs at base drain", v, secs))
		}
	}
	if resp.Rejected > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d step(s) rejected", resp.Rejected)))
	}
	if resp.Warnings > 0 {
		lines = append(lines, warnStyle.Render(fmt.Sprintf("%d unknown action(s)", resp.Warnings)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...) + "\n"
}
