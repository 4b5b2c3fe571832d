package display

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type ChartConfig struct {
	Width  string
	Height string
	Theme  string
	Colors []string // winner first
}

func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "640px",
		Height: "360px",
		Theme:  "light",
		Colors: []string{"#3BA272", "#5470C6"},
	}
}

// RenderChart writes a standalone HTML bar chart of both win probabilities.
func RenderChart(w io.Writer, p Presentation, config ChartConfig) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: p.Team1 + " vs " + p.Team2,
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Predicted Winner: " + p.Winner,
			Subtitle: p.WinnerPct,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Win probability (%)",
			Min:  0,
			Max:  100,
		}),
	)

	colors := config.Colors
	if len(colors) < 2 {
		colors = DefaultChartConfig().Colors
	}
	winColor, loseColor := colors[0], colors[1]
	c1, c2 := loseColor, winColor
	if p.team1IsBest {
		c1, c2 = winColor, loseColor
	}

	data := []opts.BarData{
		{Name: p.Team1, Value: round1(p.Team1Prob * 100), ItemStyle: &opts.ItemStyle{Color: c1}},
		{Name: p.Team2, Value: round1(p.Team2Prob * 100), ItemStyle: &opts.ItemStyle{Color: c2}},
	}
	bar.SetXAxis([]string{p.Team1, p.Team2}).
		AddSeries("Win probability", data).
		SetSeriesOptions(
			charts.WithLabelOpts(opts.Label{
				Show:      opts.Bool(true),
				Position:  "top",
				Formatter: "{c}%",
			}),
		)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
