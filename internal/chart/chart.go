// Package chart renders the monthly credit/debit stacked bar chart.
package chart

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

const (
	CreditColor = "rgba(0,128,0,0.6)"
	DebitColor  = "rgba(220,53,69,0.6)"

	stack = "total"
)

// Renderer writes the chart as a standalone HTML page.
type Renderer struct {
	Title  string
	Width  string
	Height string
}

func NewRenderer() *Renderer {
	return &Renderer{
		Title:  "Monthly Credit vs Debit",
		Width:  "100%",
		Height: "320px",
	}
}

// Render draws one stacked bar per month of series.
func (r *Renderer) Render(w io.Writer, series core.MonthlySeries) error {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: r.Title,
			Width:     r.Width,
			Height:    r.Height,
		}),
		charts.WithTitleOpts(opts.Title{Title: r.Title}),
		charts.WithColorsOpts(opts.Colors{CreditColor, DebitColor}),
	)

	bar.SetXAxis(series.Labels()).
		AddSeries("Credit", barData(series.Credit),
			charts.WithBarChartOpts(opts.BarChart{Stack: stack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: CreditColor})).
		AddSeries("Debit", barData(series.Debit),
			charts.WithBarChartOpts(opts.BarChart{Stack: stack}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: DebitColor}))

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func barData(values []decimal.Decimal) []opts.BarData {
	out := make([]opts.BarData, len(values))
	for i, v := range values {
		out[i] = opts.BarData{Value: v.Round(2).InexactFloat64()}
	}
	return out
}
