package http

import (
	"errors"

	"github.com/shopspring/decimal"

	"cashbook/internal/core"
)

var errTemplatesNotLoaded = errors.New("templates not loaded")

// formatMoney renders an amount with the on-screen currency symbol.
func formatMoney(d decimal.Decimal) string {
	return core.FormatAmount(currencySymbol, d)
}

type sortOption struct {
	Value string
	Label string
}

var sortLabels = map[core.SortMode]string{
	core.SortDateAsc:      "Date (oldest first)",
	core.SortDateDesc:     "Date (newest first)",
	core.SortAmountAsc:    "Amount (low to high)",
	core.SortAmountDesc:   "Amount (high to low)",
	core.SortCategoryAsc:  "Category (A-Z)",
	core.SortCategoryDesc: "Category (Z-A)",
}

func sortOptions() []sortOption {
	modes := core.SortModes()
	out := make([]sortOption, len(modes))
	for i, m := range modes {
		out[i] = sortOption{Value: string(m), Label: sortLabels[m]}
	}
	return out
}
