package core

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortMode selects the ordering applied by Apply.
type SortMode string

const (
	SortDateAsc      SortMode = "date-asc"
	SortDateDesc     SortMode = "date-desc"
	SortAmountAsc    SortMode = "amount-asc"
	SortAmountDesc   SortMode = "amount-desc"
	SortCategoryAsc  SortMode = "category-asc"
	SortCategoryDesc SortMode = "category-desc"

	DefaultSort = SortDateDesc
)

// AllCategories is the filter value that disables category filtering.
const AllCategories = "all"

var sortModes = []SortMode{
	SortDateAsc, SortDateDesc,
	SortAmountAsc, SortAmountDesc,
	SortCategoryAsc, SortCategoryDesc,
}

// SortModes lists the recognized sort modes.
func SortModes() []SortMode {
	return append([]SortMode(nil), sortModes...)
}

func (m SortMode) Valid() bool {
	for _, v := range sortModes {
		if v == m {
			return true
		}
	}
	return false
}

// ParseSortMode maps unrecognized input to DefaultSort.
func ParseSortMode(s string) SortMode {
	m := SortMode(strings.TrimSpace(s))
	if !m.Valid() {
		return DefaultSort
	}
	return m
}

// Query is the filter/search/sort state shared by the table, the chart and
// the report.
type Query struct {
	Category string
	Search   string
	Sort     SortMode
	// Locale drives category collation; the zero tag means English.
	Locale language.Tag
}

// DefaultQuery shows every category sorted by most recent date.
func DefaultQuery() Query {
	return Query{Category: AllCategories, Sort: DefaultSort}
}

// AllCategoriesSelected reports whether the category filter is disabled.
func (q Query) AllCategoriesSelected() bool {
	c := strings.TrimSpace(q.Category)
	return c == "" || c == AllCategories
}

// Apply runs the filter, search and sort steps over txs and returns a new
// slice. The input is never modified.
func Apply(txs []Transaction, q Query) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if !q.AllCategoriesSelected() && t.Category != q.Category {
			continue
		}
		out = append(out, t)
	}

	if needle := strings.TrimSpace(q.Search); needle != "" {
		fold := cases.Fold()
		needle = fold.String(needle)
		kept := out[:0]
		for _, t := range out {
			if strings.Contains(fold.String(t.Description), needle) {
				kept = append(kept, t)
			}
		}
		out = kept
	}

	sort.SliceStable(out, less(out, q))
	return out
}

func less(txs []Transaction, q Query) func(i, j int) bool {
	switch ParseSortMode(string(q.Sort)) {
	case SortDateAsc:
		return func(i, j int) bool { return txs[i].Date.Before(txs[j].Date.Time) }
	case SortAmountAsc:
		return func(i, j int) bool { return txs[i].Amount.LessThan(txs[j].Amount) }
	case SortAmountDesc:
		return func(i, j int) bool { return txs[i].Amount.GreaterThan(txs[j].Amount) }
	case SortCategoryAsc:
		c := collator(q.Locale)
		return func(i, j int) bool { return c.CompareString(txs[i].Category, txs[j].Category) < 0 }
	case SortCategoryDesc:
		c := collator(q.Locale)
		return func(i, j int) bool { return c.CompareString(txs[i].Category, txs[j].Category) > 0 }
	default:
		return func(i, j int) bool { return txs[i].Date.After(txs[j].Date.Time) }
	}
}

// collator is built per call; collate.Collator is not safe for concurrent use.
func collator(tag language.Tag) *collate.Collator {
	if tag == language.Und {
		tag = language.English
	}
	return collate.New(tag)
}
