package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Summary holds the dashboard totals.
type Summary struct {
	Credit  decimal.Decimal
	Debit   decimal.Decimal
	Balance decimal.Decimal
}

// Summarize totals credits and debits. The dashboard always passes the full
// unfiltered set; the report passes its filtered rows.
func Summarize(txs []Transaction) Summary {
	var s Summary
	for _, t := range txs {
		switch t.Type {
		case Credit:
			s.Credit = s.Credit.Add(t.Amount)
		case Debit:
			s.Debit = s.Debit.Add(t.Amount)
		}
	}
	s.Balance = s.Credit.Sub(s.Debit)
	return s
}

// MonthTotals is the content of one "YYYY-MM" bucket.
type MonthTotals struct {
	Credit decimal.Decimal
	Debit  decimal.Decimal
}

// MonthlySeries is the chart-ready view of the monthly buckets: Keys are
// sorted ascending and Credit/Debit are aligned with them.
type MonthlySeries struct {
	Keys   []string
	Credit []decimal.Decimal
	Debit  []decimal.Decimal
}

// Monthly buckets txs by calendar month of their date.
func Monthly(txs []Transaction) MonthlySeries {
	buckets := make(map[string]MonthTotals)
	for _, t := range txs {
		key := t.Date.MonthKey()
		b := buckets[key]
		if t.Type == Credit {
			b.Credit = b.Credit.Add(t.Amount)
		} else {
			b.Debit = b.Debit.Add(t.Amount)
		}
		buckets[key] = b
	}

	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := MonthlySeries{
		Keys:   keys,
		Credit: make([]decimal.Decimal, len(keys)),
		Debit:  make([]decimal.Decimal, len(keys)),
	}
	for i, k := range keys {
		series.Credit[i] = buckets[k].Credit
		series.Debit[i] = buckets[k].Debit
	}
	return series
}

// Bucket returns the totals for key, zero when the month has no entries.
func (s MonthlySeries) Bucket(key string) MonthTotals {
	for i, k := range s.Keys {
		if k == key {
			return MonthTotals{Credit: s.Credit[i], Debit: s.Debit[i]}
		}
	}
	return MonthTotals{}
}

// Labels renders the keys as "MM/YYYY" axis labels.
func (s MonthlySeries) Labels() []string {
	labels := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		if len(k) == 7 {
			labels[i] = k[5:] + "/" + k[:4]
		} else {
			labels[i] = k
		}
	}
	return labels
}

// Len returns the number of buckets.
func (s MonthlySeries) Len() int {
	return len(s.Keys)
}
