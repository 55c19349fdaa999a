// Package core provides money parsing and handling utilities.
//
// This file contains the parsing of user-entered amounts and the display
// helpers shared by the table, the summary and the PDF report.
package core

import (
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-entered decimal string to a positive amount
// rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and rounds
// half-up on the third decimal place. Signs are rejected: the direction of a
// transaction comes from its type, never from the amount.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,345") -> 12.35, nil
//	ParseAmount("-1")     -> 0, ErrInvalidAmount
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	for _, r := range s {
		if r != '.' && !unicode.IsDigit(r) {
			return decimal.Zero, ErrInvalidAmount
		}
	}
	if strings.HasPrefix(s, ".") {
		s = "0" + s
	}
	s = strings.TrimSuffix(s, ".")

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	d = d.Round(2)
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders an amount with two decimals and the given prefix,
// placing the minus sign before the prefix ("-₹12.00").
func FormatAmount(prefix string, d decimal.Decimal) string {
	if d.IsNegative() {
		return "-" + prefix + d.Neg().StringFixed(2)
	}
	return prefix + d.StringFixed(2)
}

// FormatSigned renders the transaction amount with an explicit sign derived
// from its type ("+₹100.00" / "-₹40.00").
func FormatSigned(prefix string, t Transaction) string {
	if t.Type == Credit {
		return "+" + prefix + t.Amount.StringFixed(2)
	}
	return "-" + prefix + t.Amount.StringFixed(2)
}
