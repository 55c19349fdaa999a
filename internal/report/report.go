// Package report renders the filtered transaction table as a PDF and
// decodes built documents for on-screen preview.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"

	"cashbook/internal/core"
)

// FileName is the download name of every report.
const FileName = "transactions.pdf"

// ErrEmpty is returned when there are no rows to report.
var ErrEmpty = errors.New("no transactions to include in report")

// Meta describes the view the rows were taken from.
type Meta struct {
	Category string
	Sort     core.SortMode
}

type rgb struct{ r, g, b int }

var (
	creditColor = rgb{0, 128, 0}
	debitColor  = rgb{220, 53, 69}
	textColor   = rgb{20, 20, 20}
	headerFill  = rgb{41, 128, 185}
)

const (
	margin     = 10.0
	pageHeight = 297.0
	rowHeight  = 7.0
	dateLayout = "02 Jan 2006"
)

var (
	columns = []string{"Description", "Date", "Category", "Amount"}
	widths  = []float64{80, 30, 40, 40}
)

// Builder renders transaction reports. Amounts are prefixed with the
// currency code since the core PDF fonts have no rupee glyph. Text is
// limited to Windows-1252, the code page of those fonts: other scripts
// (Devanagari, CJK, emoji) come out as '?' in the document.
type Builder struct {
	currency string
	title    string
}

func NewBuilder(currency string) *Builder {
	if currency == "" {
		currency = "INR"
	}
	return &Builder{currency: currency, title: "Transaction Report"}
}

// Build renders rows in the order given.
func (b *Builder) Build(rows []core.Transaction, meta Meta) ([]byte, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle(b.title, false)
	pdf.SetCreator("cashbook", false)
	tr := toCP1252
	pdf.AddPage()

	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, b.title, "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	first, last := dateRange(rows)
	pdf.CellFormat(0, 6, fmt.Sprintf("Date Range: %s - %s", first.Format(dateLayout), last.Format(dateLayout)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Filters: "+filtersLine(meta)), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	b.tableHeader(pdf)
	pdf.SetFont("Helvetica", "", 10)
	for _, t := range rows {
		if pdf.GetY()+rowHeight > pageHeight-margin {
			pdf.AddPage()
			b.tableHeader(pdf)
			pdf.SetFont("Helvetica", "", 10)
		}
		pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
		pdf.CellFormat(widths[0], rowHeight, fit(pdf, tr, t.Description, widths[0]-2), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], rowHeight, t.Date.Format(dateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], rowHeight, tr(t.Category), "1", 0, "L", false, 0, "")

		c := debitColor
		if t.Type == core.Credit {
			c = creditColor
		}
		pdf.SetTextColor(c.r, c.g, c.b)
		pdf.CellFormat(widths[3], rowHeight, core.FormatSigned(b.currency+" ", t), "1", 1, "R", false, 0, "")
	}

	sum := core.Summarize(rows)
	if pdf.GetY()+3*rowHeight+10 > pageHeight-margin {
		pdf.AddPage()
	}
	pdf.SetTextColor(textColor.r, textColor.g, textColor.b)
	for i, w := range widths {
		ln := 0
		if i == len(widths)-1 {
			ln = 1
		}
		pdf.CellFormat(w, rowHeight, "", "1", ln, "", false, 0, "")
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2], rowHeight, "Totals", "1", 0, "L", false, 0, "")
	pdf.CellFormat(widths[3], rowHeight, b.money(sum.Balance), "1", 1, "R", false, 0, "")

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(66, 6, "Total Credit: "+b.money(sum.Credit), "", 0, "L", false, 0, "")
	pdf.CellFormat(60, 6, "Total Debit: "+b.money(sum.Debit), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Balance: "+b.money(sum.Balance), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render report: %w", err)
	}
	return buf.Bytes(), nil
}

func (b *Builder) tableHeader(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
	pdf.SetTextColor(255, 255, 255)
	for i, col := range columns {
		ln := 0
		if i == len(columns)-1 {
			ln = 1
		}
		pdf.CellFormat(widths[i], rowHeight+1, col, "1", ln, "C", true, 0, "")
	}
}

// money formats a plain amount, e.g. "INR 70.00" or "-INR 12.50".
func (b *Builder) money(d decimal.Decimal) string {
	return core.FormatAmount(b.currency+" ", d)
}

func dateRange(rows []core.Transaction) (time.Time, time.Time) {
	first, last := rows[0].Date.Time, rows[0].Date.Time
	for _, t := range rows[1:] {
		if t.Date.Before(first) {
			first = t.Date.Time
		}
		if t.Date.After(last) {
			last = t.Date.Time
		}
	}
	return first, last
}

func filtersLine(meta Meta) string {
	var parts []string
	q := core.Query{Category: meta.Category}
	if !q.AllCategoriesSelected() {
		parts = append(parts, "Category="+meta.Category)
	}
	parts = append(parts, "Sort="+string(core.ParseSortMode(string(meta.Sort))))
	return strings.Join(parts, ", ")
}

// fit translates s and truncates it with an ellipsis so it renders within
// width.
// toCP1252 encodes s for the core fonts, writing '?' for runes outside the
// code page.
func toCP1252(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		c, ok := charmap.Windows1252.EncodeRune(r)
		if !ok {
			c = '?'
		}
		b.WriteByte(c)
	}
	return b.String()
}

func fit(pdf *gofpdf.Fpdf, tr func(string) string, s string, width float64) string {
	if out := tr(s); pdf.GetStringWidth(out) <= width {
		return out
	}
	r := []rune(s)
	for len(r) > 0 && pdf.GetStringWidth(tr(string(r)+"...")) > width {
		r = r[:len(r)-1]
	}
	return tr(string(r) + "...")
}
