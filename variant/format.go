package variant

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v79"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders money for one locale and currency. Amounts are rounded to
// the currency's standard precision only here, at display time.
type Formatter struct {
	tag  language.Tag
	code stripe.Currency
	unit currency.Unit
}

func NewFormatter(tag language.Tag, code stripe.Currency) (*Formatter, error) {
	unit, err := currency.ParseISO(strings.ToUpper(string(code)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse currency %q: %w", code, err)
	}

	return &Formatter{
		tag:  tag,
		code: code,
		unit: unit,
	}, nil
}

func (f *Formatter) Currency() stripe.Currency {
	return f.code
}

func (f *Formatter) Tag() language.Tag {
	return f.tag
}

// Format renders amount with the currency symbol and the locale's separators.
func (f *Formatter) Format(amount decimal.Decimal) string {
	scale, _ := currency.Standard.Rounding(f.unit)
	rounded := amount.Round(int32(scale))

	// message.Printer is not safe for concurrent use
	p := message.NewPrinter(f.tag)
	return p.Sprintf("%v %v", currency.Symbol(f.unit), formatExact(p, rounded, scale))
}

// formatExact prints d with scale fraction digits. The whole and fraction
// parts go through the printer as integers so no digit is lost to a float.
func formatExact(p *message.Printer, d decimal.Decimal, scale int) string {
	abs := d.Abs()
	whole := abs.Truncate(0)
	if !whole.BigInt().IsInt64() {
		return p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(scale)))
	}

	var b strings.Builder
	if d.Sign() < 0 {
		b.WriteString("-")
	}
	b.WriteString(p.Sprint(number.Decimal(whole.IntPart())))

	if scale > 0 {
		frac := abs.Sub(whole).Shift(int32(scale)).IntPart()
		b.WriteString(decimalSeparator(p))
		b.WriteString(p.Sprint(number.Decimal(frac, number.NoSeparator(), number.MinIntegerDigits(scale))))
	}
	return b.String()
}

// decimalSeparator is whatever the locale prints between the digits of 0.0.
func decimalSeparator(p *message.Printer) string {
	r := []rune(p.Sprint(number.Decimal(0, number.Scale(1))))
	if len(r) < 3 {
		return "."
	}
	return string(r[1 : len(r)-1])
}
