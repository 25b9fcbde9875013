package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// PriceCurrency is the currency every catalog price is expressed in.
const PriceCurrency = money.EUR

// Money is an amount in euro cents that may be unknown.
// The zero value is unknown, which is also the identity of Add.
type Money struct {
	cents int64
	known bool
}

// Unknown returns a Money with no known amount.
func Unknown() Money { return Money{} }

// Cents returns a known amount. Negative inputs are clamped to zero.
func Cents(c int64) Money {
	if c < 0 {
		c = 0
	}
	return Money{cents: c, known: true}
}

// MoneyFromDecimal converts a major-unit amount into cents, rounding half away from zero.
// Amounts whose cents do not fit in an int64 are Unknown.
func MoneyFromDecimal(d decimal.Decimal) Money {
	cents := d.Shift(2).Round(0)
	if !cents.BigInt().IsInt64() {
		return Unknown()
	}
	return Cents(cents.IntPart())
}

// MoneyFromFloat converts an optional major-unit amount. nil yields Unknown.
func MoneyFromFloat(f *float64) Money {
	if f == nil || math.IsNaN(*f) || math.IsInf(*f, 0) {
		return Unknown()
	}
	return MoneyFromDecimal(decimal.NewFromFloat(*f))
}

// IsKnown reports whether the amount is known.
func (m Money) IsKnown() bool { return m.known }

// Amount returns the amount in cents and whether it is known.
func (m Money) Amount() (int64, bool) { return m.cents, m.known }

// Add combines two amounts. Unknown is neutral on either side.
func (m Money) Add(o Money) Money {
	switch {
	case !m.known:
		return o
	case !o.known:
		return m
	default:
		return Money{cents: m.cents + o.cents, known: true}
	}
}

// Scale multiplies a known amount by a quantity. Unknown stays unknown.
func (m Money) Scale(q uint) Money {
	if !m.known {
		return m
	}
	return Money{cents: m.cents * int64(q), known: true}
}

// String formats the amount in euros, or "n/a" when unknown.
func (m Money) String() string {
	if !m.known {
		return "n/a"
	}
	return money.New(m.cents, PriceCurrency).Display()
}

// MarshalJSON writes the amount in cents, or null when unknown.
func (m Money) MarshalJSON() ([]byte, error) {
	if !m.known {
		return []byte("null"), nil
	}
	return json.Marshal(m.cents)
}

// UnmarshalJSON reads cents or null.
func (m *Money) UnmarshalJSON(data []byte) error {
	var c *int64
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("invalid money amount %s: %w", data, err)
	}
	if c == nil {
		*m = Unknown()
		return nil
	}
	*m = Cents(*c)
	return nil
}

// GormDataType maps Money to a nullable integer column.
func (Money) GormDataType() string { return "bigint" }

// Value stores unknown amounts as NULL.
func (m Money) Value() (driver.Value, error) {
	if !m.known {
		return nil, nil
	}
	return m.cents, nil
}

// Scan reads a nullable integer column.
func (m *Money) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*m = Unknown()
	case int64:
		*m = Cents(v)
	case int32:
		*m = Cents(int64(v))
	case float64:
		*m = Cents(int64(math.Round(v)))
	case []byte:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return fmt.Errorf("failed to scan money %q: %w", v, err)
		}
		*m = Cents(d.IntPart())
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("failed to scan money %q: %w", v, err)
		}
		*m = Cents(d.IntPart())
	default:
		return fmt.Errorf("cannot scan %T into Money", src)
	}
	return nil
}

// PriceGuide holds the six price points the catalog publishes for a product variant.
type PriceGuide struct {
	Low   Money `json:"low"`
	Avg   Money `json:"avg"`
	Trend Money `json:"trend"`
	Avg1  Money `json:"avg1"`
	Avg7  Money `json:"avg7"`
	Avg30 Money `json:"avg30"`
}

// Add combines two guides field by field.
func (p PriceGuide) Add(o PriceGuide) PriceGuide {
	return PriceGuide{
		Low:   p.Low.Add(o.Low),
		Avg:   p.Avg.Add(o.Avg),
		Trend: p.Trend.Add(o.Trend),
		Avg1:  p.Avg1.Add(o.Avg1),
		Avg7:  p.Avg7.Add(o.Avg7),
		Avg30: p.Avg30.Add(o.Avg30),
	}
}

// Scale multiplies every field by q.
func (p PriceGuide) Scale(q uint) PriceGuide {
	return PriceGuide{
		Low:   p.Low.Scale(q),
		Avg:   p.Avg.Scale(q),
		Trend: p.Trend.Scale(q),
		Avg1:  p.Avg1.Scale(q),
		Avg7:  p.Avg7.Scale(q),
		Avg30: p.Avg30.Scale(q),
	}
}

// IsEmpty reports whether no field is known.
func (p PriceGuide) IsEmpty() bool {
	return p == PriceGuide{}
}

// FullPriceGuide is a catalog entry for one product on one day.
type FullPriceGuide struct {
	ProductID uint32     `json:"product_id"`
	Normal    PriceGuide `json:"normal"`
	Foil      PriceGuide `json:"foil"`
}

// Variant selects the foil or non-foil guide.
func (f FullPriceGuide) Variant(foil bool) PriceGuide {
	if foil {
		return f.Foil
	}
	return f.Normal
}
