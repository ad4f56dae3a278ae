package canonical

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// priceScale is the mandated decimal scale for prices: 1e-4 units.
const priceScale = 10000

// Price is a fixed-precision decimal price: a signed count of 1e-4 units.
//
// Prices cross the serialization boundary only in this form so that the
// commitment preimage is byte-reproducible. A Price always renders with
// exactly four decimal places ("450.2500"), both in canonical payloads and in
// persisted JSON documents.
type Price int64

func (Price) canonicalValue() {}

// ParsePrice parses a decimal string with at most four fractional digits.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty price")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if intPart == "" {
		intPart = "0"
	}
	if len(fracPart) > 4 {
		return 0, fmt.Errorf("price %q exceeds four decimal places", s)
	}
	fracPart += strings.Repeat("0", 4-len(fracPart))
	whole, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	frac, err := strconv.ParseInt(fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	units := whole*priceScale + frac
	if neg {
		units = -units
	}
	return Price(units), nil
}

// PriceFromFloat quantizes f to the four-decimal canonical scale,
// rounding half away from zero.
func PriceFromFloat(f float64) Price {
	return Price(math.Round(f * priceScale))
}

// String renders the price with exactly four decimal places.
func (p Price) String() string {
	units := int64(p)
	sign := ""
	if units < 0 {
		sign = "-"
		units = -units
	}
	return fmt.Sprintf("%s%d.%04d", sign, units/priceScale, units%priceScale)
}

// Float64 returns the price as a float. For display and delta math only;
// never for serialization.
func (p Price) Float64() float64 {
	return float64(p) / priceScale
}

// Units returns the raw count of 1e-4 units.
func (p Price) Units() int64 {
	return int64(p)
}

// Sub returns p - q at the same scale.
func (p Price) Sub(q Price) Price {
	return p - q
}

// Abs returns the magnitude of p.
func (p Price) Abs() Price {
	if p < 0 {
		return -p
	}
	return p
}

// MagQ quantizes the price magnitude to one byte: whole hundredths of a
// price unit, saturating at 255. Computed in scaled-integer space so a delta
// of exactly 2.55 maps to 255 with no float drift, and 0.8766 maps to 87.
func (p Price) MagQ() int {
	q := p.Abs().Units() / 100
	if q > 255 {
		return 255
	}
	return int(q)
}

// MarshalJSON renders the price as a fixed four-decimal number token.
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalJSON accepts either a number token or a quoted decimal string.
// Legacy documents may carry raw float noise (e.g. 0.8765999999999963);
// those are quantized back to the canonical scale.
func (p *Price) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	parsed, err := ParsePrice(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return err
		}
		parsed = PriceFromFloat(f)
	}
	*p = parsed
	return nil
}
