package types

import (
	"math"
	"strconv"
)

// Money is a canonical price value in minor units. The upstream API exposes
// prices under several legacy field names and mixed string/number encodings;
// everything is normalized into this type at the client boundary so display
// logic never touches raw price fields.
type Money struct {
	Cents    int64  `json:"cents"`
	Currency string `json:"currency"`
}

func (m Money) IsZero() bool {
	return m.Cents == 0
}

func (m Money) Amount() float64 {
	return float64(m.Cents) / 100
}

func MoneyFromAmount(amount float64, currency string) Money {
	return Money{Cents: int64(math.Round(amount * 100)), Currency: currency}
}

// RawPrice accepts the upstream's loose price encodings: JSON numbers,
// numeric strings and null all occur in the wild.
type RawPrice any

// NormalizePrice resolves a fallback chain of raw price fields to the first
// usable positive amount. Unparseable and non-positive entries are skipped.
func NormalizePrice(currency string, candidates ...RawPrice) (Money, bool) {
	for _, c := range candidates {
		amount, ok := priceAmount(c)
		if ok && amount > 0 {
			return MoneyFromAmount(amount, currency), true
		}
	}
	return Money{}, false
}

func priceAmount(v RawPrice) (float64, bool) {
	switch p := v.(type) {
	case nil:
		return 0, false
	case float64:
		return p, true
	case float32:
		return float64(p), true
	case int:
		return float64(p), true
	case int64:
		return float64(p), true
	case string:
		if p == "" {
			return 0, false
		}
		amount, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return 0, false
		}
		return amount, true
	}
	return 0, false
}

// CabinPrices holds the cheapest normalized price per cabin category.
// A missing category is the zero Money value.
type CabinPrices struct {
	Interior  Money `json:"interior"`
	OceanView Money `json:"oceanView"`
	Balcony   Money `json:"balcony"`
	Suite     Money `json:"suite"`
}

// Cheapest returns the lowest non-zero cabin price.
func (c CabinPrices) Cheapest() (Money, bool) {
	best := Money{}
	for _, m := range []Money{c.Interior, c.OceanView, c.Balcony, c.Suite} {
		if m.IsZero() {
			continue
		}
		if best.IsZero() || m.Cents < best.Cents {
			best = m
		}
	}
	return best, !best.IsZero()
}

// Cruise is the summary record for one sailing as returned by the upstream
// search endpoint. Beyond the display price and the identity used for detail
// routing it is treated as an opaque value.
type Cruise struct {
	Id            int         `json:"id"`
	Name          string      `json:"name"`
	CruiseLineId  int         `json:"cruiseLineId"`
	CruiseLine    string      `json:"cruiseLine"`
	ShipId        int         `json:"shipId"`
	Ship          string      `json:"ship"`
	SailingDate   string      `json:"sailingDate"`
	ReturnDate    string      `json:"returnDate"`
	Nights        int         `json:"nights"`
	DeparturePort string      `json:"departurePort"`
	Region        string      `json:"region"`
	Prices        CabinPrices `json:"prices"`
	Images        []string    `json:"images,omitempty"`
}

// SearchResultPage is the committed response of one search request.
type SearchResultPage struct {
	Items      []Cruise `json:"items"`
	TotalCount int      `json:"totalCount"`
}
