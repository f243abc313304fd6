package upstream

import "github.com/seaward/sailfinder/pkg/types"

// searchEnvelope mirrors the upstream search response. The total lives under
// either "total" or "pagination.total" depending on endpoint vintage.
type searchEnvelope struct {
	Results    []rawCruise `json:"results"`
	Total      *int        `json:"total"`
	Pagination *struct {
		Total int `json:"total"`
	} `json:"pagination"`
}

// rawCruise carries the upstream's historically grown price fields. Several
// generations of field names coexist; normalization picks the first usable
// one per cabin category.
type rawCruise struct {
	Id            int      `json:"id"`
	Name          string   `json:"name"`
	CruiseLineId  int      `json:"cruiseLineId"`
	CruiseLine    string   `json:"cruiseLineName"`
	ShipId        int      `json:"shipId"`
	Ship          string   `json:"shipName"`
	SailingDate   string   `json:"sailingDate"`
	ReturnDate    string   `json:"returnDate"`
	Nights        int      `json:"nights"`
	DeparturePort string   `json:"departurePortName"`
	Region        string   `json:"regionName"`
	Images        []string `json:"images"`
	Currency      string   `json:"currency"`

	InteriorPrice    any `json:"interiorPrice"`
	InsidePrice      any `json:"insidePrice"`
	CheapestInterior any `json:"cheapestInterior"`

	OceanViewPrice    any `json:"oceanviewPrice"`
	OutsidePrice      any `json:"outsidePrice"`
	CheapestOceanView any `json:"cheapestOceanview"`

	BalconyPrice    any `json:"balconyPrice"`
	CheapestBalcony any `json:"cheapestBalcony"`

	SuitePrice    any `json:"suitePrice"`
	CheapestSuite any `json:"cheapestSuite"`
}

func (e *searchEnvelope) toResultPage() *types.SearchResultPage {
	page := &types.SearchResultPage{
		Items: make([]types.Cruise, 0, len(e.Results)),
	}
	for _, raw := range e.Results {
		page.Items = append(page.Items, raw.toCruise())
	}
	if e.Total != nil {
		page.TotalCount = *e.Total
	} else if e.Pagination != nil {
		page.TotalCount = e.Pagination.Total
	} else {
		page.TotalCount = len(page.Items)
	}
	return page
}

func (r rawCruise) toCruise() types.Cruise {
	currency := r.Currency
	if currency == "" {
		currency = "USD"
	}
	prices := types.CabinPrices{}
	if m, ok := types.NormalizePrice(currency, r.CheapestInterior, r.InteriorPrice, r.InsidePrice); ok {
		prices.Interior = m
	}
	if m, ok := types.NormalizePrice(currency, r.CheapestOceanView, r.OceanViewPrice, r.OutsidePrice); ok {
		prices.OceanView = m
	}
	if m, ok := types.NormalizePrice(currency, r.CheapestBalcony, r.BalconyPrice); ok {
		prices.Balcony = m
	}
	if m, ok := types.NormalizePrice(currency, r.CheapestSuite, r.SuitePrice); ok {
		prices.Suite = m
	}

	return types.Cruise{
		Id:            r.Id,
		Name:          r.Name,
		CruiseLineId:  r.CruiseLineId,
		CruiseLine:    r.CruiseLine,
		ShipId:        r.ShipId,
		Ship:          r.Ship,
		SailingDate:   r.SailingDate,
		ReturnDate:    r.ReturnDate,
		Nights:        r.Nights,
		DeparturePort: r.DeparturePort,
		Region:        r.Region,
		Prices:        prices,
		Images:        r.Images,
	}
}
