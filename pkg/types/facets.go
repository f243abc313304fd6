package types

// FacetOption is one selectable value of an id-based facet, as delivered by
// the upstream filter-options endpoint.
type FacetOption struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// FacetOptions holds the four id-based option lists for a page session.
// Lists arrive pre-sorted alphabetically and are never mutated, only
// replaced wholesale on refetch.
type FacetOptions struct {
	CruiseLines    []FacetOption `json:"cruiseLines"`
	DeparturePorts []FacetOption `json:"departurePorts"`
	Ships          []FacetOption `json:"ships"`
	Regions        []FacetOption `json:"regions"`
}

func (o FacetOptions) Empty() bool {
	return len(o.CruiseLines) == 0 && len(o.DeparturePorts) == 0 &&
		len(o.Ships) == 0 && len(o.Regions) == 0
}

type FacetType string

const (
	FacetTypeCruiseLine FacetType = "cruiseLine"
	FacetTypeMonth      FacetType = "month"
	FacetTypeNights     FacetType = "nights"
	FacetTypePort       FacetType = "port"
	FacetTypeShip       FacetType = "ship"
	FacetTypeRegion     FacetType = "region"
	FacetTypeMaxPrice   FacetType = "maxPrice"
)

// AppliedFilter is a display-only projection of one active filter value,
// suitable for chip rendering and removal.
type AppliedFilter struct {
	Facet    FacetType `json:"facet"`
	RawValue string    `json:"rawValue"`
	Label    string    `json:"label"`
}
