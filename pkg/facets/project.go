package facets

import (
	"fmt"
	"strconv"
	"time"

	"github.com/seaward/sailfinder/pkg/types"
	"github.com/seaward/sailfinder/pkg/urlstate"
)

// Project derives the ordered chip list for the active filters. The order is
// fixed (cruise lines, months, night ranges, ports, ships, regions, price
// ceiling) so chip layout is deterministic. Id selections with no matching
// option are omitted rather than rendered with a placeholder label.
func Project(state types.FilterState, options types.FacetOptions) []types.AppliedFilter {
	applied := []types.AppliedFilter{}

	applied = appendIdFilters(applied, types.FacetTypeCruiseLine, state.CruiseLines, options.CruiseLines)
	for _, month := range state.Months.Sorted() {
		applied = append(applied, types.AppliedFilter{
			Facet:    types.FacetTypeMonth,
			RawValue: month,
			Label:    monthLabel(month),
		})
	}
	for _, nights := range state.Nights.Sorted() {
		applied = append(applied, types.AppliedFilter{
			Facet:    types.FacetTypeNights,
			RawValue: nights,
			Label:    nights + " nights",
		})
	}
	applied = appendIdFilters(applied, types.FacetTypePort, state.Ports, options.DeparturePorts)
	applied = appendIdFilters(applied, types.FacetTypeShip, state.Ships, options.Ships)
	applied = appendIdFilters(applied, types.FacetTypeRegion, state.Regions, options.Regions)

	if state.MaxPrice != nil {
		applied = append(applied, types.AppliedFilter{
			Facet:    types.FacetTypeMaxPrice,
			RawValue: strconv.FormatFloat(*state.MaxPrice, 'f', -1, 64),
			Label:    fmt.Sprintf("Up to $%.0f", *state.MaxPrice),
		})
	}

	return applied
}

func appendIdFilters(applied []types.AppliedFilter, facet types.FacetType, selected types.IdSet, options []types.FacetOption) []types.AppliedFilter {
	for _, id := range selected.Sorted() {
		name, ok := optionName(options, id)
		if !ok {
			continue
		}
		applied = append(applied, types.AppliedFilter{
			Facet:    facet,
			RawValue: strconv.Itoa(id),
			Label:    name,
		})
	}
	return applied
}

func optionName(options []types.FacetOption, id int) (string, bool) {
	for _, opt := range options {
		if opt.Id == id {
			return opt.Name, true
		}
	}
	return "", false
}

func monthLabel(token string) string {
	t, err := time.Parse("2006-01", token)
	if err != nil {
		return token
	}
	return t.Format("January 2006")
}

// RemoveUpdate builds the delta that strips exactly one applied filter. It
// goes through the shared merge path so page reset and fresh-query reads
// apply just like any other mutation.
func RemoveUpdate(f types.AppliedFilter) urlstate.Update {
	if f.Facet == types.FacetTypeMaxPrice {
		zero := 0.0
		return urlstate.Update{MaxPrice: &zero}
	}
	return urlstate.Update{
		Remove: []urlstate.FacetValue{{Facet: f.Facet, Value: f.RawValue}},
	}
}
