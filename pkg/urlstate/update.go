package urlstate

import (
	"net/url"

	"github.com/seaward/sailfinder/pkg/types"
)

// FacetValue names one value of one facet, the unit of toggling and removal.
type FacetValue struct {
	Facet types.FacetType `json:"facet"`
	Value string          `json:"value"`
}

// Update is a delta against the current query string. It is always applied
// on top of a freshly read query, never on a captured FilterState, so
// long-lived handlers cannot act on stale selections.
type Update struct {
	Add      []FacetValue   `json:"add,omitempty"`
	Remove   []FacetValue   `json:"remove,omitempty"`
	MaxPrice *float64       `json:"maxPrice,omitempty"`
	Sort     *types.SortKey `json:"sort,omitempty"`
	Page     *int           `json:"page,omitempty"`
}

// pageOnly reports whether the update touches nothing but the page number.
func (u Update) pageOnly() bool {
	return u.Page != nil && len(u.Add) == 0 && len(u.Remove) == 0 &&
		u.MaxPrice == nil && u.Sort == nil
}

// Merge re-derives the canonical query string from the current query plus the
// delta. Any change other than a pure page move resets page to 1.
func Merge(current url.Values, u Update) url.Values {
	state := Decode(current)

	for _, fv := range u.Add {
		applyFacetValue(&state, fv, true)
	}
	for _, fv := range u.Remove {
		applyFacetValue(&state, fv, false)
	}
	if u.MaxPrice != nil {
		if *u.MaxPrice > 0 {
			price := *u.MaxPrice
			state.MaxPrice = &price
		} else {
			state.MaxPrice = nil
		}
	}
	if u.Sort != nil {
		state.Sort = types.ParseSortKey(string(*u.Sort))
	}

	if u.pageOnly() {
		state.Page = *u.Page
		if state.Page < 1 {
			state.Page = 1
		}
	} else {
		state.Page = 1
	}

	return Encode(state)
}

// Toggle flips one facet value relative to the current query.
func Toggle(current url.Values, fv FacetValue) url.Values {
	state := Decode(current)
	if hasFacetValue(state, fv) {
		return Merge(current, Update{Remove: []FacetValue{fv}})
	}
	return Merge(current, Update{Add: []FacetValue{fv}})
}

func applyFacetValue(state *types.FilterState, fv FacetValue, add bool) {
	switch fv.Facet {
	case types.FacetTypeCruiseLine:
		applyId(state.CruiseLines, fv.Value, add)
	case types.FacetTypePort:
		applyId(state.Ports, fv.Value, add)
	case types.FacetTypeShip:
		applyId(state.Ships, fv.Value, add)
	case types.FacetTypeRegion:
		applyId(state.Regions, fv.Value, add)
	case types.FacetTypeMonth:
		if add {
			if validMonth(fv.Value) {
				state.Months.Add(fv.Value)
			}
		} else {
			state.Months.Remove(fv.Value)
		}
	case types.FacetTypeNights:
		if add {
			if types.ValidNightRange(fv.Value) {
				state.Nights.Add(fv.Value)
			}
		} else {
			state.Nights.Remove(fv.Value)
		}
	case types.FacetTypeMaxPrice:
		if !add {
			state.MaxPrice = nil
		}
	}
}

func applyId(ids types.IdSet, value string, add bool) {
	set := decodeIdList(value)
	for id := range set {
		if add {
			ids.Add(id)
		} else {
			ids.Remove(id)
		}
	}
}

func hasFacetValue(state types.FilterState, fv FacetValue) bool {
	switch fv.Facet {
	case types.FacetTypeCruiseLine:
		return idListHas(state.CruiseLines, fv.Value)
	case types.FacetTypePort:
		return idListHas(state.Ports, fv.Value)
	case types.FacetTypeShip:
		return idListHas(state.Ships, fv.Value)
	case types.FacetTypeRegion:
		return idListHas(state.Regions, fv.Value)
	case types.FacetTypeMonth:
		return state.Months.Has(fv.Value)
	case types.FacetTypeNights:
		return state.Nights.Has(fv.Value)
	case types.FacetTypeMaxPrice:
		return state.MaxPrice != nil
	}
	return false
}

func idListHas(ids types.IdSet, value string) bool {
	for id := range decodeIdList(value) {
		if !ids.Has(id) {
			return false
		}
	}
	return true
}
