package urlstate

import (
	"net/url"
	"testing"

	"github.com/seaward/sailfinder/pkg/types"
)

func TestDecodeListingQuery(t *testing.T) {
	query, _ := url.ParseQuery("cruiseLines=3,7&months=2026-01&nights=6-8")
	state := Decode(query)

	if !state.CruiseLines.Equals(types.NewIdSet(3, 7)) {
		t.Errorf("Expected cruise lines {3,7}, got %v", state.CruiseLines)
	}
	if !state.Months.Equals(types.NewTokenSet("2026-01")) {
		t.Errorf("Expected months {2026-01}, got %v", state.Months)
	}
	if !state.Nights.Equals(types.NewTokenSet("6-8")) {
		t.Errorf("Expected nights {6-8}, got %v", state.Nights)
	}
	if state.Page != 1 {
		t.Errorf("Expected page 1, got %v", state.Page)
	}
	if state.Sort != types.SortSoonest {
		t.Errorf("Expected sort soonest, got %v", state.Sort)
	}
}

func TestDecodeIsTotal(t *testing.T) {
	state := Decode(url.Values{})
	if state.HasConstraints() {
		t.Errorf("Expected empty query to decode to unconstrained state, got %v", state)
	}
	if state.Page != 1 || state.Sort != types.SortSoonest {
		t.Errorf("Expected defaults, got page=%v sort=%v", state.Page, state.Sort)
	}
}

func TestDecodeDropsMalformedTokens(t *testing.T) {
	query, _ := url.ParseQuery("cruiseLines=3,abc,-1&ports=9&months=2026-13,2026-02&nights=6-8,4-7&maxPrice=cheap&page=two")
	state := Decode(query)

	if !state.CruiseLines.Equals(types.NewIdSet(3)) {
		t.Errorf("Expected only cruise line 3 to survive, got %v", state.CruiseLines)
	}
	if !state.Ports.Equals(types.NewIdSet(9)) {
		t.Errorf("Expected ports untouched by other facets' bad tokens, got %v", state.Ports)
	}
	if !state.Months.Equals(types.NewTokenSet("2026-02")) {
		t.Errorf("Expected only 2026-02 to survive, got %v", state.Months)
	}
	if !state.Nights.Equals(types.NewTokenSet("6-8")) {
		t.Errorf("Expected only 6-8 to survive, got %v", state.Nights)
	}
	if state.MaxPrice != nil {
		t.Errorf("Expected malformed maxPrice to decode as unset, got %v", *state.MaxPrice)
	}
	if state.Page != 1 {
		t.Errorf("Expected malformed page to fall back to 1, got %v", state.Page)
	}
}

func TestEncodeOmitsDefaults(t *testing.T) {
	encoded := Encode(types.NewFilterState())
	if len(encoded) != 0 {
		t.Errorf("Expected default state to encode to empty query, got %v", encoded.Encode())
	}
}

func TestRoundTrip(t *testing.T) {
	price := 1500.0
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(3, 7, 12)
	state.Ports = types.NewIdSet(5)
	state.Ships = types.NewIdSet(44, 45)
	state.Regions = types.NewIdSet(2)
	state.Months = types.NewTokenSet("2026-01", "2026-03")
	state.Nights = types.NewTokenSet("6-8", "12+")
	state.MaxPrice = &price
	state.Sort = types.SortLowestPrice
	state.Page = 4

	decoded := Decode(Encode(state))
	if !decoded.Equals(state) {
		t.Errorf("Expected round trip to preserve state, got %v from %v", decoded, state)
	}
}

func TestEncodeIsStable(t *testing.T) {
	a := types.NewFilterState()
	a.CruiseLines = types.NewIdSet(12, 3, 7)
	b := types.NewFilterState()
	b.CruiseLines = types.NewIdSet(7, 12, 3)

	if Encode(a).Encode() != Encode(b).Encode() {
		t.Errorf("Expected identical serialization for equal states, got %v and %v",
			Encode(a).Encode(), Encode(b).Encode())
	}
}

func TestMergeTogglesAndResetsPage(t *testing.T) {
	current, _ := url.ParseQuery("cruiseLines=3,7&page=5")
	next := Merge(current, Update{
		Add: []FacetValue{{Facet: types.FacetTypeCruiseLine, Value: "12"}},
	})

	state := Decode(next)
	if !state.CruiseLines.Equals(types.NewIdSet(3, 7, 12)) {
		t.Errorf("Expected cruise lines {3,7,12}, got %v", state.CruiseLines)
	}
	if state.Page != 1 {
		t.Errorf("Expected page reset to 1, got %v", state.Page)
	}
}

func TestMergePageOnlyKeepsPage(t *testing.T) {
	current, _ := url.ParseQuery("cruiseLines=3")
	page := 3
	state := Decode(Merge(current, Update{Page: &page}))
	if state.Page != 3 {
		t.Errorf("Expected page 3, got %v", state.Page)
	}
	if !state.CruiseLines.Equals(types.NewIdSet(3)) {
		t.Errorf("Expected filters untouched by page move, got %v", state.CruiseLines)
	}
}

func TestMergeRemovesOneMonth(t *testing.T) {
	current, _ := url.ParseQuery("months=2026-01,2026-02")
	state := Decode(Merge(current, Update{
		Remove: []FacetValue{{Facet: types.FacetTypeMonth, Value: "2026-01"}},
	}))
	if !state.Months.Equals(types.NewTokenSet("2026-02")) {
		t.Errorf("Expected months {2026-02}, got %v", state.Months)
	}
	if state.Page != 1 {
		t.Errorf("Expected page reset to 1, got %v", state.Page)
	}
}

func TestMergeClearsMaxPrice(t *testing.T) {
	current, _ := url.ParseQuery("maxPrice=1200&cruiseLines=3")
	zero := 0.0
	state := Decode(Merge(current, Update{MaxPrice: &zero}))
	if state.MaxPrice != nil {
		t.Errorf("Expected max price cleared, got %v", *state.MaxPrice)
	}
}

func TestToggleAddsThenRemoves(t *testing.T) {
	current, _ := url.ParseQuery("cruiseLines=3,7")
	fv := FacetValue{Facet: types.FacetTypeCruiseLine, Value: "12"}

	added := Toggle(current, fv)
	if !Decode(added).CruiseLines.Equals(types.NewIdSet(3, 7, 12)) {
		t.Errorf("Expected toggle to add line 12, got %v", Decode(added).CruiseLines)
	}

	removed := Toggle(added, fv)
	if !Decode(removed).CruiseLines.Equals(types.NewIdSet(3, 7)) {
		t.Errorf("Expected toggle to remove line 12, got %v", Decode(removed).CruiseLines)
	}
}
