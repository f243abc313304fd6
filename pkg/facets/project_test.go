package facets

import (
	"net/url"
	"testing"

	"github.com/seaward/sailfinder/pkg/types"
	"github.com/seaward/sailfinder/pkg/urlstate"
)

func testOptions() types.FacetOptions {
	return types.FacetOptions{
		CruiseLines: []types.FacetOption{
			{Id: 3, Name: "Azure Line"},
			{Id: 7, Name: "Boreal Cruises"},
		},
		DeparturePorts: []types.FacetOption{
			{Id: 5, Name: "Miami"},
		},
		Ships: []types.FacetOption{
			{Id: 44, Name: "Sea Lark"},
		},
		Regions: []types.FacetOption{
			{Id: 2, Name: "Caribbean"},
		},
	}
}

func TestProjectOrderAndLabels(t *testing.T) {
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(7, 3)
	state.Months = types.NewTokenSet("2026-01")
	state.Nights = types.NewTokenSet("6-8")
	state.Ports = types.NewIdSet(5)
	state.Ships = types.NewIdSet(44)
	state.Regions = types.NewIdSet(2)

	applied := Project(state, testOptions())

	expected := []types.AppliedFilter{
		{Facet: types.FacetTypeCruiseLine, RawValue: "3", Label: "Azure Line"},
		{Facet: types.FacetTypeCruiseLine, RawValue: "7", Label: "Boreal Cruises"},
		{Facet: types.FacetTypeMonth, RawValue: "2026-01", Label: "January 2026"},
		{Facet: types.FacetTypeNights, RawValue: "6-8", Label: "6-8 nights"},
		{Facet: types.FacetTypePort, RawValue: "5", Label: "Miami"},
		{Facet: types.FacetTypeShip, RawValue: "44", Label: "Sea Lark"},
		{Facet: types.FacetTypeRegion, RawValue: "2", Label: "Caribbean"},
	}
	if len(applied) != len(expected) {
		t.Fatalf("Expected %d applied filters, got %d: %v", len(expected), len(applied), applied)
	}
	for i, want := range expected {
		if applied[i] != want {
			t.Errorf("Expected %v at position %d, got %v", want, i, applied[i])
		}
	}
}

func TestProjectIsDeterministic(t *testing.T) {
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(3, 7)
	state.Months = types.NewTokenSet("2026-03", "2026-01")

	first := Project(state, testOptions())
	second := Project(state, testOptions())
	if len(first) != len(second) {
		t.Fatalf("Expected stable projection length, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Expected identical projection at %d, got %v and %v", i, first[i], second[i])
		}
	}
}

func TestProjectOmitsUnknownIds(t *testing.T) {
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(3, 99)

	applied := Project(state, testOptions())
	if len(applied) != 1 {
		t.Fatalf("Expected unknown id omitted, got %v", applied)
	}
	if applied[0].RawValue != "3" {
		t.Errorf("Expected only known id 3, got %v", applied[0])
	}
}

func TestProjectWithEmptyOptions(t *testing.T) {
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(3)
	state.Months = types.NewTokenSet("2026-01")

	applied := Project(state, types.FacetOptions{})
	if len(applied) != 1 {
		t.Fatalf("Expected only the self-describing month chip, got %v", applied)
	}
	if applied[0].Facet != types.FacetTypeMonth {
		t.Errorf("Expected month chip, got %v", applied[0])
	}
}

func TestRemoveUpdateStripsOneValue(t *testing.T) {
	current, _ := url.ParseQuery("months=2026-01,2026-02&page=3")
	u := RemoveUpdate(types.AppliedFilter{
		Facet:    types.FacetTypeMonth,
		RawValue: "2026-01",
		Label:    "January 2026",
	})

	state := urlstate.Decode(urlstate.Merge(current, u))
	if !state.Months.Equals(types.NewTokenSet("2026-02")) {
		t.Errorf("Expected months {2026-02}, got %v", state.Months)
	}
	if state.Page != 1 {
		t.Errorf("Expected page reset to 1, got %v", state.Page)
	}
}

func TestRemoveUpdateClearsMaxPrice(t *testing.T) {
	current, _ := url.ParseQuery("maxPrice=900&cruiseLines=3")
	u := RemoveUpdate(types.AppliedFilter{Facet: types.FacetTypeMaxPrice, RawValue: "900"})

	state := urlstate.Decode(urlstate.Merge(current, u))
	if state.MaxPrice != nil {
		t.Errorf("Expected max price cleared, got %v", *state.MaxPrice)
	}
	if !state.CruiseLines.Has(3) {
		t.Errorf("Expected other facets untouched, got %v", state.CruiseLines)
	}
}
