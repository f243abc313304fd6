package urlstate

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/schema"
	"github.com/seaward/sailfinder/pkg/types"
)

// Query keys of the canonical page URL schema. Multi-valued facets are
// comma-joined under one key, scalars are single tokens.
const (
	KeyCruiseLines = "cruiseLines"
	KeyMonths      = "months"
	KeyNights      = "nights"
	KeyPorts       = "ports"
	KeyShips       = "ships"
	KeyRegions     = "regions"
	KeyMaxPrice    = "maxPrice"
	KeyPage        = "page"
	KeySort        = "sort"
)

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

type scalarQuery struct {
	MaxPrice float64 `schema:"maxPrice"`
	Page     int     `schema:"page"`
	Sort     string  `schema:"sort"`
}

// Decode rebuilds a FilterState from a page query string. Decoding is total:
// absent keys map to defaults and malformed tokens are dropped, never
// surfaced. This is the only way a FilterState is produced.
func Decode(query url.Values) types.FilterState {
	state := types.NewFilterState()

	state.CruiseLines = decodeIdList(query.Get(KeyCruiseLines))
	state.Ports = decodeIdList(query.Get(KeyPorts))
	state.Ships = decodeIdList(query.Get(KeyShips))
	state.Regions = decodeIdList(query.Get(KeyRegions))
	state.Months = decodeTokenList(query.Get(KeyMonths), validMonth)
	state.Nights = decodeTokenList(query.Get(KeyNights), types.ValidNightRange)

	var scalars scalarQuery
	// Scalar decode failures degrade the individual field, not the state.
	_ = decoder.Decode(&scalars, query)
	if scalars.MaxPrice > 0 {
		state.MaxPrice = &scalars.MaxPrice
	}
	if scalars.Page > 1 {
		state.Page = scalars.Page
	}
	state.Sort = types.ParseSortKey(scalars.Sort)

	return state
}

func decodeIdList(raw string) types.IdSet {
	ids := types.IdSet{}
	if raw == "" {
		return ids
	}
	for _, token := range strings.Split(raw, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil || id <= 0 {
			continue
		}
		ids.Add(id)
	}
	return ids
}

func decodeTokenList(raw string, valid func(string) bool) types.TokenSet {
	tokens := types.TokenSet{}
	if raw == "" {
		return tokens
	}
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if !valid(token) {
			continue
		}
		tokens.Add(token)
	}
	return tokens
}

func validMonth(token string) bool {
	_, err := time.Parse("2006-01", token)
	return err == nil
}

// Encode serializes a FilterState back to a query string, omitting every key
// whose value is the default. Sets are emitted in sorted order so equal
// states always produce identical URLs.
func Encode(state types.FilterState) url.Values {
	query := url.Values{}
	setIdList(query, KeyCruiseLines, state.CruiseLines)
	setTokenList(query, KeyMonths, state.Months)
	setTokenList(query, KeyNights, state.Nights)
	setIdList(query, KeyPorts, state.Ports)
	setIdList(query, KeyShips, state.Ships)
	setIdList(query, KeyRegions, state.Regions)
	if state.MaxPrice != nil && *state.MaxPrice > 0 {
		query.Set(KeyMaxPrice, strconv.FormatFloat(*state.MaxPrice, 'f', -1, 64))
	}
	if state.Page > 1 {
		query.Set(KeyPage, strconv.Itoa(state.Page))
	}
	if state.Sort != types.SortSoonest && state.Sort != "" {
		query.Set(KeySort, string(state.Sort))
	}
	return query
}

func setIdList(query url.Values, key string, ids types.IdSet) {
	if len(ids) == 0 {
		return
	}
	parts := make([]string, 0, len(ids))
	for _, id := range ids.Sorted() {
		parts = append(parts, strconv.Itoa(id))
	}
	query.Set(key, strings.Join(parts, ","))
}

func setTokenList(query url.Values, key string, tokens types.TokenSet) {
	if len(tokens) == 0 {
		return
	}
	query.Set(key, strings.Join(tokens.Sorted(), ","))
}
