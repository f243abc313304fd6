package types

import (
	"slices"
	"strconv"
)

// IdSet holds the selected ids of one facet. Empty means no constraint.
type IdSet map[int]struct{}

func NewIdSet(ids ...int) IdSet {
	s := make(IdSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IdSet) Has(id int) bool {
	_, ok := s[id]
	return ok
}

func (s IdSet) Add(id int) {
	s[id] = struct{}{}
}

func (s IdSet) Remove(id int) {
	delete(s, id)
}

// Sorted returns the ids in ascending order, for stable serialization.
func (s IdSet) Sorted() []int {
	ids := make([]int, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s IdSet) Equals(other IdSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}

// TokenSet holds string-valued facet selections (months, night ranges).
type TokenSet map[string]struct{}

func NewTokenSet(tokens ...string) TokenSet {
	s := make(TokenSet, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}

func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

func (s TokenSet) Add(token string) {
	s[token] = struct{}{}
}

func (s TokenSet) Remove(token string) {
	delete(s, token)
}

func (s TokenSet) Sorted() []string {
	tokens := make([]string, 0, len(s))
	for t := range s {
		tokens = append(tokens, t)
	}
	slices.Sort(tokens)
	return tokens
}

func (s TokenSet) Equals(other TokenSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other.Has(t) {
			return false
		}
	}
	return true
}

type SortKey string

const (
	SortSoonest      SortKey = "soonest"
	SortLowestPrice  SortKey = "lowest_price"
	SortHighestPrice SortKey = "highest_price"
	SortShortest     SortKey = "shortest"
	SortLongest      SortKey = "longest"
)

func ParseSortKey(v string) SortKey {
	switch SortKey(v) {
	case SortSoonest, SortLowestPrice, SortHighestPrice, SortShortest, SortLongest:
		return SortKey(v)
	}
	return SortSoonest
}

type NightRange string

const (
	NightsShort    NightRange = "2-5"
	NightsMedium   NightRange = "6-8"
	NightsLong     NightRange = "9-11"
	NightsExtended NightRange = "12+"
)

func ValidNightRange(v string) bool {
	switch NightRange(v) {
	case NightsShort, NightsMedium, NightsLong, NightsExtended:
		return true
	}
	return false
}

// FilterState is the canonical listing state. It is only ever produced by
// decoding a query string; handlers never mutate an instance in place.
type FilterState struct {
	CruiseLines IdSet    `json:"cruiseLines"`
	Ports       IdSet    `json:"ports"`
	Ships       IdSet    `json:"ships"`
	Regions     IdSet    `json:"regions"`
	Months      TokenSet `json:"months"`
	Nights      TokenSet `json:"nights"`
	MaxPrice    *float64 `json:"maxPrice,omitempty"`
	Sort        SortKey  `json:"sort"`
	Page        int      `json:"page"`
}

func NewFilterState() FilterState {
	return FilterState{
		CruiseLines: IdSet{},
		Ports:       IdSet{},
		Ships:       IdSet{},
		Regions:     IdSet{},
		Months:      TokenSet{},
		Nights:      TokenSet{},
		Sort:        SortSoonest,
		Page:        1,
	}
}

func (f FilterState) Equals(other FilterState) bool {
	if !f.CruiseLines.Equals(other.CruiseLines) ||
		!f.Ports.Equals(other.Ports) ||
		!f.Ships.Equals(other.Ships) ||
		!f.Regions.Equals(other.Regions) ||
		!f.Months.Equals(other.Months) ||
		!f.Nights.Equals(other.Nights) {
		return false
	}
	if (f.MaxPrice == nil) != (other.MaxPrice == nil) {
		return false
	}
	if f.MaxPrice != nil && *f.MaxPrice != *other.MaxPrice {
		return false
	}
	return f.Sort == other.Sort && f.Page == other.Page
}

// HasConstraints reports whether anything besides sort and page is set.
func (f FilterState) HasConstraints() bool {
	return len(f.CruiseLines) > 0 || len(f.Ports) > 0 || len(f.Ships) > 0 ||
		len(f.Regions) > 0 || len(f.Months) > 0 || len(f.Nights) > 0 ||
		f.MaxPrice != nil
}

// CacheKey is a stable textual identity for the state, used for response
// caching. Equal states always yield equal keys.
func (f FilterState) CacheKey() string {
	key := "search"
	for _, id := range f.CruiseLines.Sorted() {
		key += ":l" + strconv.Itoa(id)
	}
	for _, id := range f.Ports.Sorted() {
		key += ":p" + strconv.Itoa(id)
	}
	for _, id := range f.Ships.Sorted() {
		key += ":s" + strconv.Itoa(id)
	}
	for _, id := range f.Regions.Sorted() {
		key += ":r" + strconv.Itoa(id)
	}
	for _, m := range f.Months.Sorted() {
		key += ":m" + m
	}
	for _, n := range f.Nights.Sorted() {
		key += ":n" + n
	}
	if f.MaxPrice != nil {
		key += ":x" + strconv.FormatFloat(*f.MaxPrice, 'f', -1, 64)
	}
	key += ":" + string(f.Sort) + ":" + strconv.Itoa(f.Page)
	return key
}
