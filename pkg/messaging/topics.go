package messaging

// ChangeTopic names one event stream on the broker.
type ChangeTopic string

const (
	// TopicPriceLowered is published by the upstream ingest pipeline when a
	// sailing's price drops; cached search pages for affected filters are
	// invalidated on receipt.
	TopicPriceLowered ChangeTopic = "price_lowered"
	// TopicOptionsChanged signals that the facet option lists changed
	// upstream (new ship, renamed port) and session caches should refetch.
	TopicOptionsChanged ChangeTopic = "options_changed"
	// TopicTracking carries search tracking events.
	TopicTracking ChangeTopic = "tracking"
)

// PriceLowered is the payload of TopicPriceLowered.
type PriceLowered struct {
	CruiseId     int     `json:"cruiseId"`
	CruiseLineId int     `json:"cruiseLineId"`
	NewPrice     float64 `json:"newPrice"`
	OldPrice     float64 `json:"oldPrice"`
}
