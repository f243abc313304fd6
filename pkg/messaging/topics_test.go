package messaging

import "testing"

func TestTopicNaming(t *testing.T) {
	// Exchange, queue and routing key all derive from this name; a drift here
	// silently detaches consumers from publishers.
	if got := getName("us", TopicPriceLowered); got != "us_price_lowered" {
		t.Errorf("Expected us_price_lowered, got %v", got)
	}
	if got := getName("global", TopicTracking); got != "global_tracking" {
		t.Errorf("Expected global_tracking, got %v", got)
	}
}
