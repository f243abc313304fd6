package tracking

import (
	"context"
	"log"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/seaward/sailfinder/pkg/messaging"
	"github.com/seaward/sailfinder/pkg/types"
)

// RabbitTracking publishes events to the shared tracking topic.
type RabbitTracking struct {
	market     string
	connection *amqp.Connection
}

func NewRabbitTracking(url, market string) (*RabbitTracking, error) {
	t := RabbitTracking{market: market}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	t.connection = conn
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	defer ch.Close()
	if err := messaging.DefineTopic(ch, "global", messaging.TopicTracking); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *RabbitTracking) Close() error {
	return t.connection.Close()
}

func (t *RabbitTracking) send(data any) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return messaging.Send(ctx, t.connection, "global", messaging.TopicTracking, data)
}

type BaseEvent struct {
	SessionId int    `json:"session_id"`
	Market    string `json:"market,omitempty"`
	Event     uint16 `json:"event"`
}

type SessionEvent struct {
	*BaseEvent
	UserAgent string `json:"user_agent,omitempty"`
	Ip        string `json:"ip,omitempty"`
	Language  string `json:"language,omitempty"`
}

type SearchEvent struct {
	*BaseEvent
	State       types.FilterState `json:"filters"`
	ResultCount int               `json:"noi"`
	Page        int               `json:"page"`
	Referer     string            `json:"referer,omitempty"`
}

type AlertEvent struct {
	*BaseEvent
	Name string `json:"name"`
}

func clientIp(r *http.Request) string {
	ip := r.Header.Get("X-Real-Ip")
	if ip == "" {
		ip = r.Header.Get("X-Forwarded-For")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}
	return ip
}

func (t *RabbitTracking) TrackSession(sessionId int, r *http.Request) {
	err := t.send(SessionEvent{
		BaseEvent: &BaseEvent{Event: 0, SessionId: sessionId, Market: t.market},
		Language:  r.Header.Get("Accept-Language"),
		UserAgent: r.UserAgent(),
		Ip:        clientIp(r),
	})
	if err != nil {
		log.Printf("Error sending session event: %v", err)
	}
}

func (t *RabbitTracking) TrackSearch(sessionId int, state types.FilterState, resultCount int, r *http.Request) {
	err := t.send(SearchEvent{
		BaseEvent:   &BaseEvent{Event: 1, SessionId: sessionId, Market: t.market},
		State:       state,
		ResultCount: resultCount,
		Page:        state.Page,
		Referer:     r.Referer(),
	})
	if err != nil {
		log.Printf("Error sending search event: %v", err)
	}
}

func (t *RabbitTracking) TrackAlertCreated(sessionId int, name string) {
	err := t.send(AlertEvent{
		BaseEvent: &BaseEvent{Event: 2, SessionId: sessionId, Market: t.market},
		Name:      name,
	})
	if err != nil {
		log.Printf("Error sending alert event: %v", err)
	}
}
