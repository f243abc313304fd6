package alerts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/seaward/sailfinder/pkg/types"
)

const alertsPath = "/alerts"

// SearchCriteria is the filter subset an alert can watch.
type SearchCriteria struct {
	CruiseLineId   []int    `json:"cruiseLineId"`
	DepartureMonth []string `json:"departureMonth"`
	RegionId       *int     `json:"regionId,omitempty"`
}

// AlertRequest is the payload for the upstream alert-creation endpoint.
type AlertRequest struct {
	Name           string         `json:"name"`
	SearchCriteria SearchCriteria `json:"searchCriteria"`
	MaxBudget      float64        `json:"maxBudget"`
	CabinTypes     []string       `json:"cabinTypes"`
}

// CriteriaFromState maps the current listing state to alert criteria. Only
// the facets the alert endpoint understands carry over.
func CriteriaFromState(state types.FilterState) SearchCriteria {
	criteria := SearchCriteria{
		CruiseLineId:   state.CruiseLines.Sorted(),
		DepartureMonth: state.Months.Sorted(),
	}
	if regions := state.Regions.Sorted(); len(regions) > 0 {
		criteria.RegionId = &regions[0]
	}
	return criteria
}

func (r AlertRequest) Validate() error {
	if r.Name == "" {
		return ErrInvalidAlert{Reason: "alert name is required"}
	}
	if r.MaxBudget <= 0 {
		return ErrInvalidAlert{Reason: "max budget must be positive"}
	}
	if len(r.CabinTypes) == 0 {
		return ErrInvalidAlert{Reason: "at least one cabin type is required"}
	}
	return nil
}

type Client struct {
	baseUrl string
	http    *http.Client
}

func NewClient(baseUrl string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{baseUrl: baseUrl, http: &http.Client{Timeout: timeout}}
}

// Create validates the request and the caller's bearer token, then forwards
// the alert to the upstream endpoint. The token is only checked for shape
// and expiry here; real verification stays with the auth provider.
func (c *Client) Create(ctx context.Context, token string, alert AlertRequest) error {
	if err := alert.Validate(); err != nil {
		return err
	}
	if err := checkToken(token); err != nil {
		return err
	}

	body, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+alertsPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Request-Id", uuid.NewString())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("creating alert: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("alert endpoint returned %s", resp.Status)
	}
	return nil
}

// ErrInvalidAlert marks payloads rejected by local validation, before the
// request ever reaches upstream.
type ErrInvalidAlert struct {
	Reason string
}

func (e ErrInvalidAlert) Error() string {
	return "invalid alert: " + e.Reason
}

// ErrTokenInvalid marks requests rejected before reaching upstream.
type ErrTokenInvalid struct {
	Reason string
}

func (e ErrTokenInvalid) Error() string {
	return "invalid bearer token: " + e.Reason
}

func checkToken(token string) error {
	if token == "" {
		return ErrTokenInvalid{Reason: "missing"}
	}
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return ErrTokenInvalid{Reason: "malformed"}
	}
	if !claims.VerifyExpiresAt(time.Now().Unix(), false) {
		return ErrTokenInvalid{Reason: "expired"}
	}
	return nil
}
