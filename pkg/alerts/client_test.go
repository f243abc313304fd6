package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/seaward/sailfinder/pkg/types"
)

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "user-1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Expected token to sign, got %v", err)
	}
	return signed
}

func validAlert() AlertRequest {
	return AlertRequest{
		Name:       "Caribbean deal watch",
		MaxBudget:  1500,
		CabinTypes: []string{"balcony"},
		SearchCriteria: SearchCriteria{
			CruiseLineId:   []int{3},
			DepartureMonth: []string{"2026-01"},
		},
	}
}

func TestCreateForwardsAlert(t *testing.T) {
	var gotAuth string
	var gotBody AlertRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	token := signedToken(t, time.Now().Add(time.Hour))
	client := NewClient(server.URL, 0)
	if err := client.Create(context.Background(), token, validAlert()); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if gotAuth != "Bearer "+token {
		t.Errorf("Expected bearer token forwarded, got %v", gotAuth)
	}
	if gotBody.Name != "Caribbean deal watch" || gotBody.MaxBudget != 1500 {
		t.Errorf("Expected alert payload forwarded, got %+v", gotBody)
	}
}

func TestCreateRejectsExpiredToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(server.URL, 0)
	err := client.Create(context.Background(), signedToken(t, time.Now().Add(-time.Hour)), validAlert())

	var tokenErr ErrTokenInvalid
	if !errors.As(err, &tokenErr) {
		t.Fatalf("Expected ErrTokenInvalid, got %v", err)
	}
	if tokenErr.Reason != "expired" {
		t.Errorf("Expected expired reason, got %v", tokenErr.Reason)
	}
	if called {
		t.Errorf("Expected upstream not to be called with an expired token")
	}
}

func TestCreateRejectsMissingToken(t *testing.T) {
	client := NewClient("http://unused", 0)
	err := client.Create(context.Background(), "", validAlert())
	var tokenErr ErrTokenInvalid
	if !errors.As(err, &tokenErr) {
		t.Errorf("Expected ErrTokenInvalid, got %v", err)
	}
}

func TestValidateAlertRequest(t *testing.T) {
	alert := validAlert()
	alert.Name = ""
	if alert.Validate() == nil {
		t.Errorf("Expected name to be required")
	}

	alert = validAlert()
	alert.MaxBudget = 0
	if alert.Validate() == nil {
		t.Errorf("Expected positive budget to be required")
	}

	alert = validAlert()
	alert.CabinTypes = nil
	if alert.Validate() == nil {
		t.Errorf("Expected cabin types to be required")
	}
}

func TestCreateReturnsTypedValidationError(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	alert := validAlert()
	alert.Name = ""
	client := NewClient(server.URL, 0)
	err := client.Create(context.Background(), signedToken(t, time.Now().Add(time.Hour)), alert)

	var invalidErr ErrInvalidAlert
	if !errors.As(err, &invalidErr) {
		t.Fatalf("Expected ErrInvalidAlert, got %v", err)
	}
	if called {
		t.Errorf("Expected upstream not to be called with an invalid payload")
	}
}

func TestCriteriaFromState(t *testing.T) {
	state := types.NewFilterState()
	state.CruiseLines = types.NewIdSet(7, 3)
	state.Months = types.NewTokenSet("2026-02", "2026-01")
	state.Regions = types.NewIdSet(2)

	criteria := CriteriaFromState(state)
	if len(criteria.CruiseLineId) != 2 || criteria.CruiseLineId[0] != 3 {
		t.Errorf("Expected sorted cruise line ids, got %v", criteria.CruiseLineId)
	}
	if len(criteria.DepartureMonth) != 2 || criteria.DepartureMonth[0] != "2026-01" {
		t.Errorf("Expected sorted months, got %v", criteria.DepartureMonth)
	}
	if criteria.RegionId == nil || *criteria.RegionId != 2 {
		t.Errorf("Expected region 2, got %v", criteria.RegionId)
	}
}
