package microsoft

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/nimbus-labs/meetlink-core/internal/adapters/driven/providers"
	"github.com/nimbus-labs/meetlink-core/internal/core/domain"
)

var testCreds = providers.Credentials{ClientID: "ms-id", ClientSecret: "ms-secret"}

func TestBuildAuthURL_OfflineAccessScope(t *testing.T) {
	h := NewHandler(DefaultConfig())

	raw := h.BuildAuthURL("ms-id", "http://cb", "st")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unparseable URL: %v", err)
	}
	// offline_access is what makes Microsoft issue a refresh token.
	if scope := u.Query().Get("scope"); scope != "offline_access OnlineMeetings.ReadWrite User.Read" {
		t.Errorf("scope = %q", scope)
	}
}

func TestExchangeCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"access_token":  "at",
			"refresh_token": "rt",
			"expires_in":    3600,
		})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.TokenURL = srv.URL
	h := NewHandler(cfg)

	token, err := h.ExchangeCode(context.Background(), testCreds, "code", "http://cb")
	if err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if token.AccessToken != "at" || token.RefreshToken != "rt" {
		t.Errorf("token = %+v", token)
	}
}

func TestCreateMeeting(t *testing.T) {
	var gotPath string
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]string{
			"id":         "mtg-1",
			"joinWebUrl": "https://teams.microsoft.com/l/meetup-join/abc",
		})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.GraphURL = srv.URL
	h := NewHandler(cfg)

	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	meeting, err := h.CreateMeeting(context.Background(), "at", domain.MeetingRequest{
		Topic:           "Sync",
		StartTime:       start,
		DurationMinutes: 25,
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	if gotPath != "/me/onlineMeetings" {
		t.Errorf("path = %q", gotPath)
	}
	if gotPayload["subject"] != "Sync" {
		t.Errorf("subject = %v", gotPayload["subject"])
	}
	if gotPayload["startDateTime"] != "2026-03-01T09:00:00Z" {
		t.Errorf("startDateTime = %v", gotPayload["startDateTime"])
	}
	// End is derived from start plus duration.
	if gotPayload["endDateTime"] != "2026-03-01T09:25:00Z" {
		t.Errorf("endDateTime = %v", gotPayload["endDateTime"])
	}

	if meeting.JoinURL != "https://teams.microsoft.com/l/meetup-join/abc" {
		t.Errorf("JoinURL = %q", meeting.JoinURL)
	}
	if meeting.Provider != domain.ProviderMicrosoft {
		t.Errorf("Provider = %q", meeting.Provider)
	}
}

func TestCreateMeeting_NoJoinURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "mtg-2"})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.GraphURL = srv.URL
	h := NewHandler(cfg)

	_, err := h.CreateMeeting(context.Background(), "at", domain.MeetingRequest{
		Topic: "X", StartTime: time.Now(), DurationMinutes: 30,
	})
	if err == nil {
		t.Fatal("expected an error for a response without a join URL")
	}
}

func TestFetchIdentity_MailFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":                "ms-1",
			"userPrincipalName": "dana@contoso.com",
			"displayName":       "Dana Reyes",
		})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.IdentityURL = srv.URL
	h := NewHandler(cfg)

	id, err := h.FetchIdentity(context.Background(), "at")
	if err != nil {
		t.Fatalf("fetch identity: %v", err)
	}
	// mail can be empty for some account types; UPN is the fallback.
	if id.Email != "dana@contoso.com" {
		t.Errorf("Email = %q", id.Email)
	}
}
