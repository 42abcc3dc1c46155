package google

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

var testCreds = providers.Credentials{ClientID: "g-id", ClientSecret: "g-secret"}

func TestBuildAuthURL_OfflineConsent(t *testing.T) {
	h := NewHandler(DefaultConfig())

	raw := h.BuildAuthURL("g-id", "http://cb", "st")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("unparseable URL: %v", err)
	}

	q := u.Query()
	// Without these two, Google issues no refresh token.
	if q.Get("access_type") != "offline" {
		t.Errorf("access_type = %q", q.Get("access_type"))
	}
	if q.Get("prompt") != "consent" {
		t.Errorf("prompt = %q", q.Get("prompt"))
	}
}

func TestExchangeCode_CredentialsInBody(t *testing.T) {
	var gotForm url.Values
	var hasBasic bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, hasBasic = r.BasicAuth()
		r.ParseForm()
		gotForm = r.PostForm
		json.NewEncoder(w).Encode(map[string]any{"access_token": "at", "refresh_token": "rt", "expires_in": 3599})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.TokenURL = srv.URL
	h := NewHandler(cfg)

	if _, err := h.ExchangeCode(context.Background(), testCreds, "code", "http://cb"); err != nil {
		t.Fatalf("exchange: %v", err)
	}
	if hasBasic {
		t.Error("google token requests should not carry basic auth")
	}
	if gotForm.Get("client_id") != "g-id" || gotForm.Get("client_secret") != "g-secret" {
		t.Errorf("credentials in body = %q / %q", gotForm.Get("client_id"), gotForm.Get("client_secret"))
	}
}

func TestCreateMeeting(t *testing.T) {
	var gotQuery url.Values
	var gotPayload map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendars/primary/events" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		json.NewDecoder(r.Body).Decode(&gotPayload)
		json.NewEncoder(w).Encode(map[string]any{
			"id":          "evt-1",
			"hangoutLink": "https://meet.google.com/abc-defg-hij",
		})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.CalendarURL = srv.URL
	h := NewHandler(cfg)

	start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	meeting, err := h.CreateMeeting(context.Background(), "at", domain.MeetingRequest{
		Topic:           "Review",
		StartTime:       start,
		DurationMinutes: 60,
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}

	// The conference sub-request is silently ignored without this.
	if gotQuery.Get("conferenceDataVersion") != "1" {
		t.Errorf("conferenceDataVersion = %q", gotQuery.Get("conferenceDataVersion"))
	}

	if gotPayload["summary"] != "Review" {
		t.Errorf("summary = %v", gotPayload["summary"])
	}
	startObj := gotPayload["start"].(map[string]any)
	if startObj["timeZone"] != "UTC" {
		t.Errorf("default timeZone = %v", startObj["timeZone"])
	}
	endObj := gotPayload["end"].(map[string]any)
	if endObj["dateTime"] != "2026-03-01T11:00:00+00:00" {
		t.Errorf("end dateTime = %v", endObj["dateTime"])
	}

	conf := gotPayload["conferenceData"].(map[string]any)["createRequest"].(map[string]any)
	if conf["requestId"] == "" {
		t.Error("expected a conference requestId")
	}
	key := conf["conferenceSolutionKey"].(map[string]any)
	if key["type"] != "hangoutsMeet" {
		t.Errorf("conferenceSolutionKey.type = %v", key["type"])
	}

	if meeting.JoinURL != "https://meet.google.com/abc-defg-hij" {
		t.Errorf("JoinURL = %q", meeting.JoinURL)
	}
	if meeting.ExternalMeetingID != "evt-1" {
		t.Errorf("ExternalMeetingID = %q", meeting.ExternalMeetingID)
	}
}

func TestCreateMeeting_JoinURLFromEntryPoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"id": "evt-2",
			"conferenceData": map[string]any{
				"entryPoints": []map[string]string{
					{"entryPointType": "phone", "uri": "tel:+1-555"},
					{"entryPointType": "video", "uri": "https://meet.google.com/xyz"},
				},
			},
		})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.CalendarURL = srv.URL
	h := NewHandler(cfg)

	meeting, err := h.CreateMeeting(context.Background(), "at", domain.MeetingRequest{
		Topic: "X", StartTime: time.Now(), DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("create meeting: %v", err)
	}
	if meeting.JoinURL != "https://meet.google.com/xyz" {
		t.Errorf("JoinURL = %q", meeting.JoinURL)
	}
}

func TestCreateMeeting_NoJoinURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "evt-3"})
	}))
	defer srv.Close()

	cfg := DefaultConfig()
	cfg.CalendarURL = srv.URL
	h := NewHandler(cfg)

	_, err := h.CreateMeeting(context.Background(), "at", domain.MeetingRequest{
		Topic: "X", StartTime: time.Now(), DurationMinutes: 30,
	})
	if err == nil {
		t.Fatal("expected an error for an event without a join URL")
	}
}

func TestFetchIdentity(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"id":    "g-1",
			"email": "dana@example.com",
			"name":  "Dana Reyes",
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
	if id.Email != "dana@example.com" {
		t.Errorf("Email = %q", id.Email)
	}
}
