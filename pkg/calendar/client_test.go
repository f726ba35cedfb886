package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
	_ "time/tzdata"

	gcal "google.golang.org/api/calendar/v3"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.ClientID = "client"
	cfg.ClientSecret = "secret"
	cfg.RedirectURI = "http://localhost/callback"
	cfg.RefreshToken = "refresh"
	cfg.TimeZone = "America/Santiago"
	cfg.BaseURL = baseURL
	return cfg
}

func testAppointment() Appointment {
	return Appointment{
		ID:                "a1",
		PatientName:       "Paul",
		PatientEmail:      "paul@example.com",
		NutritionistName:  "Nadia",
		NutritionistEmail: "nadia@example.com",
		Date:              "2025-03-10",
		Time:              "09:00",
		Notes:             "first visit",
	}
}

func TestCreateEvent(t *testing.T) {
	var got gcal.Event
	var query url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/calendars/primary/events" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		query = r.URL.Query()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":       "evt-1",
			"htmlLink": "https://calendar.google.com/event?eid=evt-1",
			"conferenceData": map[string]any{
				"entryPoints": []map[string]string{{"entryPointType": "video", "uri": "https://meet.google.com/abc"}},
			},
		})
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.CreateEvent(t.Context(), testAppointment())
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if res.EventID != "evt-1" || res.MeetLink != "https://meet.google.com/abc" || res.EventLink == "" {
		t.Errorf("result = %+v", res)
	}

	if query.Get("conferenceDataVersion") != "1" || query.Get("sendUpdates") != "all" {
		t.Errorf("query = %v", query)
	}
	if got.Summary != "Nutrition consultation - Paul" {
		t.Errorf("summary = %q", got.Summary)
	}
	if got.ConferenceData == nil || got.ConferenceData.CreateRequest == nil || got.ConferenceData.CreateRequest.RequestId != "nutrition-a1" {
		t.Errorf("conference request = %+v", got.ConferenceData)
	}
	if len(got.Attendees) != 2 {
		t.Errorf("attendees = %+v", got.Attendees)
	}
	if got.Reminders == nil || got.Reminders.UseDefault || len(got.Reminders.Overrides) != 2 || got.Reminders.Overrides[0].Minutes != 1440 {
		t.Errorf("reminders = %+v", got.Reminders)
	}

	if got.Start == nil || got.End == nil {
		t.Fatalf("event times missing: %+v", got)
	}
	start, err := time.Parse(time.RFC3339, got.Start.DateTime)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	end, err := time.Parse(time.RFC3339, got.End.DateTime)
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if end.Sub(start) != time.Hour {
		t.Errorf("duration = %v, want 1h", end.Sub(start))
	}
	if got.Start.TimeZone != "America/Santiago" || !strings.HasPrefix(got.Start.DateTime, "2025-03-10T09:00:00") {
		t.Errorf("start = %+v", got.Start)
	}
}

func TestUpdateAndCancelEvent(t *testing.T) {
	var methods []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "evt-1", "htmlLink": "link"})
		case http.MethodDelete:
			w.WriteHeader(http.StatusGone)
		}
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := c.UpdateEvent(t.Context(), "evt-1", testAppointment())
	if err != nil || res.EventID != "evt-1" {
		t.Fatalf("UpdateEvent = %+v, %v", res, err)
	}
	if err := c.CancelEvent(t.Context(), "evt-1"); err != nil {
		t.Fatalf("CancelEvent on gone event: %v", err)
	}

	want := []string{"PUT /calendars/primary/events/evt-1", "DELETE /calendars/primary/events/evt-1"}
	if len(methods) != 2 || methods[0] != want[0] || methods[1] != want[1] {
		t.Errorf("requests = %v, want %v", methods, want)
	}
}

func TestProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			http.Error(w, `{"error":{"code":403,"message":"forbidden"}}`, http.StatusForbidden)
			return
		}
		http.Error(w, `{"error":{"code":500,"message":"backendError"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL), WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	tests := []struct {
		name   string
		call   func() error
		op     string
		status int
	}{
		{"create", func() error { _, err := c.CreateEvent(t.Context(), testAppointment()); return err }, "create", http.StatusInternalServerError},
		{"update", func() error { _, err := c.UpdateEvent(t.Context(), "evt-1", testAppointment()); return err }, "update", http.StatusInternalServerError},
		{"cancel", func() error { return c.CancelEvent(t.Context(), "evt-1") }, "cancel", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var perr ErrProvider
			err := tt.call()
			if !errors.As(err, &perr) || perr.Status != tt.status || perr.Op != tt.op {
				t.Fatalf("err = %v, want ErrProvider %s %d", err, tt.op, tt.status)
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.IsConfigured() {
		t.Fatal("empty config reported as configured")
	}
	if _, err := c.CreateEvent(t.Context(), testAppointment()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("CreateEvent err = %v, want ErrNotConfigured", err)
	}
	if _, err := c.AuthURL("state"); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("AuthURL err = %v, want ErrNotConfigured", err)
	}
}

func TestAuthURL(t *testing.T) {
	cfg := testConfig("")
	cfg.RefreshToken = ""
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	raw, err := c.AuthURL("xyz")
	if err != nil {
		t.Fatalf("AuthURL: %v", err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	q := u.Query()
	if q.Get("access_type") != "offline" || q.Get("prompt") != "consent" || q.Get("scope") != Scope || q.Get("state") != "xyz" {
		t.Errorf("query = %v", q)
	}
}
