package calendar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client writes events through the Google Calendar v3 API with an offline
// refresh token.
type Client struct {
	cfg   Config
	oauth *oauth2.Config
	loc   *time.Location
	http  *http.Client
	svc   *gcal.Service
}

type Option func(*Client)

// WithHTTPClient replaces the authorized HTTP client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg Config, opts ...Option) (*Client, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("calendar time zone: %w", err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	c := &Client{
		cfg: cfg,
		loc: loc,
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Endpoint:     endpoints.Google,
			Scopes:       []string{Scope},
		},
	}
	if cfg.RefreshToken != "" {
		ts := c.oauth.TokenSource(context.Background(), &oauth2.Token{RefreshToken: cfg.RefreshToken})
		c.http = oauth2.NewClient(context.Background(), ts)
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http != nil {
		svc, err := gcal.NewService(context.Background(),
			option.WithHTTPClient(c.http),
			option.WithEndpoint(cfg.BaseURL),
		)
		if err != nil {
			return nil, fmt.Errorf("calendar service: %w", err)
		}
		c.svc = svc
	}
	return c, nil
}

func (c *Client) IsConfigured() bool { return c.cfg.Configured() && c.svc != nil }

// HasCredentials reports whether the consent flow can run.
func (c *Client) HasCredentials() bool { return c.cfg.HasCredentials() }

// AuthURL returns the consent page URL requesting offline access.
func (c *Client) AuthURL(state string) (string, error) {
	if !c.cfg.HasCredentials() {
		return "", ErrNotConfigured
	}
	return c.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

// Exchange trades an authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if !c.cfg.HasCredentials() {
		return nil, ErrNotConfigured
	}
	tok, err := c.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, ErrProvider{Op: "exchange", Err: err}
	}
	return tok, nil
}

// CreateEvent inserts an event with a Meet conference and invites both
// participants.
func (c *Client) CreateEvent(ctx context.Context, a Appointment) (Result, error) {
	if !c.IsConfigured() {
		return Result{}, ErrNotConfigured
	}
	ev, err := c.buildEvent(a)
	if err != nil {
		return Result{}, err
	}
	ev.Reminders = &gcal.EventReminders{
		Overrides: []*gcal.EventReminder{
			{Method: "email", Minutes: 24 * 60},
			{Method: "popup", Minutes: 30},
		},
		ForceSendFields: []string{"UseDefault"},
	}
	ev.ConferenceData = &gcal.ConferenceData{
		CreateRequest: &gcal.CreateConferenceRequest{
			RequestId:             "nutrition-" + a.ID,
			ConferenceSolutionKey: &gcal.ConferenceSolutionKey{Type: "hangoutsMeet"},
		},
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	out, err := c.svc.Events.Insert(c.cfg.CalendarID, ev).
		ConferenceDataVersion(1).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return Result{}, providerError("create", err)
	}
	return resultOf(out), nil
}

// UpdateEvent rewrites the time, attendees and description of an event.
func (c *Client) UpdateEvent(ctx context.Context, eventID string, a Appointment) (Result, error) {
	if !c.IsConfigured() {
		return Result{}, ErrNotConfigured
	}
	if eventID == "" {
		return Result{}, ErrProvider{Op: "update", Err: errors.New("event id is required")}
	}
	ev, err := c.buildEvent(a)
	if err != nil {
		return Result{}, err
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	out, err := c.svc.Events.Update(c.cfg.CalendarID, eventID, ev).
		SendUpdates("all").
		Context(ctx).
		Do()
	if err != nil {
		return Result{}, providerError("update", err)
	}
	return resultOf(out), nil
}

// CancelEvent deletes the event. An event that is already gone counts as
// cancelled.
func (c *Client) CancelEvent(ctx context.Context, eventID string) error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	if eventID == "" {
		return ErrProvider{Op: "cancel", Err: errors.New("event id is required")}
	}

	ctx, cancel := c.callContext(ctx)
	defer cancel()
	err := c.svc.Events.Delete(c.cfg.CalendarID, eventID).
		SendUpdates("all").
		Context(ctx).
		Do()
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusGone || gerr.Code == http.StatusNotFound) {
		return nil
	}
	if err != nil {
		return providerError("cancel", err)
	}
	return nil
}

func (c *Client) buildEvent(a Appointment) (*gcal.Event, error) {
	start, err := time.ParseInLocation("2006-01-02 15:04", a.Date+" "+a.Time, c.loc)
	if err != nil {
		return nil, ErrProvider{Op: "build", Err: err}
	}
	end := start.Add(c.cfg.EventDuration)

	var desc strings.Builder
	desc.WriteString("Scheduled nutrition consultation.\n\n")
	fmt.Fprintf(&desc, "Patient: %s\nEmail: %s\nNutritionist: %s\n", a.PatientName, a.PatientEmail, a.NutritionistName)
	if a.Notes != "" {
		fmt.Fprintf(&desc, "\nNotes: %s\n", a.Notes)
	}

	ev := &gcal.Event{
		Summary:     "Nutrition consultation - " + a.PatientName,
		Description: strings.TrimSpace(desc.String()),
		Start:       &gcal.EventDateTime{DateTime: start.Format(time.RFC3339), TimeZone: c.cfg.TimeZone},
		End:         &gcal.EventDateTime{DateTime: end.Format(time.RFC3339), TimeZone: c.cfg.TimeZone},
	}
	if a.PatientEmail != "" {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: a.PatientEmail, DisplayName: a.PatientName})
	}
	if a.NutritionistEmail != "" {
		ev.Attendees = append(ev.Attendees, &gcal.EventAttendee{Email: a.NutritionistEmail, DisplayName: a.NutritionistName})
	}
	return ev, nil
}

func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.cfg.RequestTimeout > 0 {
		return context.WithTimeout(ctx, c.cfg.RequestTimeout)
	}
	return ctx, func() {}
}

// providerError keeps the HTTP status of API failures so callers can tell
// rejected requests from transport errors.
func providerError(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return ErrProvider{Op: op, Status: gerr.Code, Err: err}
	}
	return ErrProvider{Op: op, Err: err}
}
