package calendarsync

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// GoogleCalendar writes events through the Calendar API as a service
// account that hosts have shared their calendars with.
type GoogleCalendar struct {
	svc      *calendar.Service
	timeZone string
}

func NewGoogleCalendar(ctx context.Context, credentialsJSON []byte, timeZone string) (*GoogleCalendar, error) {
	cfg, err := google.JWTConfigFromJSON(credentialsJSON, calendar.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	return NewGoogleCalendarWithClient(ctx, cfg.Client(ctx), timeZone)
}

func NewGoogleCalendarWithClient(ctx context.Context, client *http.Client, timeZone string, opts ...option.ClientOption) (*GoogleCalendar, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(client)}, opts...)
	svc, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &GoogleCalendar{svc: svc, timeZone: timeZone}, nil
}

func (g *GoogleCalendar) InsertEvent(ctx context.Context, calendarID string, e Event) (string, error) {
	created, err := g.svc.Events.Insert(calendarID, &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       g.dateTime(e.Start),
		End:         g.dateTime(e.End),
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert event: %w", err)
	}
	return created.Id, nil
}

func (g *GoogleCalendar) PatchEvent(ctx context.Context, calendarID, eventID string, e Event) error {
	_, err := g.svc.Events.Patch(calendarID, eventID, &calendar.Event{
		Summary:     e.Summary,
		Description: e.Description,
		Start:       g.dateTime(e.Start),
		End:         g.dateTime(e.End),
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("patch event: %w", err)
	}
	return nil
}

// DeleteEvent treats an event that is already gone as deleted.
func (g *GoogleCalendar) DeleteEvent(ctx context.Context, calendarID, eventID string) error {
	err := g.svc.Events.Delete(calendarID, eventID).Context(ctx).Do()
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && (apiErr.Code == http.StatusNotFound || apiErr.Code == http.StatusGone) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	return nil
}

func (g *GoogleCalendar) dateTime(t time.Time) *calendar.EventDateTime {
	return &calendar.EventDateTime{DateTime: t.Format(time.RFC3339), TimeZone: g.timeZone}
}
