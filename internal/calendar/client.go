package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	cal "google.golang.org/api/calendar/v3"
)

// Client wraps the calendar.Service and provides convenience methods for event creation
type Client struct {
	Service *cal.Service
}

// NewClient creates a new Calendar client
func NewClient(service *cal.Service) *Client {
	return &Client{Service: service}
}

// Event is the created calendar entry
type Event struct {
	ID    string    `json:"id"`
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Link  string    `json:"link"`
}

// CreateEvent inserts a timed event into the primary calendar
func (c *Client) CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration) (*Event, error) {
	if c == nil || c.Service == nil {
		return nil, fmt.Errorf("calendar client not initialized")
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("empty event title")
	}
	if duration <= 0 {
		duration = time.Hour
	}
	end := start.Add(duration)

	evt := &cal.Event{
		Summary: title,
		Start:   &cal.EventDateTime{DateTime: start.UTC().Format(time.RFC3339)},
		End:     &cal.EventDateTime{DateTime: end.UTC().Format(time.RFC3339)},
	}
	created, err := c.Service.Events.Insert("primary", evt).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return &Event{ID: created.Id, Title: title, Start: start, End: end, Link: created.HtmlLink}, nil
}
