package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultEventDuration = time.Hour

// dateLayouts are the forms the model and the dashboard send dates in
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// CalendarServiceImpl implements CalendarService
type CalendarServiceImpl struct {
	creator EventCreator
	loc     *time.Location
	logger  *zap.Logger
}

// NewCalendarService creates a new calendar service. Dates without a zone
// are read in loc (local time when nil).
func NewCalendarService(creator EventCreator, loc *time.Location, logger *zap.Logger) *CalendarServiceImpl {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarServiceImpl{creator: creator, loc: loc, logger: logger}
}

// ParseEventDate reads an ISO-8601 date or date-time
func ParseEventDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q: %w", raw, ErrInvalidInput)
}

// AddToCalendar creates a one hour event starting at isoDate
func (s *CalendarServiceImpl) AddToCalendar(ctx context.Context, title, isoDate string) (*CalendarEvent, error) {
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("event title cannot be empty: %w", ErrInvalidInput)
	}
	start, err := ParseEventDate(isoDate, s.loc)
	if err != nil {
		return nil, err
	}
	if s.creator == nil {
		return nil, fmt.Errorf("calendar not configured: %w", ErrServiceUnavailable)
	}
	evt, err := s.creator.CreateEvent(ctx, title, start, defaultEventDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to add to calendar: %w", err)
	}
	s.logger.Info("calendar event created", zap.String("title", title), zap.Time("start", start))
	return evt, nil
}
