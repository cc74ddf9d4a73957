package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

func TestCreateEvent(t *testing.T) {
	var got cal.Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/calendars/primary/events"), r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "e1", "htmlLink": "https://calendar.example/e1"})
	}))
	defer srv.Close()

	svc, err := cal.NewService(context.Background(), option.WithEndpoint(srv.URL+"/"), option.WithoutAuthentication())
	require.NoError(t, err)

	start := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	evt, err := NewClient(svc).CreateEvent(context.Background(), "Pay rent", start, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://calendar.example/e1", evt.Link)
	assert.Equal(t, start.Add(time.Hour), evt.End)
	assert.Equal(t, "Pay rent", got.Summary)
	assert.Equal(t, "2025-03-14T09:00:00Z", got.Start.DateTime)
	assert.Equal(t, "2025-03-14T10:00:00Z", got.End.DateTime)
}

func TestCreateEvent_Validation(t *testing.T) {
	_, err := NewClient(nil).CreateEvent(context.Background(), "x", time.Now(), time.Hour)
	assert.ErrorContains(t, err, "calendar client not initialized")

	_, err = NewClient(&cal.Service{}).CreateEvent(context.Background(), "  ", time.Now(), time.Hour)
	assert.ErrorContains(t, err, "empty event title")
}
