package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/inboxpilot/internal/kv"
	"github.com/google/uuid"
)

const recordReminders = "reminders"

// ReminderServiceImpl implements ReminderService over a flat list record
type ReminderServiceImpl struct {
	records *kv.Records
	now     func() time.Time
	newID   func() string
	mu      sync.Mutex
}

// NewReminderService creates a new reminder service
func NewReminderService(records *kv.Records) *ReminderServiceImpl {
	return &ReminderServiceImpl{records: records, now: time.Now, newID: uuid.NewString}
}

func (s *ReminderServiceImpl) List(ctx context.Context) []PersistedReminder {
	var list []PersistedReminder
	if !s.records.Get(ctx, recordReminders, &list) || list == nil {
		return []PersistedReminder{}
	}
	return list
}

func (s *ReminderServiceImpl) ListForEmail(ctx context.Context, emailID string) []PersistedReminder {
	out := []PersistedReminder{}
	for _, r := range s.List(ctx) {
		if r.EmailID == emailID {
			out = append(out, r)
		}
	}
	return out
}

// Add appends a reminder with a fresh id. Duplicates are allowed.
func (s *ReminderServiceImpl) Add(ctx context.Context, emailID, text, date string) (*PersistedReminder, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("reminder text cannot be empty: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	r := PersistedReminder{
		ID:      s.newID(),
		EmailID: emailID,
		Text:    text,
		Date:    date,
		Created: s.now().UnixMilli(),
	}
	list := append(s.List(ctx), r)
	if err := s.records.Set(ctx, recordReminders, list); err != nil {
		return nil, fmt.Errorf("failed to save reminder: %w", err)
	}
	return &r, nil
}

// Remove deletes the reminder with id. Removing an unknown id is a no-op.
func (s *ReminderServiceImpl) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.List(ctx)
	kept := make([]PersistedReminder, 0, len(list))
	for _, r := range list {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	if err := s.records.Set(ctx, recordReminders, kept); err != nil {
		return fmt.Errorf("failed to remove reminder: %w", err)
	}
	return nil
}
