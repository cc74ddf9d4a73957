package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/ajramos/inboxpilot/internal/kv"
)

const recordTags = "tags"

// TagServiceImpl implements TagService
type TagServiceImpl struct {
	records *kv.Records
	mu      sync.Mutex
}

// NewTagService creates a new tag service
func NewTagService(records *kv.Records) *TagServiceImpl {
	return &TagServiceImpl{records: records}
}

func (s *TagServiceImpl) All(ctx context.Context) map[string]string {
	m := map[string]string{}
	if !s.records.Get(ctx, recordTags, &m) || m == nil {
		return map[string]string{}
	}
	return m
}

func (s *TagServiceImpl) Get(ctx context.Context, emailID string) (string, bool) {
	tag, ok := s.All(ctx)[emailID]
	if !ok || tag == "" {
		return "", false
	}
	return tag, true
}

func (s *TagServiceImpl) Save(ctx context.Context, emailID, tag string) error {
	if strings.TrimSpace(emailID) == "" || strings.TrimSpace(tag) == "" {
		return fmt.Errorf("emailID and tag cannot be empty: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.All(ctx)
	m[emailID] = tag
	if err := s.records.Set(ctx, recordTags, m); err != nil {
		return fmt.Errorf("failed to save tag: %w", err)
	}
	return nil
}

// ListUniqueTags returns the distinct tags in use, sorted
func (s *TagServiceImpl) ListUniqueTags(ctx context.Context) []string {
	seen := make(map[string]struct{})
	for _, tag := range s.All(ctx) {
		if tag != "" {
			seen[tag] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for tag := range seen {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// FilterByTag keeps the emails tagged with tag. An empty tag or "all" keeps everything.
func (s *TagServiceImpl) FilterByTag(ctx context.Context, emails []Email, tag string) []Email {
	if tag == "" || strings.EqualFold(tag, "all") {
		return emails
	}
	tags := s.All(ctx)
	out := make([]Email, 0, len(emails))
	for _, e := range emails {
		if tags[e.ID] == tag {
			out = append(out, e)
		}
	}
	return out
}
