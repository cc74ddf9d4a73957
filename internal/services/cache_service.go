package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ajramos/inboxpilot/internal/kv"
)

const (
	recordAnalysis  = "ai-cache"
	recordSummaries = "summaries"
)

// AnalysisCacheServiceImpl implements AnalysisCacheService over one
// emailID -> AnalysisRecord map record
type AnalysisCacheServiceImpl struct {
	records *kv.Records
	now     func() time.Time
	mu      sync.Mutex
}

// NewAnalysisCacheService creates a new analysis cache service
func NewAnalysisCacheService(records *kv.Records) *AnalysisCacheServiceImpl {
	return &AnalysisCacheServiceImpl{records: records, now: time.Now}
}

func (s *AnalysisCacheServiceImpl) load(ctx context.Context) map[string]AnalysisRecord {
	m := map[string]AnalysisRecord{}
	if !s.records.Get(ctx, recordAnalysis, &m) || m == nil {
		return map[string]AnalysisRecord{}
	}
	return m
}

func (s *AnalysisCacheServiceImpl) Get(ctx context.Context, emailID string) (*AnalysisRecord, bool) {
	rec, ok := s.load(ctx)[emailID]
	if !ok {
		return nil, false
	}
	if rec.Reminders == nil {
		rec.Reminders = []Reminder{}
	}
	return &rec, true
}

func (s *AnalysisCacheServiceImpl) Save(ctx context.Context, emailID, category string, reminders []Reminder) error {
	if strings.TrimSpace(emailID) == "" {
		return fmt.Errorf("emailID cannot be empty: %w", ErrInvalidInput)
	}
	if reminders == nil {
		reminders = []Reminder{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load(ctx)
	m[emailID] = AnalysisRecord{Category: category, Reminders: reminders, Timestamp: s.now().UnixMilli()}
	if err := s.records.Set(ctx, recordAnalysis, m); err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *AnalysisCacheServiceImpl) Invalidate(ctx context.Context, emailID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load(ctx)
	if _, ok := m[emailID]; !ok {
		return nil
	}
	delete(m, emailID)
	if err := s.records.Set(ctx, recordAnalysis, m); err != nil {
		return fmt.Errorf("failed to invalidate analysis: %w", err)
	}
	return nil
}

// SummaryServiceImpl implements SummaryService
type SummaryServiceImpl struct {
	records *kv.Records
	now     func() time.Time
	mu      sync.Mutex
}

// NewSummaryService creates a new summary service
func NewSummaryService(records *kv.Records) *SummaryServiceImpl {
	return &SummaryServiceImpl{records: records, now: time.Now}
}

func (s *SummaryServiceImpl) load(ctx context.Context) map[string]SummaryRecord {
	m := map[string]SummaryRecord{}
	if !s.records.Get(ctx, recordSummaries, &m) || m == nil {
		return map[string]SummaryRecord{}
	}
	return m
}

func (s *SummaryServiceImpl) Get(ctx context.Context, emailID string) (*SummaryRecord, bool) {
	rec, ok := s.load(ctx)[emailID]
	if !ok {
		return nil, false
	}
	return &rec, true
}

func (s *SummaryServiceImpl) Save(ctx context.Context, emailID, summary string) error {
	if strings.TrimSpace(emailID) == "" {
		return fmt.Errorf("emailID cannot be empty: %w", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.load(ctx)
	m[emailID] = SummaryRecord{EmailID: emailID, Summary: summary, Created: s.now().UnixMilli()}
	if err := s.records.Set(ctx, recordSummaries, m); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}
	return nil
}
