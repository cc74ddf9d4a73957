package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxpilot/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TriageServiceImpl implements TriageService. It holds no state between
// runs; everything it learns goes into the stores.
type TriageServiceImpl struct {
	ai        AIService
	cache     AnalysisCacheService
	tags      TagService
	privacy   PrivacyService
	reminders ReminderService
	summaries SummaryService
	logger    *zap.Logger

	autoSaveReminders bool
}

// TriageDeps groups the collaborators of the pipeline
type TriageDeps struct {
	AI        AIService
	Cache     AnalysisCacheService
	Tags      TagService
	Privacy   PrivacyService
	Reminders ReminderService
	Summaries SummaryService
	Logger    *zap.Logger

	// AutoSaveReminders persists every detected reminder after a fresh analysis
	AutoSaveReminders bool
}

// NewTriageService creates a new triage pipeline
func NewTriageService(d TriageDeps) *TriageServiceImpl {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TriageServiceImpl{
		ai:                d.AI,
		cache:             d.Cache,
		tags:              d.Tags,
		privacy:           d.Privacy,
		reminders:         d.Reminders,
		summaries:         d.Summaries,
		logger:            logger,
		autoSaveReminders: d.AutoSaveReminders,
	}
}

func validEmail(email *Email) error {
	if email == nil || strings.TrimSpace(email.ID) == "" {
		return fmt.Errorf("email id cannot be empty: %w", ErrInvalidInput)
	}
	return nil
}

// Triage categorizes the email and detects its reminders.
//
// A cached analysis is returned as is unless force is set. Senders matched
// by a privacy rule never reach the model and leave no trace in the stores.
// If ctx is cancelled while the model is working, nothing is written and the
// run reports TriageSuperseded.
func (s *TriageServiceImpl) Triage(ctx context.Context, email *Email, force bool) (*TriageResult, error) {
	if err := validEmail(email); err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.logger.With(zap.String("email_id", email.ID))

	if !force {
		if rec, ok := s.cache.Get(ctx, email.ID); ok {
			metrics.IncrementTriageOutcome(string(TriageCached) + "_hit")
			return &TriageResult{EmailID: email.ID, State: TriageCached, FromCache: true, Analysis: rec, Duration: time.Since(start)}, nil
		}
	}

	if s.privacy != nil && s.privacy.IsBlocked(ctx, email.SenderEmail, DomainOf(email.SenderEmail)) {
		metrics.IncrementTriageOutcome(string(TriageBlocked))
		log.Debug("sender blocked by privacy rule, skipping analysis")
		return &TriageResult{EmailID: email.ID, State: TriageBlocked, Duration: time.Since(start)}, nil
	}

	if ctx.Err() != nil {
		return s.superseded(email.ID, start), nil
	}

	content := CleanContent(email)
	var (
		category  string
		reminders []Reminder
		g         errgroup.Group
	)
	g.Go(func() error {
		category, _ = s.ai.Categorize(ctx, content)
		return nil
	})
	g.Go(func() error {
		reminders, _ = s.ai.DetectReminders(ctx, content)
		return nil
	})
	_ = g.Wait()

	if ctx.Err() != nil {
		log.Debug("selection changed during analysis, discarding result")
		return s.superseded(email.ID, start), nil
	}
	if reminders == nil {
		reminders = []Reminder{}
	}

	if err := s.cache.Save(ctx, email.ID, category, reminders); err != nil {
		log.Warn("failed to cache analysis", zap.Error(err))
	}
	if category != "" && s.tags != nil {
		if err := s.tags.Save(ctx, email.ID, category); err != nil {
			log.Warn("failed to save tag", zap.Error(err))
		}
	}
	if s.autoSaveReminders && s.reminders != nil {
		for _, r := range reminders {
			if _, err := s.reminders.Add(ctx, email.ID, r.Text, r.Date); err != nil {
				log.Warn("failed to save reminder", zap.Error(err))
			}
		}
	}

	metrics.IncrementTriageOutcome(string(TriageCached))
	log.Info("email analyzed", zap.String("category", category), zap.Int("reminders", len(reminders)))
	return &TriageResult{
		EmailID:  email.ID,
		State:    TriageCached,
		Analysis: &AnalysisRecord{Category: category, Reminders: reminders, Timestamp: time.Now().UnixMilli()},
		Duration: time.Since(start),
	}, nil
}

func (s *TriageServiceImpl) superseded(emailID string, start time.Time) *TriageResult {
	metrics.IncrementTriageOutcome(string(TriageSuperseded))
	return &TriageResult{EmailID: emailID, State: TriageSuperseded, Duration: time.Since(start)}
}

// Summarize always asks the model and stores whatever comes back
func (s *TriageServiceImpl) Summarize(ctx context.Context, email *Email) (string, AIStatus, error) {
	if err := validEmail(email); err != nil {
		return "", "", err
	}
	summary, status := s.ai.Summarize(ctx, email)
	if s.summaries != nil {
		if err := s.summaries.Save(ctx, email.ID, summary); err != nil {
			s.logger.Warn("failed to save summary", zap.String("email_id", email.ID), zap.Error(err))
		}
	}
	return summary, status, nil
}

// GetSummary returns the stored summary for display
func (s *TriageServiceImpl) GetSummary(ctx context.Context, emailID string) (*SummaryRecord, bool) {
	if s.summaries == nil {
		return nil, false
	}
	return s.summaries.Get(ctx, emailID)
}

// QuickReplies proposes reply options; they are not stored
func (s *TriageServiceImpl) QuickReplies(ctx context.Context, email *Email) ([]string, AIStatus) {
	return s.ai.QuickReplies(ctx, email)
}

// DraftReply writes a reply draft; it is not stored
func (s *TriageServiceImpl) DraftReply(ctx context.Context, email *Email) (string, AIStatus) {
	return s.ai.DraftReply(ctx, email)
}

// DetectReminders proposes reminders without touching any store
func (s *TriageServiceImpl) DetectReminders(ctx context.Context, email *Email) ([]Reminder, AIStatus) {
	return s.ai.DetectReminders(ctx, CleanContent(email))
}
