package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ajramos/inboxpilot/internal/gmail"
	"github.com/ajramos/inboxpilot/internal/render"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
)

const (
	defaultPageSize     = 10
	fetchWorkers        = 10
	previewWidth        = 120
	ListFilterAll       = "all"
	ListFilterUnread    = "unread"
	ListFilterStarred   = "starred"
	replySubjectPrefix  = "Re: "
	replySubjectPrefixL = "re:"
)

// MailServiceImpl implements MailService
type MailServiceImpl struct {
	client    MailClient
	tags      TagService
	reminders ReminderService
	privacy   PrivacyService
	pageSize  int64
	logger    *zap.Logger
}

// NewMailService creates a new mail service
func NewMailService(client MailClient, tags TagService, reminders ReminderService, privacy PrivacyService, pageSize int, logger *zap.Logger) *MailServiceImpl {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MailServiceImpl{
		client:    client,
		tags:      tags,
		reminders: reminders,
		privacy:   privacy,
		pageSize:  int64(pageSize),
		logger:    logger,
	}
}

// FilterQuery maps a list filter to a Gmail search query
func FilterQuery(filter string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(filter)) {
	case "", ListFilterAll:
		return "", nil
	case ListFilterUnread:
		return "is:unread", nil
	case ListFilterStarred:
		return "is:starred", nil
	default:
		return "", fmt.Errorf("unknown filter %q: %w", filter, ErrInvalidInput)
	}
}

// ToEmail converts a fetched message into the dashboard view
func ToEmail(m *gmail.Message) Email {
	e := Email{
		Subject:     m.Subject,
		Sender:      m.SenderName,
		SenderEmail: m.SenderEmail,
		Body:        m.Body(),
		IsRead:      !m.IsUnread(),
		Labels:      m.Labels,
	}
	if m.Message != nil {
		e.ID = m.Id
		e.Snippet = m.Snippet
	}
	if e.Sender == "" {
		e.Sender = e.SenderEmail
	}
	if !m.Date.IsZero() {
		e.Date = m.Date.Format(time.RFC3339)
	}
	if e.Labels == nil {
		e.Labels = []string{}
	}
	return e
}

func (s *MailServiceImpl) ready() error {
	if s.client == nil {
		return fmt.Errorf("mail client not configured: %w", ErrServiceUnavailable)
	}
	return nil
}

// ListEmails fetches one page of the inbox with full message details.
// When tag is set only emails carrying that tag are kept.
func (s *MailServiceImpl) ListEmails(ctx context.Context, pageToken, filter, tag string) (*EmailPage, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	query, err := FilterQuery(filter)
	if err != nil {
		return nil, err
	}

	refs, next, err := s.client.ListMessagesPage(ctx, s.pageSize, pageToken, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list emails: %w", err)
	}
	ids := make([]string, 0, len(refs))
	for _, r := range refs {
		if r != nil && r.Id != "" {
			ids = append(ids, r.Id)
		}
	}
	msgs, err := s.client.GetMessagesParallel(ctx, ids, fetchWorkers)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch emails: %w", err)
	}

	emails := make([]Email, 0, len(msgs))
	for _, m := range msgs {
		if m != nil {
			emails = append(emails, ToEmail(m))
		}
	}

	tags := map[string]string{}
	if s.tags != nil {
		emails = s.tags.FilterByTag(ctx, emails, tag)
		tags = s.tags.All(ctx)
	}

	page := &EmailPage{Emails: make([]EmailListItem, 0, len(emails)), NextPageToken: next}
	for _, e := range emails {
		page.Emails = append(page.Emails, EmailListItem{
			Email:   e,
			Tag:     tags[e.ID],
			Preview: render.Preview(render.StripHTML(e.Snippet), previewWidth),
		})
	}
	s.logger.Debug("listed emails", zap.String("filter", filter), zap.Int("count", len(page.Emails)))
	return page, nil
}

// GetEmail fetches a single email
func (s *MailServiceImpl) GetEmail(ctx context.Context, id string) (*Email, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidMessageID
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	m, err := s.client.GetMessageWithContent(ctx, id)
	if err != nil {
		return nil, classifyAPIError(err)
	}
	e := ToEmail(m)
	return &e, nil
}

func (s *MailServiceImpl) MarkAsRead(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidMessageID
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.client.MarkAsRead(ctx, id); err != nil {
		return classifyAPIError(err)
	}
	return nil
}

func (s *MailServiceImpl) Trash(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidMessageID
	}
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.client.TrashMessage(ctx, id); err != nil {
		return classifyAPIError(err)
	}
	return nil
}

// SendReply answers the sender of email, threaded onto it
func (s *MailServiceImpl) SendReply(ctx context.Context, email *Email, body string) (string, error) {
	if err := validEmail(email); err != nil {
		return "", err
	}
	if strings.TrimSpace(body) == "" {
		return "", fmt.Errorf("reply body cannot be empty: %w", ErrInvalidInput)
	}
	if strings.TrimSpace(email.SenderEmail) == "" {
		return "", fmt.Errorf("email has no sender address: %w", ErrInvalidInput)
	}
	if err := s.ready(); err != nil {
		return "", err
	}

	subject := email.Subject
	if !strings.HasPrefix(strings.ToLower(subject), replySubjectPrefixL) {
		subject = replySubjectPrefix + subject
	}
	id, err := s.client.SendMessage(ctx, email.SenderEmail, subject, body, email.ID)
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}
	s.logger.Info("reply sent", zap.String("email_id", email.ID), zap.String("sent_id", id))
	return id, nil
}

// Stats counts unread and blocked emails among emails and the stored reminders
func (s *MailServiceImpl) Stats(ctx context.Context, emails []Email) DashboardStats {
	var st DashboardStats
	for _, e := range emails {
		if !e.IsRead {
			st.Unread++
		}
		if s.privacy != nil && s.privacy.IsBlocked(ctx, e.SenderEmail, DomainOf(e.SenderEmail)) {
			st.Blocked++
		}
	}
	if s.reminders != nil {
		st.PendingReminders = len(s.reminders.List(ctx))
	}
	return st
}

func classifyAPIError(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("%w: %v", ErrMessageNotFound, err)
	}
	return err
}
