package services

import (
	"context"
	"time"

	"github.com/ajramos/inboxpilot/internal/calendar"
	"github.com/ajramos/inboxpilot/internal/gmail"
	"github.com/ajramos/inboxpilot/internal/prompts"
	gmail_v1 "google.golang.org/api/gmail/v1"
)

// Email is the dashboard view of a fetched message
type Email struct {
	ID          string   `json:"id"`
	Sender      string   `json:"sender"`
	SenderEmail string   `json:"senderEmail"`
	Subject     string   `json:"subject"`
	Snippet     string   `json:"snippet"`
	Body        string   `json:"body,omitempty"`
	Date        string   `json:"date"`
	IsRead      bool     `json:"isRead"`
	Labels      []string `json:"labels"`
}

// Reminder is an action item detected in an email
type Reminder struct {
	Text string `json:"text"`
	Date string `json:"date,omitempty"`
}

// AnalysisRecord is the cached triage result of one email
type AnalysisRecord struct {
	Category  string     `json:"category"`
	Reminders []Reminder `json:"reminders"`
	Timestamp int64      `json:"timestamp"`
}

// SummaryRecord is a stored summary
type SummaryRecord struct {
	EmailID string `json:"emailId"`
	Summary string `json:"summary"`
	Created int64  `json:"created"`
}

// PersistedReminder is a reminder the user kept
type PersistedReminder struct {
	ID      string `json:"id"`
	EmailID string `json:"emailId"`
	Text    string `json:"text"`
	Date    string `json:"date,omitempty"`
	Created int64  `json:"created"`
}

// RuleType selects what a privacy rule matches against
type RuleType string

const (
	RuleSender RuleType = "sender"
	RuleDomain RuleType = "domain"
)

// ActionBlockAI is the only rule action
const ActionBlockAI = "block_ai"

// PrivacyRule keeps matching senders away from the language model
type PrivacyRule struct {
	Type   RuleType `json:"type"`
	Value  string   `json:"value"`
	Action string   `json:"action"`
}

// AIStatus tags the outcome of an AI call
type AIStatus string

const (
	AIStatusOK          AIStatus = "ok"
	AIStatusUnavailable AIStatus = "unavailable"
	AIStatusFailed      AIStatus = "failed"
)

// TriageState is the pipeline state an email ends in
type TriageState string

const (
	TriageCached     TriageState = "cached"
	TriageBlocked    TriageState = "blocked"
	TriageSuperseded TriageState = "superseded"
)

// TriageResult is what the pipeline reports for one email
type TriageResult struct {
	EmailID   string          `json:"emailId"`
	State     TriageState     `json:"state"`
	FromCache bool            `json:"fromCache"`
	Analysis  *AnalysisRecord `json:"analysis,omitempty"`
	Duration  time.Duration   `json:"-"`
}

// EmailListItem is a list row with its tag and a one-line preview
type EmailListItem struct {
	Email
	Tag     string `json:"tag,omitempty"`
	Preview string `json:"preview"`
}

// EmailPage is one page of the inbox
type EmailPage struct {
	Emails        []EmailListItem `json:"emails"`
	NextPageToken string          `json:"nextPageToken,omitempty"`
}

// DashboardStats are the counters shown above the list
type DashboardStats struct {
	Unread           int `json:"unread"`
	PendingReminders int `json:"pendingReminders"`
	Blocked          int `json:"blocked"`
}

// Subscription is a mailing list sender found in the inbox
type Subscription = gmail.Subscription

// CalendarEvent is a created calendar entry
type CalendarEvent = calendar.Event

// MailClient is the subset of the Gmail client the services use
type MailClient interface {
	ListMessagesPage(ctx context.Context, maxResults int64, pageToken, query string) ([]*gmail_v1.Message, string, error)
	GetMessageWithContent(ctx context.Context, id string) (*gmail.Message, error)
	GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*gmail.Message, error)
	MarkAsRead(ctx context.Context, messageID string) error
	TrashMessage(ctx context.Context, messageID string) error
	SendMessage(ctx context.Context, to, subject, body, inReplyTo string) (string, error)
	ScanSubscriptions(ctx context.Context, maxResults int64) ([]gmail.Subscription, error)
}

// EventCreator is the calendar port
type EventCreator interface {
	CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration) (*calendar.Event, error)
}

// AnalysisCacheService stores per-email triage results
type AnalysisCacheService interface {
	Get(ctx context.Context, emailID string) (*AnalysisRecord, bool)
	Save(ctx context.Context, emailID, category string, reminders []Reminder) error
	Invalidate(ctx context.Context, emailID string) error
}

// SummaryService stores per-email summaries
type SummaryService interface {
	Get(ctx context.Context, emailID string) (*SummaryRecord, bool)
	Save(ctx context.Context, emailID, summary string) error
}

// TagService stores the single label of each email
type TagService interface {
	Get(ctx context.Context, emailID string) (string, bool)
	Save(ctx context.Context, emailID, tag string) error
	All(ctx context.Context) map[string]string
	ListUniqueTags(ctx context.Context) []string
	FilterByTag(ctx context.Context, emails []Email, tag string) []Email
}

// ReminderService stores reminders the user kept
type ReminderService interface {
	List(ctx context.Context) []PersistedReminder
	ListForEmail(ctx context.Context, emailID string) []PersistedReminder
	Add(ctx context.Context, emailID, text, date string) (*PersistedReminder, error)
	Remove(ctx context.Context, id string) error
}

// PrivacyService manages block rules
type PrivacyService interface {
	ListRules(ctx context.Context) []PrivacyRule
	AddRule(ctx context.Context, ruleType RuleType, value string) ([]PrivacyRule, error)
	RemoveRule(ctx context.Context, value string) ([]PrivacyRule, error)
	RemoveTypedRule(ctx context.Context, ruleType RuleType, value string) ([]PrivacyRule, error)
	IsBlocked(ctx context.Context, senderAddress, domain string) bool
}

// PromptService manages the customizable prompts
type PromptService interface {
	Get(ctx context.Context, key prompts.Key) string
	Save(ctx context.Context, key prompts.Key, text string) error
	Reset(ctx context.Context, key prompts.Key) error
	List(ctx context.Context) []prompts.Prompt
}

// AIService wraps the language model and never fails: every error becomes a
// safe default tagged with AIStatusFailed
type AIService interface {
	Available() bool
	Categorize(ctx context.Context, content string) (string, AIStatus)
	DetectReminders(ctx context.Context, content string) ([]Reminder, AIStatus)
	Summarize(ctx context.Context, email *Email) (string, AIStatus)
	QuickReplies(ctx context.Context, email *Email) ([]string, AIStatus)
	DraftReply(ctx context.Context, email *Email) (string, AIStatus)
	Chat(ctx context.Context, query string, emails []Email) (string, AIStatus)
}

// TriageService runs the analysis pipeline
type TriageService interface {
	Triage(ctx context.Context, email *Email, force bool) (*TriageResult, error)
	Summarize(ctx context.Context, email *Email) (string, AIStatus, error)
	GetSummary(ctx context.Context, emailID string) (*SummaryRecord, bool)
	QuickReplies(ctx context.Context, email *Email) ([]string, AIStatus)
	DraftReply(ctx context.Context, email *Email) (string, AIStatus)
	DetectReminders(ctx context.Context, email *Email) ([]Reminder, AIStatus)
}

// MailService is the inbox surface of the dashboard
type MailService interface {
	ListEmails(ctx context.Context, pageToken, filter, tag string) (*EmailPage, error)
	GetEmail(ctx context.Context, id string) (*Email, error)
	MarkAsRead(ctx context.Context, id string) error
	Trash(ctx context.Context, id string) error
	SendReply(ctx context.Context, email *Email, body string) (string, error)
	Stats(ctx context.Context, emails []Email) DashboardStats
}

// CalendarService pushes reminders into the calendar
type CalendarService interface {
	AddToCalendar(ctx context.Context, title, isoDate string) (*CalendarEvent, error)
}

// SubscriptionService finds mailing lists the user can leave
type SubscriptionService interface {
	Scan(ctx context.Context) ([]Subscription, error)
}
