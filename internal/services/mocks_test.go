package services

import (
	"context"
	"time"

	"github.com/ajramos/inboxpilot/internal/calendar"
	"github.com/ajramos/inboxpilot/internal/gmail"
	"github.com/ajramos/inboxpilot/internal/kv"
	"github.com/stretchr/testify/mock"
	gmail_v1 "google.golang.org/api/gmail/v1"
)

// MockLLMProvider implements llm.Provider for testing
type MockLLMProvider struct {
	mock.Mock
}

func (m *MockLLMProvider) Name() string {
	return "mock"
}

func (m *MockLLMProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// MockAIService implements AIService for pipeline tests
type MockAIService struct {
	mock.Mock
}

func (m *MockAIService) Available() bool { return true }

func (m *MockAIService) Categorize(ctx context.Context, content string) (string, AIStatus) {
	args := m.Called(ctx, content)
	return args.String(0), args.Get(1).(AIStatus)
}

func (m *MockAIService) DetectReminders(ctx context.Context, content string) ([]Reminder, AIStatus) {
	args := m.Called(ctx, content)
	return args.Get(0).([]Reminder), args.Get(1).(AIStatus)
}

func (m *MockAIService) Summarize(ctx context.Context, email *Email) (string, AIStatus) {
	args := m.Called(ctx, email)
	return args.String(0), args.Get(1).(AIStatus)
}

func (m *MockAIService) QuickReplies(ctx context.Context, email *Email) ([]string, AIStatus) {
	args := m.Called(ctx, email)
	return args.Get(0).([]string), args.Get(1).(AIStatus)
}

func (m *MockAIService) DraftReply(ctx context.Context, email *Email) (string, AIStatus) {
	args := m.Called(ctx, email)
	return args.String(0), args.Get(1).(AIStatus)
}

func (m *MockAIService) Chat(ctx context.Context, query string, emails []Email) (string, AIStatus) {
	args := m.Called(ctx, query, emails)
	return args.String(0), args.Get(1).(AIStatus)
}

// MockMailClient implements MailClient for testing
type MockMailClient struct {
	mock.Mock
}

func (m *MockMailClient) ListMessagesPage(ctx context.Context, maxResults int64, pageToken, query string) ([]*gmail_v1.Message, string, error) {
	args := m.Called(ctx, maxResults, pageToken, query)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]*gmail_v1.Message), args.String(1), args.Error(2)
}

func (m *MockMailClient) GetMessageWithContent(ctx context.Context, id string) (*gmail.Message, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gmail.Message), args.Error(1)
}

func (m *MockMailClient) GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*gmail.Message, error) {
	args := m.Called(ctx, ids, maxWorkers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*gmail.Message), args.Error(1)
}

func (m *MockMailClient) MarkAsRead(ctx context.Context, messageID string) error {
	return m.Called(ctx, messageID).Error(0)
}

func (m *MockMailClient) TrashMessage(ctx context.Context, messageID string) error {
	return m.Called(ctx, messageID).Error(0)
}

func (m *MockMailClient) SendMessage(ctx context.Context, to, subject, body, inReplyTo string) (string, error) {
	args := m.Called(ctx, to, subject, body, inReplyTo)
	return args.String(0), args.Error(1)
}

func (m *MockMailClient) ScanSubscriptions(ctx context.Context, maxResults int64) ([]gmail.Subscription, error) {
	args := m.Called(ctx, maxResults)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]gmail.Subscription), args.Error(1)
}

// MockEventCreator implements EventCreator for testing
type MockEventCreator struct {
	mock.Mock
}

func (m *MockEventCreator) CreateEvent(ctx context.Context, title string, start time.Time, duration time.Duration) (*calendar.Event, error) {
	args := m.Called(ctx, title, start, duration)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*calendar.Event), args.Error(1)
}

func newTestRecords() *kv.Records {
	return kv.NewRecords(kv.NewMemoryBackend(), kv.DefaultNamespace, nil)
}

// failingBackend rejects every operation
type failingBackend struct{ err error }

func (f failingBackend) Load(context.Context, string) ([]byte, bool, error) { return nil, false, f.err }
func (f failingBackend) Save(context.Context, string, []byte) error         { return f.err }
func (f failingBackend) Delete(context.Context, string) error               { return f.err }
