package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ajramos/inboxpilot/internal/llm"
	"github.com/ajramos/inboxpilot/internal/metrics"
	"github.com/ajramos/inboxpilot/internal/prompts"
	"github.com/ajramos/inboxpilot/internal/render"
	"go.uber.org/zap"
)

// Safe defaults returned when the model cannot be used
const (
	SummaryUnavailable = "Summary unavailable (API Key missing)"
	SummaryFailed      = "Failed to generate summary."
	ChatUnavailable    = "I can't help with that right now (API Key missing)."
	ChatFailed         = "Sorry, I encountered an error while processing your request."
)

// Input limits in runes
const (
	categorizeMaxRunes  = 1000
	summarizeMaxRunes   = 8000
	quickReplyMaxRunes  = 2000
	draftReplyMaxRunes  = 8000
	chatEmailMaxRunes   = 4000
	chatMaxEmails       = 50
	unknownSenderLabel  = "Unknown"
	emailContentHeading = "\n\nEmail Content:\n"
)

// AIServiceImpl implements AIService on top of an llm.Provider.
// A nil provider means AI is unavailable and no call is made.
type AIServiceImpl struct {
	provider llm.Provider
	prompts  PromptService
	logger   *zap.Logger
}

// NewAIService creates a new AI service
func NewAIService(provider llm.Provider, promptService PromptService, logger *zap.Logger) *AIServiceImpl {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIServiceImpl{provider: provider, prompts: promptService, logger: logger}
}

// Available reports whether a provider is configured
func (s *AIServiceImpl) Available() bool {
	return s.provider != nil
}

func (s *AIServiceImpl) prompt(ctx context.Context, key prompts.Key) string {
	if s.prompts != nil {
		if p := s.prompts.Get(ctx, key); strings.TrimSpace(p) != "" {
			return p
		}
	}
	return prompts.Default(key)
}

func (s *AIServiceImpl) generate(ctx context.Context, op, prompt string) (string, error) {
	start := time.Now()
	out, err := s.provider.Generate(ctx, prompt)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RecordLLMCall(op, status, time.Since(start))
	return out, err
}

func (s *AIServiceImpl) unavailable(op string) AIStatus {
	metrics.IncrementAIFallback(op, "unavailable")
	s.logger.Debug("ai provider not configured", zap.String("operation", op))
	return AIStatusUnavailable
}

func (s *AIServiceImpl) failed(op string, err error) AIStatus {
	reason := "error"
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		reason = "cancelled"
	case errors.Is(err, errMalformed):
		reason = "malformed"
	}
	metrics.IncrementAIFallback(op, reason)
	s.logger.Warn("ai call failed", zap.String("operation", op), zap.String("reason", reason), zap.Error(err))
	return AIStatusFailed
}

var errMalformed = errors.New("malformed model output")

// Categorize returns a single category label, or "" on any failure
func (s *AIServiceImpl) Categorize(ctx context.Context, content string) (string, AIStatus) {
	const op = "categorize"
	if !s.Available() {
		return "", s.unavailable(op)
	}
	prompt := s.prompt(ctx, prompts.Categorization) + emailContentHeading + render.Truncate(content, categorizeMaxRunes)
	out, err := s.generate(ctx, op, prompt)
	if err != nil {
		return "", s.failed(op, err)
	}
	category := strings.Trim(llm.FirstLine(out), "*`\"' .")
	if category == "" {
		return "", s.failed(op, fmt.Errorf("empty category: %w", errMalformed))
	}
	return category, AIStatusOK
}

// DetectReminders extracts action items, returning an empty list on any failure
func (s *AIServiceImpl) DetectReminders(ctx context.Context, content string) ([]Reminder, AIStatus) {
	const op = "detect_reminders"
	if !s.Available() {
		return []Reminder{}, s.unavailable(op)
	}
	prompt := s.prompt(ctx, prompts.ActionItems) + emailContentHeading + content
	out, err := s.generate(ctx, op, prompt)
	if err != nil {
		return []Reminder{}, s.failed(op, err)
	}
	reminders, err := ParseReminders(out)
	if err != nil {
		return []Reminder{}, s.failed(op, err)
	}
	return reminders, AIStatusOK
}

// ParseReminders reads the first JSON array in text as reminders.
// Entries without text are dropped; a date that is not a string becomes "".
func ParseReminders(text string) ([]Reminder, error) {
	raw, ok := llm.ExtractJSONArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array in response: %w", errMalformed)
	}
	var items []struct {
		Text string          `json:"text"`
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	out := make([]Reminder, 0, len(items))
	for _, it := range items {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			continue
		}
		r := Reminder{Text: text}
		var date string
		if json.Unmarshal(it.Date, &date) == nil {
			r.Date = strings.TrimSpace(date)
		}
		out = append(out, r)
	}
	return out, nil
}

// Summarize returns a 2-3 sentence summary or a fixed placeholder
func (s *AIServiceImpl) Summarize(ctx context.Context, email *Email) (string, AIStatus) {
	const op = "summarize"
	if !s.Available() {
		return SummaryUnavailable, s.unavailable(op)
	}
	sender := unknownSenderLabel
	if email != nil && strings.TrimSpace(email.Sender) != "" {
		sender = email.Sender
	}
	prompt := fmt.Sprintf("Summarize the following email from %s in 2-3 concise sentences. Focus on the main point and any action items.%s%s",
		sender, emailContentHeading, render.Truncate(CleanContent(email), summarizeMaxRunes))
	out, err := s.generate(ctx, op, prompt)
	if err != nil {
		return SummaryFailed, s.failed(op, err)
	}
	return strings.TrimSpace(out), AIStatusOK
}

// QuickReplies returns short reply options, or none on any failure
func (s *AIServiceImpl) QuickReplies(ctx context.Context, email *Email) ([]string, AIStatus) {
	const op = "quick_replies"
	if !s.Available() {
		return []string{}, s.unavailable(op)
	}
	prompt := s.prompt(ctx, prompts.QuickReply) + emailContentHeading +
		`"` + render.Truncate(CleanContent(email), quickReplyMaxRunes) + `"`
	out, err := s.generate(ctx, op, prompt)
	if err != nil {
		return []string{}, s.failed(op, err)
	}
	replies, err := parseStringArray(out)
	if err != nil {
		return []string{}, s.failed(op, err)
	}
	return replies, AIStatusOK
}

func parseStringArray(text string) ([]string, error) {
	raw, ok := llm.ExtractJSONArray(text)
	if !ok {
		return nil, fmt.Errorf("no JSON array in response: %w", errMalformed)
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it = strings.TrimSpace(it); it != "" {
			out = append(out, it)
		}
	}
	return out, nil
}

// DraftReply writes a full reply with the auto-reply prompt, or "" on failure
func (s *AIServiceImpl) DraftReply(ctx context.Context, email *Email) (string, AIStatus) {
	const op = "draft_reply"
	if !s.Available() {
		return "", s.unavailable(op)
	}
	var sender, subject string
	if email != nil {
		sender, subject = email.Sender, email.Subject
	}
	prompt := fmt.Sprintf("%s\n\nOriginal email from %s\nSubject: %s%s%s",
		s.prompt(ctx, prompts.AutoReply), sender, subject, emailContentHeading,
		render.Truncate(CleanContent(email), draftReplyMaxRunes))
	out, err := s.generate(ctx, op, prompt)
	if err != nil {
		return "", s.failed(op, err)
	}
	return strings.TrimSpace(out), AIStatusOK
}

// Chat answers a question using the given emails as the only context
func (s *AIServiceImpl) Chat(ctx context.Context, query string, emails []Email) (string, AIStatus) {
	const op = "chat"
	if !s.Available() {
		return ChatUnavailable, s.unavailable(op)
	}
	out, err := s.generate(ctx, op, buildChatPrompt(query, emails))
	if err != nil {
		return ChatFailed, s.failed(op, err)
	}
	return strings.TrimSpace(out), AIStatusOK
}

func buildChatPrompt(query string, emails []Email) string {
	if len(emails) > chatMaxEmails {
		emails = emails[:chatMaxEmails]
	}
	var b strings.Builder
	b.WriteString("You are a helpful email assistant.\n\n")
	fmt.Fprintf(&b, "User Query: %q\n\n", query)
	b.WriteString("Context (User's recent emails):\n")
	for i := range emails {
		e := &emails[i]
		fmt.Fprintf(&b, "From: %s (%s)\nSubject: %s\nDate: %s\nContent: %s\n---\n",
			e.Sender, e.SenderEmail, e.Subject, e.Date, render.Truncate(CleanContent(e), chatEmailMaxRunes))
	}
	b.WriteString(`
Instructions:
1. Answer the user's question based ONLY on the provided email context.
2. If the user greets you (e.g., "hi", "hello"), respond politely and ask how you can help with their emails. Do NOT say you couldn't find information.
3. If the answer is not in the emails, politely say you couldn't find that information in the loaded emails.
4. Be concise and helpful. Use markdown for formatting (bold, lists) if needed.
`)
	return b.String()
}

// CleanContent is the text the model sees for an email: the body with HTML
// stripped, or the snippet when there is no body
func CleanContent(email *Email) string {
	if email == nil {
		return ""
	}
	src := email.Body
	if strings.TrimSpace(src) == "" {
		src = email.Snippet
	}
	return render.StripHTML(src)
}
