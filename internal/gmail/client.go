package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"google.golang.org/api/gmail/v1"
)

const user = "me"

// Client wraps the gmail.Service and provides convenience methods
type Client struct {
	Service *gmail.Service
}

// NewClient creates a new Gmail client
func NewClient(service *gmail.Service) *Client {
	return &Client{Service: service}
}

// Message represents a Gmail message with extracted content
type Message struct {
	*gmail.Message
	PlainText   string
	HTML        string
	Subject     string
	From        string
	SenderName  string
	SenderEmail string
	To          string
	Date        time.Time
	Labels      []string
}

// Body returns the richest content available: HTML, then plain text, then the snippet
func (m *Message) Body() string {
	if strings.TrimSpace(m.HTML) != "" {
		return m.HTML
	}
	if strings.TrimSpace(m.PlainText) != "" {
		return m.PlainText
	}
	if m.Message != nil {
		return m.Snippet
	}
	return ""
}

// IsUnread reports whether the message carries the UNREAD label
func (m *Message) IsUnread() bool {
	for _, l := range m.Labels {
		if l == "UNREAD" {
			return true
		}
	}
	return false
}

// Subscription is a sender that advertises a List-Unsubscribe link
type Subscription struct {
	ID             string `json:"id"`
	Sender         string `json:"sender"`
	Email          string `json:"email"`
	UnsubscribeURL string `json:"unsubscribeUrl"`
}

func (c *Client) ready() error {
	if c == nil || c.Service == nil {
		return fmt.Errorf("gmail client not initialized")
	}
	return nil
}

// ListMessagesPage returns a page of messages matching query and the nextPageToken
func (c *Client) ListMessagesPage(ctx context.Context, maxResults int64, pageToken, query string) ([]*gmail.Message, string, error) {
	if err := c.ready(); err != nil {
		return nil, "", err
	}
	call := c.Service.Users.Messages.List(user).Context(ctx)
	if maxResults > 0 {
		call = call.MaxResults(maxResults)
	}
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	if query != "" {
		call = call.Q(query)
	}

	res, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("could not list messages: %w", err)
	}
	return res.Messages, res.NextPageToken, nil
}

// GetMessage retrieves a specific message by ID in full format
func (c *Client) GetMessage(ctx context.Context, id string) (*gmail.Message, error) {
	if err := c.ready(); err != nil {
		return nil, err
	}
	msg, err := c.Service.Users.Messages.Get(user, id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("could not get message %s: %w", id, err)
	}
	return msg, nil
}

// GetMessageWithContent retrieves a message and extracts its content
func (c *Client) GetMessageWithContent(ctx context.Context, id string) (*Message, error) {
	msg, err := c.GetMessage(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewMessage(msg), nil
}

// NewMessage extracts headers and bodies from a raw API message
func NewMessage(msg *gmail.Message) *Message {
	message := &Message{Message: msg}
	message.PlainText = ExtractPlainText(msg)
	message.HTML = ExtractHTML(msg)
	message.Subject = extractHeader(msg, "Subject")
	if strings.TrimSpace(message.Subject) == "" {
		message.Subject = "(No Subject)"
	}
	message.From = extractHeader(msg, "From")
	if message.From == "" {
		message.From = "(Unknown)"
	}
	message.SenderName, message.SenderEmail = ParseAddress(message.From)
	message.To = extractHeader(msg, "To")
	message.Date = extractDate(msg)
	message.Labels = extractLabels(msg)
	return message
}

// GetMessagesParallel fetches full messages keeping the order of ids.
// At most maxWorkers requests are in flight; the first failure cancels the rest.
func (c *Client) GetMessagesParallel(ctx context.Context, ids []string, maxWorkers int) ([]*Message, error) {
	if len(ids) == 0 {
		return []*Message{}, nil
	}
	if maxWorkers <= 0 || maxWorkers > 15 {
		maxWorkers = 10
	}

	out := make([]*Message, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, id := range ids {
		g.Go(func() error {
			m, err := c.GetMessageWithContent(gctx, id)
			if err != nil {
				return err
			}
			out[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage sends an HTML message. When inReplyTo is set the message is
// threaded onto that message.
func (c *Client) SendMessage(ctx context.Context, to, subject, body, inReplyTo string) (string, error) {
	if err := c.ready(); err != nil {
		return "", err
	}
	if strings.TrimSpace(to) == "" {
		return "", fmt.Errorf("recipient cannot be empty")
	}

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(BuildRawMessage(to, subject, body, inReplyTo))),
	}
	if inReplyTo != "" {
		message.ThreadId = inReplyTo
	}

	sentMsg, err := c.Service.Users.Messages.Send(user, message).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("could not send message: %w", err)
	}
	return sentMsg.Id, nil
}

// BuildRawMessage renders the RFC 2822 text of an outgoing HTML message
func BuildRawMessage(to, subject, body, inReplyTo string) string {
	var sb strings.Builder
	sb.WriteString("To: " + to + "\r\n")
	sb.WriteString("Subject: " + mime.BEncoding.Encode("utf-8", subject) + "\r\n")
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n")
	sb.WriteString("MIME-Version: 1.0\r\n")
	if inReplyTo != "" {
		sb.WriteString("In-Reply-To: " + inReplyTo + "\r\n")
		sb.WriteString("References: " + inReplyTo + "\r\n")
	}
	sb.WriteString("\r\n")
	sb.WriteString(body)
	return sb.String()
}

// MarkAsRead marks a message as read
func (c *Client) MarkAsRead(ctx context.Context, messageID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	modifyRequest := &gmail.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}

	_, err := c.Service.Users.Messages.Modify(user, messageID, modifyRequest).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not mark as read: %w", err)
	}
	return nil
}

// TrashMessage moves a message to trash
func (c *Client) TrashMessage(ctx context.Context, messageID string) error {
	if err := c.ready(); err != nil {
		return err
	}
	_, err := c.Service.Users.Messages.Trash(user, messageID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("could not move to trash: %w", err)
	}
	return nil
}

// ScanSubscriptions looks at recent messages mentioning "unsubscribe" and
// returns one entry per sender address that carries a List-Unsubscribe link.
// Messages that fail to load are skipped.
func (c *Client) ScanSubscriptions(ctx context.Context, maxResults int64) ([]Subscription, error) {
	msgs, _, err := c.ListMessagesPage(ctx, maxResults, "", "unsubscribe")
	if err != nil {
		return nil, err
	}
	if len(msgs) == 0 {
		return []Subscription{}, nil
	}

	details := make([]*gmail.Message, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(10)
	for i, m := range msgs {
		g.Go(func() error {
			full, err := c.Service.Users.Messages.Get(user, m.Id).
				Format("metadata").
				MetadataHeaders("From", "List-Unsubscribe", "Subject").
				Context(gctx).Do()
			if err == nil {
				details[i] = full
			}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := []Subscription{}
	seen := make(map[string]bool)
	for _, msg := range details {
		if msg == nil {
			continue
		}
		from := extractHeader(msg, "From")
		link := ParseListUnsubscribe(extractHeader(msg, "List-Unsubscribe"))
		if from == "" || link == "" {
			continue
		}
		name, email := ParseAddress(from)
		if email == "" || seen[email] {
			continue
		}
		seen[email] = true
		out = append(out, Subscription{ID: msg.Id, Sender: name, Email: email, UnsubscribeURL: link})
	}
	return out, nil
}

// ParseListUnsubscribe picks the link from a List-Unsubscribe header,
// preferring http(s) over mailto
func ParseListUnsubscribe(header string) string {
	var mailto string
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "<") || !strings.HasSuffix(part, ">") {
			continue
		}
		link := strings.TrimSpace(part[1 : len(part)-1])
		lower := strings.ToLower(link)
		switch {
		case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"):
			return link
		case strings.HasPrefix(lower, "mailto:") && mailto == "":
			mailto = link
		}
	}
	return mailto
}

// ParseAddress splits a From header into display name and address.
// The name falls back to the address when absent.
func ParseAddress(from string) (string, string) {
	from = strings.TrimSpace(from)
	if addr, err := mail.ParseAddress(from); err == nil {
		name := strings.TrimSpace(addr.Name)
		if name == "" {
			name = addr.Address
		}
		return name, addr.Address
	}

	// loose fallback for headers net/mail rejects
	if lt := strings.LastIndex(from, "<"); lt >= 0 {
		if gt := strings.Index(from[lt:], ">"); gt > 0 {
			email := strings.TrimSpace(from[lt+1 : lt+gt])
			name := strings.Trim(strings.TrimSpace(from[:lt]), `"`)
			if name == "" {
				name = email
			}
			return name, email
		}
	}
	return from, from
}

// Helper functions
func extractHeader(msg *gmail.Message, name string) string {
	if msg == nil || msg.Payload == nil || msg.Payload.Headers == nil {
		return ""
	}

	for _, header := range msg.Payload.Headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value
		}
	}

	return ""
}

func extractDate(msg *gmail.Message) time.Time {
	dateStr := extractHeader(msg, "Date")
	if dateStr != "" {
		if t, err := mail.ParseDate(dateStr); err == nil {
			return t
		}
	}
	if msg != nil && msg.InternalDate > 0 {
		return time.UnixMilli(msg.InternalDate)
	}
	return time.Time{}
}

func extractLabels(msg *gmail.Message) []string {
	if msg == nil || msg.LabelIds == nil {
		return []string{}
	}
	return msg.LabelIds
}

// ExtractPlainText extracts plain text content from a Gmail message
func ExtractPlainText(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}

	return extractTextFromPart(msg.Payload)
}

func extractTextFromPart(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.Body != nil && part.Body.Data != "" && strings.EqualFold(part.MimeType, "text/plain") {
		return decodeBody(part.Body.Data)
	}

	for _, p := range part.Parts {
		if text := extractTextFromPart(p); text != "" {
			return text
		}
	}

	return ""
}

// ExtractHTML extracts HTML content from a Gmail message
func ExtractHTML(msg *gmail.Message) string {
	if msg == nil || msg.Payload == nil {
		return ""
	}
	return extractHTMLFromPart(msg.Payload)
}

func extractHTMLFromPart(part *gmail.MessagePart) string {
	if part == nil {
		return ""
	}

	if part.Body != nil && part.Body.Data != "" && strings.EqualFold(part.MimeType, "text/html") {
		return decodeBody(part.Body.Data)
	}

	for _, p := range part.Parts {
		if html := extractHTMLFromPart(p); html != "" {
			return html
		}
	}

	return ""
}

// decodeBody decodes base64url part data; the API may or may not pad it.
// Quoted-printable is undone as well when the content still carries it.
func decodeBody(data string) string {
	raw, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return ""
		}
	}
	if decoded, err := io.ReadAll(quotedprintable.NewReader(strings.NewReader(string(raw)))); err == nil {
		return string(decoded)
	}
	return string(raw)
}
