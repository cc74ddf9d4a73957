package dashboard

import (
	"strings"

	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/gin-gonic/gin"
)

// GET /api/subscriptions
func (s *Server) scanSubscriptions(c *gin.Context) {
	subs, err := s.deps.Subscriptions.Scan(c.Request.Context())
	if err != nil {
		s.fail(c, err, "Failed to scan subscriptions")
		return
	}
	if subs == nil {
		subs = []services.Subscription{}
	}
	respondOK(c, subs)
}

type eventRequest struct {
	Title string `json:"title"`
	Date  string `json:"date"`
}

// POST /api/calendar/events
func (s *Server) addCalendarEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	evt, err := s.deps.Calendar.AddToCalendar(c.Request.Context(), req.Title, req.Date)
	if err != nil {
		s.fail(c, err, "Failed to add to calendar")
		return
	}
	respondOK(c, evt)
}

type chatRequest struct {
	Query  string           `json:"query"`
	Emails []services.Email `json:"emails"`
}

// POST /api/chat
// Without emails in the body the first page of the inbox is used as context.
func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		badRequest(c, "Query is required")
		return
	}
	ctx := c.Request.Context()
	emails := req.Emails
	if len(emails) == 0 && s.deps.Mail != nil {
		page, err := s.deps.Mail.ListEmails(ctx, "", "", "")
		if err != nil {
			s.fail(c, err, "Failed to load emails")
			return
		}
		emails = pageEmails(page)
	}
	answer, status := s.deps.AI.Chat(ctx, req.Query, emails)
	respondOK(c, aiResponse{Status: status, Value: answer})
}

// GET /api/stats?filter=
func (s *Server) stats(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := s.deps.Mail.ListEmails(ctx, "", c.Query("filter"), "")
	if err != nil {
		s.fail(c, err, "Failed to compute stats")
		return
	}
	respondOK(c, s.deps.Mail.Stats(ctx, pageEmails(page)))
}
