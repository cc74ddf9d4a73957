package dashboard

import (
	"strconv"
	"strings"

	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// listResponse is a page of the inbox with the counters for that page
type listResponse struct {
	*services.EmailPage
	Stats services.DashboardStats `json:"stats"`
}

// openResponse is what the detail pane needs when an email is opened
type openResponse struct {
	Email     *services.Email              `json:"email"`
	Triage    *services.TriageResult       `json:"triage,omitempty"`
	Summary   *services.SummaryRecord      `json:"summary,omitempty"`
	Reminders []services.PersistedReminder `json:"reminders"`
}

// aiResponse carries an AI result together with its status tag
type aiResponse struct {
	Status services.AIStatus `json:"status"`
	Value  any               `json:"value"`
}

func pageEmails(page *services.EmailPage) []services.Email {
	out := make([]services.Email, 0, len(page.Emails))
	for _, item := range page.Emails {
		out = append(out, item.Email)
	}
	return out
}

// GET /api/emails?filter=&pageToken=&tag=
func (s *Server) listEmails(c *gin.Context) {
	ctx := c.Request.Context()
	page, err := s.deps.Mail.ListEmails(ctx, c.Query("pageToken"), c.Query("filter"), c.Query("tag"))
	if err != nil {
		s.fail(c, err, "Failed to list emails")
		return
	}
	respondOK(c, listResponse{EmailPage: page, Stats: s.deps.Mail.Stats(ctx, pageEmails(page))})
}

// GET /api/emails/:id
// Opening an email supersedes the triage of the previously opened one.
func (s *Server) openEmail(c *gin.Context) {
	id := c.Param("id")
	email, err := s.deps.Mail.GetEmail(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err, "Failed to load email")
		return
	}

	ctx, release := s.deps.Selection.Select(c.Request.Context(), id)
	defer release()

	resp := openResponse{Email: email, Reminders: []services.PersistedReminder{}}
	if s.deps.Triage != nil {
		res, err := s.deps.Triage.Triage(ctx, email, false)
		if err != nil {
			s.logger.Warn("triage failed", zap.String("email_id", id), zap.Error(err))
		}
		resp.Triage = res
		if sum, ok := s.deps.Triage.GetSummary(c.Request.Context(), id); ok {
			resp.Summary = sum
		}
	}
	if s.deps.Reminders != nil {
		resp.Reminders = s.deps.Reminders.ListForEmail(c.Request.Context(), id)
	}
	respondOK(c, resp)
}

// POST /api/emails/:id/triage?force=true
func (s *Server) triageEmail(c *gin.Context) {
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	force, _ := strconv.ParseBool(c.DefaultQuery("force", "true"))

	ctx, release := s.deps.Selection.Select(c.Request.Context(), email.ID)
	defer release()
	res, err := s.deps.Triage.Triage(ctx, email, force)
	if err != nil {
		s.fail(c, err, "Failed to analyze email")
		return
	}
	respondOK(c, res)
}

// POST /api/emails/:id/summary
func (s *Server) summarizeEmail(c *gin.Context) {
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	summary, status, err := s.deps.Triage.Summarize(c.Request.Context(), email)
	if err != nil {
		s.fail(c, err, "Failed to summarize email")
		return
	}
	respondOK(c, aiResponse{Status: status, Value: summary})
}

// POST /api/emails/:id/quick-replies
func (s *Server) quickReplies(c *gin.Context) {
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	replies, status := s.deps.Triage.QuickReplies(c.Request.Context(), email)
	respondOK(c, aiResponse{Status: status, Value: replies})
}

// POST /api/emails/:id/draft-reply
func (s *Server) draftReply(c *gin.Context) {
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	draft, status := s.deps.Triage.DraftReply(c.Request.Context(), email)
	respondOK(c, aiResponse{Status: status, Value: draft})
}

// POST /api/emails/:id/reminders/detect
func (s *Server) detectReminders(c *gin.Context) {
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	reminders, status := s.deps.Triage.DetectReminders(c.Request.Context(), email)
	respondOK(c, aiResponse{Status: status, Value: reminders})
}

type replyRequest struct {
	Body string `json:"body"`
}

// POST /api/emails/:id/reply
func (s *Server) sendReply(c *gin.Context) {
	var req replyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Body) == "" {
		badRequest(c, "Reply body is required")
		return
	}
	email, ok := s.loadEmail(c)
	if !ok {
		return
	}
	sentID, err := s.deps.Mail.SendReply(c.Request.Context(), email, req.Body)
	if err != nil {
		s.fail(c, err, "Failed to send reply")
		return
	}
	respondOK(c, gin.H{"id": sentID})
}

// POST /api/emails/:id/read
func (s *Server) markRead(c *gin.Context) {
	if err := s.deps.Mail.MarkAsRead(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err, "Failed to mark email as read")
		return
	}
	respondOK(c, gin.H{"id": c.Param("id")})
}

// DELETE /api/emails/:id
func (s *Server) trashEmail(c *gin.Context) {
	if err := s.deps.Mail.Trash(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err, "Failed to delete email")
		return
	}
	respondOK(c, gin.H{"id": c.Param("id")})
}

func (s *Server) loadEmail(c *gin.Context) (*services.Email, bool) {
	email, err := s.deps.Mail.GetEmail(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.fail(c, err, "Failed to load email")
		return nil, false
	}
	return email, true
}
