package dashboard

import (
	"github.com/ajramos/inboxpilot/internal/prompts"
	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/gin-gonic/gin"
)

type reminderRequest struct {
	EmailID string `json:"emailId"`
	Text    string `json:"text"`
	Date    string `json:"date"`
}

// GET /api/reminders?emailId=
func (s *Server) listReminders(c *gin.Context) {
	if id := c.Query("emailId"); id != "" {
		respondOK(c, s.deps.Reminders.ListForEmail(c.Request.Context(), id))
		return
	}
	respondOK(c, s.deps.Reminders.List(c.Request.Context()))
}

// POST /api/reminders
func (s *Server) addReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	r, err := s.deps.Reminders.Add(c.Request.Context(), req.EmailID, req.Text, req.Date)
	if err != nil {
		s.fail(c, err, "Failed to save reminder")
		return
	}
	respondOK(c, r)
}

// DELETE /api/reminders/:id
func (s *Server) removeReminder(c *gin.Context) {
	if err := s.deps.Reminders.Remove(c.Request.Context(), c.Param("id")); err != nil {
		s.fail(c, err, "Failed to remove reminder")
		return
	}
	respondOK(c, s.deps.Reminders.List(c.Request.Context()))
}

// GET /api/tags
func (s *Server) listTags(c *gin.Context) {
	respondOK(c, s.deps.Tags.ListUniqueTags(c.Request.Context()))
}

type ruleRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// GET /api/privacy/rules
func (s *Server) listRules(c *gin.Context) {
	respondOK(c, s.deps.Privacy.ListRules(c.Request.Context()))
}

// POST /api/privacy/rules
func (s *Server) addRule(c *gin.Context) {
	var req ruleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	ruleType, err := services.ParseRuleType(req.Type)
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	rules, err := s.deps.Privacy.AddRule(c.Request.Context(), ruleType, req.Value)
	if err != nil {
		s.fail(c, err, "Failed to add rule")
		return
	}
	respondOK(c, rules)
}

// DELETE /api/privacy/rules/:value?type=
// Without a type every rule with that value is removed.
func (s *Server) removeRule(c *gin.Context) {
	var (
		rules []services.PrivacyRule
		err   error
	)
	if t := c.Query("type"); t != "" {
		ruleType, perr := services.ParseRuleType(t)
		if perr != nil {
			badRequest(c, perr.Error())
			return
		}
		rules, err = s.deps.Privacy.RemoveTypedRule(c.Request.Context(), ruleType, c.Param("value"))
	} else {
		rules, err = s.deps.Privacy.RemoveRule(c.Request.Context(), c.Param("value"))
	}
	if err != nil {
		s.fail(c, err, "Failed to remove rule")
		return
	}
	respondOK(c, rules)
}

type promptRequest struct {
	Text string `json:"text"`
}

// GET /api/prompts
func (s *Server) listPrompts(c *gin.Context) {
	respondOK(c, s.deps.Prompts.List(c.Request.Context()))
}

// PUT /api/prompts/:key
func (s *Server) savePrompt(c *gin.Context) {
	var req promptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	if err := s.deps.Prompts.Save(c.Request.Context(), prompts.Key(c.Param("key")), req.Text); err != nil {
		s.fail(c, err, "Failed to save prompt")
		return
	}
	respondOK(c, s.deps.Prompts.List(c.Request.Context()))
}

// DELETE /api/prompts/:key
func (s *Server) resetPrompt(c *gin.Context) {
	if err := s.deps.Prompts.Reset(c.Request.Context(), prompts.Key(c.Param("key"))); err != nil {
		s.fail(c, err, "Failed to reset prompt")
		return
	}
	respondOK(c, s.deps.Prompts.List(c.Request.Context()))
}
