package dashboard

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Deps are the services the dashboard exposes
type Deps struct {
	Mail          services.MailService
	Triage        services.TriageService
	AI            services.AIService
	Reminders     services.ReminderService
	Tags          services.TagService
	Privacy       services.PrivacyService
	Prompts       services.PromptService
	Calendar      services.CalendarService
	Subscriptions services.SubscriptionService

	// Selection cancels the triage of an email once another one is opened
	Selection *services.SelectionTracker
}

// Options configure the HTTP surface
type Options struct {
	Addr         string
	AllowOrigins []string
}

// Server is the dashboard HTTP API
type Server struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
	engine *gin.Engine
}

// NewServer builds the gin engine with every route registered
func NewServer(deps Deps, opts Options, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Selection == nil {
		deps.Selection = services.NewSelectionTracker()
	}
	if len(opts.AllowOrigins) == 0 {
		opts.AllowOrigins = []string{"*"}
	}
	s := &Server{deps: deps, opts: opts, logger: logger}
	s.engine = s.routes()
	return s
}

// Handler returns the http.Handler serving the API
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(Recovery(s.logger), RequestLogger(s.logger), Metrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:  s.opts.AllowOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ai": s.deps.AI != nil && s.deps.AI.Available()})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		emails := api.Group("/emails")
		{
			emails.GET("", s.listEmails)
			emails.GET("/:id", s.openEmail)
			emails.DELETE("/:id", s.trashEmail)
			emails.POST("/:id/triage", s.triageEmail)
			emails.POST("/:id/summary", s.summarizeEmail)
			emails.POST("/:id/quick-replies", s.quickReplies)
			emails.POST("/:id/draft-reply", s.draftReply)
			emails.POST("/:id/reply", s.sendReply)
			emails.POST("/:id/read", s.markRead)
			emails.POST("/:id/reminders/detect", s.detectReminders)
		}

		reminders := api.Group("/reminders")
		{
			reminders.GET("", s.listReminders)
			reminders.POST("", s.addReminder)
			reminders.DELETE("/:id", s.removeReminder)
		}

		api.GET("/tags", s.listTags)

		rules := api.Group("/privacy/rules")
		{
			rules.GET("", s.listRules)
			rules.POST("", s.addRule)
			rules.DELETE("/:value", s.removeRule)
		}

		prompts := api.Group("/prompts")
		{
			prompts.GET("", s.listPrompts)
			prompts.PUT("/:key", s.savePrompt)
			prompts.DELETE("/:key", s.resetPrompt)
		}

		api.GET("/subscriptions", s.scanSubscriptions)
		api.POST("/calendar/events", s.addCalendarEvent)
		api.POST("/chat", s.chat)
		api.GET("/stats", s.stats)
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("dashboard listening", zap.String("addr", s.opts.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("dashboard shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
