package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajramos/inboxpilot/internal/calendar"
	"github.com/ajramos/inboxpilot/internal/dashboard"
	"github.com/ajramos/inboxpilot/internal/gmail"
	"github.com/ajramos/inboxpilot/internal/llm"
	"github.com/ajramos/inboxpilot/internal/services"
	"github.com/ajramos/inboxpilot/pkg/auth"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard API server",
		Long: `Run the dashboard API server.

The first run opens a browser authorization flow for Gmail and Calendar
access; the token is cached for later runs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, flags, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, :3000)")
	return cmd
}

func runServe(ctx context.Context, flags *globalFlags, addr string) error {
	a, err := loadApp(ctx, flags)
	if err != nil {
		return err
	}
	defer a.Close()
	cfg := a.cfg
	logger := a.logger

	credPath := getCredentialsPath(flags.credentials, cfg.Credentials)
	tokenPath := getTokenPath(flags.token, cfg.Token)
	if _, err := os.Stat(credPath); err != nil {
		return fmt.Errorf("credentials file not found at %s: download OAuth client credentials from Google Cloud Console or run `inboxpilot setup`", credPath)
	}

	gsvc, csvc, err := auth.NewServices(ctx, credPath, tokenPath)
	if err != nil {
		return fmt.Errorf("could not authorize Google access: %w", err)
	}
	mailClient := gmail.NewClient(gsvc)
	calClient := calendar.NewClient(csvc)

	provider := newProvider(ctx, cfg.LLM.Enabled, llm.Options{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Endpoint: cfg.LLM.Endpoint,
		Region:   bedrockRegion(cfg.LLM.Region),
		APIKey:   cfg.LLM.APIKey,
		Timeout:  cfg.GetLLMTimeout(),
	}, logger)

	ai := services.NewAIService(provider, a.prompts, logger.Named("ai"))
	triage := services.NewTriageService(services.TriageDeps{
		AI:                ai,
		Cache:             services.NewAnalysisCacheService(a.records),
		Tags:              a.tags,
		Privacy:           a.privacy,
		Reminders:         a.reminders,
		Summaries:         services.NewSummaryService(a.records),
		Logger:            logger.Named("triage"),
		AutoSaveReminders: cfg.Triage.AutoSaveReminders,
	})

	deps := dashboard.Deps{
		Mail:          services.NewMailService(mailClient, a.tags, a.reminders, a.privacy, int(cfg.Triage.PageSize), logger.Named("mail")),
		Triage:        triage,
		AI:            ai,
		Reminders:     a.reminders,
		Tags:          a.tags,
		Privacy:       a.privacy,
		Prompts:       a.prompts,
		Calendar:      services.NewCalendarService(calClient, time.Local, logger.Named("calendar")),
		Subscriptions: services.NewSubscriptionService(mailClient, int(cfg.Triage.SubscriptionScanLimit)),
		Selection:     services.NewSelectionTracker(),
	}

	if addr == "" {
		addr = cfg.Server.Addr
	}
	srv := dashboard.NewServer(deps, dashboard.Options{Addr: addr, AllowOrigins: cfg.Server.AllowOrigins}, logger.Named("http"))
	return srv.Run(ctx)
}

// newProvider builds the model client. Any failure leaves AI unavailable
// instead of stopping the server.
func newProvider(ctx context.Context, enabled bool, o llm.Options, logger *zap.Logger) llm.Provider {
	if !enabled {
		logger.Info("llm disabled in config")
		return nil
	}
	p, err := llm.NewProviderFromConfig(ctx, o)
	if err != nil {
		logger.Warn("could not initialize llm provider", zap.String("provider", o.Provider), zap.Error(err))
		return nil
	}
	if p == nil {
		logger.Warn("llm api key missing, AI features unavailable", zap.String("provider", o.Provider))
		return nil
	}
	logger.Info("llm provider ready", zap.String("provider", p.Name()), zap.String("model", o.Model))
	return p
}

func bedrockRegion(configured string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv("AWS_REGION")
}
