package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omriShneor/project_casa/internal/assistant"
	"github.com/omriShneor/project_casa/internal/booking"
	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/conversation"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/gcal"
	"github.com/omriShneor/project_casa/internal/importer"
	"github.com/omriShneor/project_casa/internal/llm"
	"github.com/omriShneor/project_casa/internal/logging"
	"github.com/omriShneor/project_casa/internal/manual"
	"github.com/omriShneor/project_casa/internal/notify"
	"github.com/omriShneor/project_casa/internal/processor"
	"github.com/omriShneor/project_casa/internal/scheduler"
	"github.com/omriShneor/project_casa/internal/server"
	"github.com/omriShneor/project_casa/internal/source"
	"github.com/omriShneor/project_casa/internal/telegram"
	"github.com/omriShneor/project_casa/internal/whatsapp"
	"go.uber.org/zap"
)

var defaultManualPaths = []string{"manual-gestion.txt", "manual-gestion.pdf"}

func main() {
	cfg := config.LoadFromEnv()

	logger, err := logging.New(cfg.LogLevel, cfg.DevMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()

	// Phase 1: Core infrastructure
	db, err := database.New(cfg.DBPath)
	if err != nil {
		logger.Fatal("creating database", zap.Error(err))
	}
	defer db.Close()

	profile, err := config.LoadProfile(cfg.AgencyProfileFile)
	if err != nil {
		logger.Fatal("loading agency profile", zap.Error(err))
	}

	m := initManual(cfg, logger)
	generator := initGenerator(ctx, cfg, logger)
	stores, sessionCount := initStores(ctx, cfg, logger)

	// Phase 2: Booking fan-out
	gcalClient := initCalendar(ctx, cfg, logger)
	notifier := booking.NewNotifier(booking.Config{
		Calendar:    calendarOrNil(gcalClient),
		CalendarID:  cfg.CalendarID,
		Store:       db,
		Email:       initEmail(cfg, profile, logger),
		AgencyEmail: cfg.AgencyNotifyEmail,
		Location:    profile.Location(),
		Logger:      logger.Named("booking"),
	})

	// Phase 3: Conversation engine
	engine := conversation.NewEngine(conversation.EngineConfig{
		Sessions:  stores.Sessions(),
		History:   stores.History(),
		Listings:  db,
		Assembler: assistant.NewAssembler(m, db, logger.Named("context")),
		Responder: assistant.NewResponder(generator, profile, time.Duration(cfg.GenerationTimeout)*time.Second, logger.Named("responder")),
		Notifier:  notifier,
		Profile:   profile,
		Logger:    logger.Named("engine"),
	})

	inbound := make(chan source.Inbound, 100)
	proc := processor.New(engine, inbound, cfg.Workers, logger)
	proc.Start()

	// Phase 4: Transports
	waClient := initWhatsApp(ctx, cfg, inbound, logger)
	tgClient := initTelegram(ctx, cfg, inbound, logger)

	// Phase 5: Admin API and scheduled import
	imp := importer.New(db, logger.Named("importer"))
	sched := initScheduler(cfg, imp, profile, logger)

	srvCfg := server.ServerConfig{
		DB:         db,
		Port:       cfg.HTTPPort,
		CalendarID: cfg.CalendarID,
		Generator:  generatorName(generator),
		ManualSize: m.Len(),
		Importer:   imp,
		Scheduler:  sched,
		Sessions:   sessionCount,
		Logger:     logger.Named("server"),
	}
	if waClient != nil {
		srvCfg.WhatsApp = waClient
	}
	if tgClient != nil {
		srvCfg.Telegram = tgClient
	}
	if gcalClient != nil {
		srvCfg.Calendar = gcalClient
	}
	srv := server.New(srvCfg)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	waitForShutdown(logger, proc, engine, srv, waClient, tgClient, sched)
}

func initManual(cfg *config.Config, logger *zap.Logger) *manual.Manual {
	paths := defaultManualPaths
	if cfg.ManualPath != "" {
		paths = []string{cfg.ManualPath}
	}

	m, err := manual.LoadFirst(paths...)
	if err != nil {
		logger.Warn("manual not loaded, answers will rely on listings only", zap.Strings("paths", paths), zap.Error(err))
		return nil
	}
	logger.Info("manual loaded", zap.String("source", m.Source), zap.Int("chars", m.Len()), zap.Int("sections", len(m.Sections())))
	if !m.LooksMeaningful() {
		logger.Warn("manual does not mention documents, procedures, commissions or requirements", zap.String("source", m.Source))
	}
	return m
}

// initGenerator picks the first configured backend: Anthropic, Gemini, then Ollama.
func initGenerator(ctx context.Context, cfg *config.Config, logger *zap.Logger) llm.Generator {
	timeout := time.Duration(cfg.GenerationTimeout) * time.Second

	var gen llm.Generator
	switch {
	case cfg.AnthropicAPIKey != "":
		gen = llm.NewAnthropic(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.ClaudeTemperature, timeout)
	case cfg.GeminiAPIKey != "":
		g, err := llm.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ClaudeTemperature)
		if err != nil {
			logger.Warn("Gemini backend unavailable, falling back to Ollama", zap.Error(err))
		} else {
			gen = g
		}
	}
	if gen == nil {
		gen = llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.ClaudeTemperature, timeout)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := gen.Ping(pingCtx); err != nil {
		logger.Warn("generation backend not reachable, replies will use the fallback text until it is", zap.String("backend", gen.Name()), zap.Error(err))
	} else {
		logger.Info("generation backend ready", zap.String("backend", gen.Name()))
	}
	return gen
}

func generatorName(g llm.Generator) string {
	if g == nil {
		return ""
	}
	return g.Name()
}

type sessionStores interface {
	Sessions() conversation.SessionStore
	History() conversation.HistoryStore
}

func initStores(ctx context.Context, cfg *config.Config, logger *zap.Logger) (sessionStores, func() int) {
	if cfg.RedisURL != "" {
		client, err := conversation.NewRedisClient(ctx, cfg.RedisURL)
		if err == nil {
			logger.Info("sessions stored in Redis")
			return conversation.NewRedisStore(client, time.Duration(cfg.SessionTTL)*time.Hour), nil
		}
		logger.Warn("Redis unavailable, keeping sessions in memory", zap.Error(err))
	}
	mem := conversation.NewMemoryStore()
	return mem, mem.Count
}

func initCalendar(ctx context.Context, cfg *config.Config, logger *zap.Logger) *gcal.Client {
	client, err := gcal.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, logger.Named("gcal"))
	if errors.Is(err, gcal.ErrNotConfigured) {
		logger.Info("Google Calendar not configured, bookings will not be synced")
		return nil
	}
	if err != nil {
		logger.Warn("Google Calendar unavailable", zap.Error(err))
		return nil
	}
	if client.IsAuthenticated() {
		logger.Info("Google Calendar connected", zap.String("calendar", cfg.CalendarID))
	}
	return client
}

func calendarOrNil(c *gcal.Client) booking.Calendar {
	if c == nil {
		return nil
	}
	return c
}

func initEmail(cfg *config.Config, profile *config.Profile, logger *zap.Logger) notify.Notifier {
	if cfg.ResendAPIKey == "" || cfg.AgencyNotifyEmail == "" {
		logger.Info("booking email disabled (RESEND_API_KEY and AGENCY_NOTIFY_EMAIL required)")
		return nil
	}
	n := notify.NewResendNotifier(cfg.ResendAPIKey, cfg.EmailFrom, profile.Name)
	if n == nil || !n.IsConfigured() {
		return nil
	}
	logger.Info("booking email configured", zap.String("provider", n.Name()))
	return n
}

func initWhatsApp(ctx context.Context, cfg *config.Config, inbound chan<- source.Inbound, logger *zap.Logger) *whatsapp.Client {
	handler := whatsapp.NewHandler(inbound, logger.Named("whatsapp"))
	client, err := whatsapp.NewClient(ctx, handler, cfg.WhatsAppDBPath, whatsapp.DefaultQRPath, logger.Named("whatsapp"))
	if err != nil {
		logger.Error("failed to create WhatsApp client", zap.Error(err))
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		logger.Error("failed to connect WhatsApp", zap.Error(err))
	}
	return client
}

func initTelegram(ctx context.Context, cfg *config.Config, inbound chan<- source.Inbound, logger *zap.Logger) *telegram.Client {
	if !cfg.TelegramEnabled() {
		logger.Info("Telegram: not configured (CASA_TELEGRAM_API_ID, CASA_TELEGRAM_API_HASH and CASA_TELEGRAM_BOT_TOKEN required)")
		return nil
	}

	handler := telegram.NewHandler(inbound, logger.Named("telegram"))
	client, err := telegram.NewClient(telegram.ClientConfig{
		APIID:       cfg.TelegramAPIID,
		APIHash:     cfg.TelegramAPIHash,
		BotToken:    cfg.TelegramBotToken,
		SessionPath: cfg.TelegramDBPath,
		Handler:     handler,
		Logger:      logger.Named("telegram"),
	})
	if err != nil {
		logger.Warn("failed to create Telegram client", zap.Error(err))
		return nil
	}
	if err := client.Connect(ctx); err != nil {
		logger.Warn("failed to connect Telegram", zap.Error(err))
	}
	return client
}

func initScheduler(cfg *config.Config, imp *importer.Importer, profile *config.Profile, logger *zap.Logger) *scheduler.Scheduler {
	if cfg.ImportListingsFile == "" || cfg.ImportCron == "" {
		return nil
	}
	sched := scheduler.New(imp, cfg.ImportListingsFile, cfg.ImportCron, profile.Location(), logger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		logger.Warn("scheduled import disabled", zap.Error(err))
		return nil
	}
	return sched
}

func waitForShutdown(logger *zap.Logger, proc *processor.Processor, engine *conversation.Engine, srv *server.Server, waClient *whatsapp.Client, tgClient *telegram.Client, sched *scheduler.Scheduler) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if waClient != nil {
		waClient.Disconnect()
	}
	if tgClient != nil {
		tgClient.Disconnect()
	}
	proc.Stop()
	engine.Wait()
	if sched != nil {
		sched.Stop()
	}
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("HTTP server shutdown", zap.Error(err))
	}
}
