// Command console chats with the assistant from the terminal against an
// in-memory database. Useful to try the conversation flow without WhatsApp.
//
// Usage:
//
//	go run ./cmd/console -listings propiedades.csv -manual manual-gestion.txt
//
// The admin API is served on CASA_HTTP_PORT while the console runs.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/assistant"
	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/conversation"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/importer"
	"github.com/omriShneor/project_casa/internal/llm"
	"github.com/omriShneor/project_casa/internal/logging"
	"github.com/omriShneor/project_casa/internal/manual"
	"github.com/omriShneor/project_casa/internal/server"
	"github.com/omriShneor/project_casa/internal/source"
	"go.uber.org/zap"
)

var (
	listingsFile = flag.String("listings", "", "catalog to import before chatting (.csv, .xlsx, .json)")
	manualFile   = flag.String("manual", "", "procedures manual (.txt, .md, .pdf)")
	sender       = flag.String("as", "console", "sender id for the session")
)

func main() {
	flag.Parse()

	cfg := config.LoadFromEnv()
	logger, err := logging.New("warn", true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	db, err := database.New(":memory:")
	if err != nil {
		logger.Fatal("creating database", zap.Error(err))
	}
	defer db.Close()

	imp := importer.New(db, logger)
	if *listingsFile != "" {
		result, err := imp.ImportListingsFile(*listingsFile)
		if err != nil {
			logger.Fatal("importing listings", zap.Error(err))
		}
		fmt.Printf("%d listings imported\n", result.Imported)
	}

	var m *manual.Manual
	if *manualFile != "" {
		if m, err = manual.Load(*manualFile); err != nil {
			logger.Fatal("loading manual", zap.Error(err))
		}
	}

	profile, err := config.LoadProfile(cfg.AgencyProfileFile)
	if err != nil {
		logger.Fatal("loading agency profile", zap.Error(err))
	}

	timeout := time.Duration(cfg.GenerationTimeout) * time.Second
	var gen llm.Generator = llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.ClaudeTemperature, timeout)
	if cfg.AnthropicAPIKey != "" {
		gen = llm.NewAnthropic(cfg.AnthropicAPIKey, cfg.ClaudeModel, cfg.ClaudeTemperature, timeout)
	}

	store := conversation.NewMemoryStore()
	engine := conversation.NewEngine(conversation.EngineConfig{
		Sessions:  store.Sessions(),
		History:   store.History(),
		Listings:  db,
		Assembler: assistant.NewAssembler(m, db, logger),
		Responder: assistant.NewResponder(gen, profile, timeout, logger),
		Profile:   profile,
		Logger:    logger,
	})

	srv := server.New(server.ServerConfig{
		DB:         db,
		Port:       cfg.HTTPPort,
		Generator:  gen.Name(),
		ManualSize: m.Len(),
		Importer:   imp,
		Sessions:   store.Count,
		Logger:     logger,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Warn("admin API not started", zap.Error(err))
		}
	}()
	defer srv.Shutdown(context.Background())

	printer := source.ReplierFunc(func(_ context.Context, _ string, text string) error {
		fmt.Printf("\n%s\n\n", text)
		return nil
	})

	fmt.Printf("Chatting as %q with %s. Ctrl+D to exit.\n> ", *sender, gen.Name())
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text != "" {
			engine.HandleMessage(context.Background(), source.Message{
				SourceType: source.SourceTypeConsole,
				SenderID:   *sender,
				SenderName: *sender,
				Text:       text,
				Timestamp:  time.Now(),
			}, printer)
		}
		fmt.Print("> ")
	}
	engine.Wait()
}
