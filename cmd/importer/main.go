// Command importer loads the listing catalog and the procedures manual into
// the database, and authorizes the agency's Google Calendar.
//
// Usage:
//
//	importer listings propiedades.csv [more files...]
//	importer manual [-embed] manual-gestion.pdf
//	importer calendar-auth
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/omriShneor/project_casa/internal/config"
	"github.com/omriShneor/project_casa/internal/database"
	"github.com/omriShneor/project_casa/internal/gcal"
	"github.com/omriShneor/project_casa/internal/importer"
	"github.com/omriShneor/project_casa/internal/llm"
	"github.com/omriShneor/project_casa/internal/logging"
	"go.uber.org/zap"
)

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  importer listings <file.csv|file.xlsx|file.json>...
  importer manual [-embed] <manual.txt|manual.pdf>
  importer calendar-auth`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	cfg := config.LoadFromEnv()
	logger, err := logging.New(cfg.LogLevel, true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()

	switch os.Args[1] {
	case "listings":
		err = importListings(cfg, os.Args[2:], logger)
	case "manual":
		err = importManual(ctx, cfg, os.Args[2:], logger)
	case "calendar-auth":
		err = calendarAuth(ctx, cfg, logger)
	default:
		usage()
	}
	if err != nil {
		logger.Fatal(os.Args[1]+" failed", zap.Error(err))
	}
}

func importListings(cfg *config.Config, files []string, logger *zap.Logger) error {
	if len(files) == 0 {
		usage()
	}
	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	imp := importer.New(db, logger)
	for _, f := range files {
		result, err := imp.ImportListingsFile(f)
		if err != nil {
			return fmt.Errorf("%s: %w", f, err)
		}
		fmt.Printf("%s: %d imported, %d skipped\n", result.File, result.Imported, result.Skipped)
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}

	available, err := db.CountAvailableListings()
	if err != nil {
		return err
	}
	fmt.Printf("%d listings available\n", available)
	return nil
}

func importManual(ctx context.Context, cfg *config.Config, args []string, logger *zap.Logger) error {
	fs := flag.NewFlagSet("manual", flag.ExitOnError)
	embed := fs.Bool("embed", false, "store Ollama embeddings with every chunk")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		usage()
	}

	db, err := database.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	var embedder importer.Embedder
	if *embed {
		ollama := llm.NewOllama(cfg.OllamaHost, cfg.OllamaModel, cfg.OllamaEmbedModel, cfg.ClaudeTemperature, time.Duration(cfg.GenerationTimeout)*time.Second)
		if err := ollama.Ping(ctx); err != nil {
			logger.Warn("Ollama not reachable, importing without embeddings", zap.Error(err))
		} else {
			embedder = ollama
		}
	}

	result, err := importer.ImportManual(ctx, db, embedder, fs.Arg(0), logger)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d chunks, %d embedded\n", result.Document, result.Chunks, result.Embedded)
	return nil
}

func calendarAuth(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := gcal.NewClient(ctx, cfg.GoogleCredentialsFile, cfg.GoogleTokenFile, logger)
	if errors.Is(err, gcal.ErrNotConfigured) {
		return fmt.Errorf("credentials not found at %s", cfg.GoogleCredentialsFile)
	}
	if err != nil {
		return err
	}
	if client.IsAuthenticated() {
		fmt.Println("Google Calendar already authorized")
		return nil
	}

	fmt.Println("Open this URL, authorize access and paste the code parameter of the redirect:")
	fmt.Println(client.GetAuthURL())
	fmt.Print("code: ")

	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return fmt.Errorf("failed to read code: %w", err)
	}
	if err := client.ExchangeCode(ctx, strings.TrimSpace(code)); err != nil {
		return err
	}
	fmt.Printf("Token saved to %s\n", cfg.GoogleTokenFile)
	return nil
}
