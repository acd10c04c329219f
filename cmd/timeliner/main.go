package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"

	"timeliner/internal/chunk"
	"timeliner/internal/config"
	"timeliner/internal/credibility"
	"timeliner/internal/events"
	"timeliner/internal/extract"
	"timeliner/internal/gnews"
	"timeliner/internal/llm"
	"timeliner/internal/logger"
	"timeliner/internal/metrics"
	"timeliner/internal/ratelimit"
	"timeliner/internal/resolve"
	"timeliner/internal/retry"
	"timeliner/internal/session"
	"timeliner/internal/timeline"
	"timeliner/internal/ui"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("configuration error: %v", err)
	}

	// Check if we should start HTTP server for monitoring
	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.ModelTimeout)
	if err != nil {
		log.Fatalf("failed to init model client: %v", err)
	}
	defer gemini.Close()

	locales, err := config.LoadLocales(cfg.LocalesConfigPath)
	if err != nil {
		logger.Warn("locale presets unavailable, using defaults", "error", err)
	}
	locale := config.ResolveLocale(locales, cfg.Locale)

	retryCfg := retry.Config{MaxAttempts: cfg.RetryAttempts, Delay: cfg.RetryDelay, Backoff: true}
	limiter := ratelimit.NewModelLimiter(cfg.MaxModelRequests)

	sess := session.New(
		gnews.NewSearcher(cfg.RequestTimeout, retryCfg),
		resolve.NewResolver(cfg.RequestTimeout),
		extract.NewExtractor(cfg.RequestTimeout),
		events.NewExtractor(gemini, limiter),
		timeline.NewMerger(gemini),
		credibility.NewScorer(gemini),
		session.Options{
			MaxArticles:   cfg.MaxArticles,
			ChunkMaxWords: cfg.ChunkMaxWords,
			ChunkPolicy:   chunk.PolicySentence,
			Concurrency:   cfg.ArticleConcurrency,
			ArtifactTTL:   cfg.ArtifactTTL,
			Region:        locale.Region,
			Language:      locale.Language,
		},
	)

	runLoop(ctx, sess, cfg.ExportPath)
}

func runLoop(ctx context.Context, sess *session.Session, exportPath string) {
	fmt.Println(ui.HeaderStyle.Render("News Event Timeline Generator"))
	fmt.Println(ui.DimStyle.Render("commands: search <topic> | translate <language> | highlights | compare | export [path] | stats | quit"))

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return
		}
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		cmd, arg := splitCommand(line)
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			return
		case "search":
			runSearch(ctx, sess, arg)
		case "translate":
			if arg == "" {
				fmt.Println(ui.ErrorStyle.Render("usage: translate <language>"))
				continue
			}
			out, terr := sess.Translate(ctx, arg)
			printDerived(out, terr, "Translated Timeline")
		case "highlights":
			out, herr := sess.Highlights(ctx)
			printDerived(out, herr, "Key Highlights")
		case "compare":
			out, cerr := sess.CompareSources(ctx)
			printDerived(out, cerr, "Source Comparison")
		case "export":
			path := exportPath
			if arg != "" {
				path = arg
			}
			if err := sess.Export(path); err != nil {
				fmt.Println(ui.ErrorStyle.Render(err.Error()))
				continue
			}
			fmt.Println(ui.SuccessStyle.Render("timeline written to " + path))
		case "stats":
			printStats()
		default:
			fmt.Println(ui.ErrorStyle.Render("unknown command: " + cmd))
		}
	}
}

func runSearch(ctx context.Context, sess *session.Session, query string) {
	if strings.TrimSpace(query) == "" {
		fmt.Println(ui.ErrorStyle.Render("enter a search term"))
		return
	}

	fmt.Println(ui.DimStyle.Render("building timeline for: " + query))
	err := sess.Run(ctx, query)

	// Per-article warnings are informational either way.
	if w := ui.Warnings(sess.Warnings()); w != "" {
		fmt.Print(w)
	}

	switch {
	case errors.Is(err, session.ErrNoResults):
		fmt.Println(ui.WarningStyle.Render("no results: nothing extractable for this query"))
		return
	case err != nil:
		fmt.Println(ui.ErrorStyle.Render("timeline generation failed: " + err.Error()))
		return
	}

	for i, a := range sess.Articles() {
		fmt.Println(ui.ArticleCard(i+1, a))
	}
	fmt.Println(ui.Timeline(sess.Timeline()))
}

func printDerived(out string, err error, header string) {
	if err != nil {
		fmt.Println(ui.ErrorStyle.Render(err.Error()))
		return
	}
	fmt.Println(ui.HeaderStyle.Render(header))
	fmt.Println(out)
}

func splitCommand(line string) (string, string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", ""
	}
	return strings.ToLower(fields[0]), strings.TrimSpace(strings.Join(fields[1:], " "))
}

func printStats() {
	stats := metrics.Global.GetStats()
	out, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(out))
}

func startMonitoringServer() {
	port := os.Getenv("MONITORING_PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
