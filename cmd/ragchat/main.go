package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Momo3972/chatbot-rag-ia-gen/internal/answer"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/config"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/corpus"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/extract"
	logpkg "github.com/Momo3972/chatbot-rag-ia-gen/internal/logger"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/metrics"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/present"
	chiTransport "github.com/Momo3972/chatbot-rag-ia-gen/internal/transport/chi"
	openaiTransport "github.com/Momo3972/chatbot-rag-ia-gen/internal/transport/openai"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/transport/tui"
	embeddinguc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/embedding"
	healthuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/health"
	sessionuc "github.com/Momo3972/chatbot-rag-ia-gen/internal/usecase/session"
	"github.com/Momo3972/chatbot-rag-ia-gen/internal/version"
)

const usage = `Usage: ragchat [flags] [serve|chat]

  serve   run the HTTP API (default)
  chat    run the terminal chat client

Flags:
`

func main() {
	// OPENAI_API_KEY may live in a local .env file.
	_ = godotenv.Load()

	showVersion := flag.Bool("version", false, "print version and exit")
	logFile := flag.String("log-file", "ragchat.log", "log destination for chat mode")
	pdfPath := flag.String("pdf", "", "chat mode: PDF to load before starting")
	pageURL := flag.String("url", "", "chat mode: web page to load before starting")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	mode := "serve"
	if flag.NArg() > 0 {
		mode = flag.Arg(0)
	}
	if mode != "serve" && mode != "chat" {
		flag.Usage()
		os.Exit(2)
	}

	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// The terminal UI owns the screen, so chat mode logs to a file.
	var outputs []string
	if mode == "chat" {
		outputs = []string{*logFile}
	}
	logger, err := logpkg.New(env, cfg.Logging.Level, outputs...)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	// Register metrics explicitly (no init())
	metrics.Register()

	app := build(cfg, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting ragchat",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.String("mode", mode),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("completion_model", cfg.Completion.Model),
	)

	switch mode {
	case "chat":
		err = runChat(ctx, app, *pdfPath, *pageURL)
	default:
		err = runServer(ctx, cfg, app, logger)
	}
	if err != nil {
		logger.Error("Exited with error", zap.Error(err))
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the assembled object graph shared by both modes.
type app struct {
	session   *sessionuc.Service
	index     *corpus.Index
	embedder  *openaiTransport.Embedder
	completer *openaiTransport.Completer
}

// build is the composition root: providers, decorators, corpus, session.
func build(cfg config.Config, logger *zap.Logger) app {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    cfg.EmbeddingTimeout(),
		Logger:     logger,
	})
	embedder := embeddinguc.NewInstrumentedEmbedder(base, cfg.Embedding.Model, logger)

	completer := openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: cfg.CompletionTimeout(),
		Logger:  logger,
	})
	generator := answer.New(completer, answer.Options{
		Model:     cfg.Completion.Model,
		MaxTokens: cfg.Completion.MaxTokens,
	})

	index := corpus.New(corpus.Options{
		Concurrency: cfg.Embedding.Concurrency,
		BatchSize:   cfg.Embedding.BatchSize,
	}, logger)

	session := sessionuc.New(sessionuc.Deps{
		Index: index,
		PDF:   extract.NewPDF(),
		Web: extract.NewWeb(extract.WebConfig{
			Timeout:      time.Duration(cfg.Extract.HTTPTimeoutSec) * time.Second,
			MaxBodyBytes: cfg.Extract.MaxBodyBytes,
			UserAgent:    cfg.Extract.UserAgent,
		}),
		Embedder:  embedder,
		Generator: generator,
		MaxWords:  cfg.Chunker.MaxWords,
		Logger:    logger,
	})

	return app{session: session, index: index, embedder: base, completer: completer}
}

func runServer(ctx context.Context, cfg config.Config, a app, logger *zap.Logger) error {
	healthSvc := healthuc.New(a.index, a.embedder, a.completer)
	server := chiTransport.NewServer(a.session, healthSvc, cfg.Upload.MaxPDFBytes, logger)

	writeTimeout := time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second
	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      chiTransport.NewRouter(server, writeTimeout, logger),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: writeTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func runChat(ctx context.Context, a app, pdfPath, pageURL string) error {
	// Preloads print their status before the UI takes over the screen.
	if pdfPath != "" {
		if _, err := a.session.LoadFromPDF(ctx, pdfPath); err != nil {
			fmt.Println(present.LoadFailed(err))
		} else {
			fmt.Println(present.PDFLoaded)
		}
	}
	if pageURL != "" {
		if _, err := a.session.LoadFromURL(ctx, pageURL); err != nil {
			fmt.Println(present.LoadFailed(err))
		} else {
			fmt.Println(present.URLLoaded)
		}
	}

	p := tea.NewProgram(tui.New(ctx, a.session), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}
