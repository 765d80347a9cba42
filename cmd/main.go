package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"

	"radchat/ai"
	"radchat/auth"
	"radchat/gateway"
	"radchat/internal"
	"radchat/moderation"
	"radchat/observability"
	"radchat/projection"
	"radchat/repositories"
	"radchat/runtime"
	"radchat/runtime/workers"
	"radchat/services"
)

const (
	timelineCapacity  = 50
	healthLogInterval = 30 * time.Second
	defaultSeparator  = "\n---\n"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and centralizes error reporting.
// This pattern keeps every defer (database close, index close) on the exit path
// and decouples the wiring from the process entry point.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if config.ContextSeparator == "" {
		config.ContextSeparator = defaultSeparator
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Storage (BadgerDB + search index)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	searchIndex, err := repositories.NewSearchIndex(config.BlugeFilepath)
	if err != nil {
		return fmt.Errorf("search index opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing search index...")
		_ = searchIndex.Close()
	}()

	// 3. Repositories
	history, err := repositories.NewHistoryRepository(db, log, searchIndex)
	if err != nil {
		return fmt.Errorf("history initialization failed: %w", err)
	}
	userRepo := repositories.NewUserRepository(db)
	roster := repositories.NewRobotRoster(repositories.DefaultRoster())

	// 4. Auth
	tokens := auth.NewTokenManager(config.JWTSecret, config.AuthTokenDuration)
	verifier := auth.NewVerifier(tokens, userRepo)

	// 5. Room engine
	bus := runtime.NewBus(log, config.BufferSize, config.SinkTimeout)
	registry := runtime.NewRegistry(log, verifier, roster, bus)

	generator := ai.NewGeminiClient(config.GeminiURL, config.GeminiAPIKey, log)
	coordinator := runtime.NewCoordinator(log, registry, roster, history, generator, bus,
		runtime.TurnSettings{
			WindowSize:        config.HistoryWindowSize,
			Template:          config.PromptTemplate,
			Separator:         config.ContextSeparator,
			Retention:         config.HistoryRetention,
			GenerationTimeout: config.GenerationTimeout,
		})

	words, err := moderation.EmbeddedWords()
	if err != nil {
		return fmt.Errorf("censored words loading failed: %w", err)
	}
	log.Info(fmt.Sprintf("%d censored words loaded", len(words)))
	moderator, err := moderation.NewModerator(words, []rune(config.CharReplacement)[0])
	if err != nil {
		return fmt.Errorf("moderation setup failed: %w", err)
	}

	// 6. Projections & monitoring on the bus
	monitor := observability.NewMonitor(log)
	timeline := projection.NewTimeline(timelineCapacity)
	bus.Add(monitor, timeline)

	// 7. Services
	chat := services.NewChatService(registry, history, bus, moderator, searchIndex, config.ActionPhrases)
	authService := services.NewAuthService(userRepo, tokens)
	robots := services.NewRobotService(roster, bus)

	// 8. Supervision
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(
		bus.Fanout(registry),
		workers.NewAutomationWorker(log, coordinator, config.AutomationMeanInterval),
		observability.NewHealthWorker(monitor, healthLogInterval),
	)

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 9. HTTP server
	server := gateway.NewServer(log, verifier, registry, authService, chat, robots,
		coordinator, monitor, timeline, config.ConnectionBufferSize)

	address := fmt.Sprintf("%s:%d", config.Host, config.Port)
	httpServer := &http.Server{Addr: address, Handler: server.Routes()}

	errChan := make(chan error, 1)
	go func() {
		log.Info("Starting HTTP server", "address", address, "at", time.Now().UTC())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 10. Wait for stop or error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(shutdownCtx)

	sup.Stop()
	<-supDone
	log.Info("Program stopped cleanly")

	return nil
}
