package main

import (
	grpcserver "chat-room/infrastructure/grpc/server"
	httpserver "chat-room/infrastructure/http/server"
	"chat-room/internal"
	"chat-room/observability"
	"chat-room/runtime/workers"
	"chat-room/services"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"google.golang.org/grpc"
)

// Exit codes to provide meaningful status to the operating system or service manager (e.g., systemd).
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

const shutdownTimeout = 10 * time.Second

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Chat room terminated with error: %v\n", err)
	}
	os.Exit(code)
}

// run wires the room together and blocks until a signal arrives or a server fails.
// Returning instead of exiting lets every defer release the store.
func run() (int, error) {
	// 1. Configuration & Logger
	// A missing .env is fine, the environment alone may carry everything.
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	if err := config.Validate(); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Store
	store, err := openStore(ctx, config, logger)
	if err != nil {
		return exitRuntime, err
	}
	defer store.close()

	// 4. Services
	clock := clockwork.NewRealClock()
	presence := services.NewPresenceService(logger, store.participants, store.messages, clock, config.InactivityThreshold)
	messages := services.NewMessageService(logger, store.participants, store.messages, clock)
	monitor := observability.NewMonitoringManager(logger, clock.Now)
	healthReporter := grpcserver.NewHealthReporter(logger)

	// 5. Sweeps run until the process context ends
	sup := workers.NewSupervisor(logger)
	sup.Add(workers.NewSweepWorker(
		logger, presence,
		observability.SweepObservers{monitor, healthReporter},
		clock, config.SweepInterval,
	))
	supervisorDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supervisorDone)
	}()

	errChan := make(chan error, 2)

	// 6. HTTP Server
	router := httpserver.NewRouter(logger, httpserver.NewHandler(logger, presence, messages, monitor), config.Origins())
	httpServer := httpserver.NewHTTPServer(config.Host, config.Port, router)
	go func() {
		logger.Info("Starting HTTP server", "address", httpServer.Addr, "store", config.StoreDriver)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// 7. gRPC health server
	address := fmt.Sprintf("%s:%d", config.Host, config.GRPCPort)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		_ = httpServer.Close()
		return exitRuntime, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s := grpcserver.NewGRPCServer(logger, healthReporter)
	go func() {
		logger.Info("Starting gRPC health server", "address", address)
		if err := s.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			errChan <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	// 8. Wait for Stop or Error
	code := exitOK
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	case runErr = <-errChan:
		code = exitRuntime
	}

	// 9. Final Cleanup
	logger.Info("Shutting down gracefully...")
	healthReporter.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", "err", err)
	}
	s.GracefulStop()
	sup.Stop()
	<-supervisorDone
	logger.Info("Program stopped cleanly")

	return code, runErr
}
