package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/book-expert/ai-router/internal/app"
	"github.com/book-expert/ai-router/internal/config"
	"github.com/book-expert/ai-router/internal/lambdaentry"
	"github.com/book-expert/ai-router/internal/server"
	"github.com/book-expert/ai-router/internal/worker"
	"github.com/book-expert/logger"
	"github.com/spf13/cobra"
)

const (
	bootstrapLogFile = "ai-router-bootstrap.log"
	serviceLogFile   = "ai-router.log"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "ai-router",
		Short:         "Sentiment-prioritised AI request router",
		Long:          "Routes requests to managed AI services and publishes sentiment-prioritised envelopes to three queues.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newServeCmd(), newLambdaCmd())

	return rootCmd
}

func newServeCmd() *cobra.Command {
	var (
		addr      string
		serveNATS bool
	)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the router over HTTP",
		Example: `  ai-router serve
  ai-router serve --addr :9090 --nats`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, addr, serveNATS)
		},
	}

	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&serveNATS, "nats", false, "Also answer requests on the NATS request subject")

	return serveCmd
}

func newLambdaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as an API Gateway proxy Lambda handler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runLambda(cmd.Context())
		},
	}
}

func setupLogger(logPath, fileName string) (*logger.Logger, error) {
	log, err := logger.New(logPath, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// bootstrap loads configuration with a temporary logger, then opens the
// service logger in the configured directory.
func bootstrap() (*config.Config, *logger.Logger, error) {
	bootstrapLog, err := setupLogger(os.TempDir(), bootstrapLogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to create bootstrap logger: %v\n", err)

		return nil, nil, err
	}

	defer func() {
		closeErr := bootstrapLog.Close()
		if closeErr != nil {
			fmt.Fprintf(os.Stderr, "error closing bootstrap logger: %v\n", closeErr)
		}
	}()

	bootstrapLog.Info("Bootstrap logger created.")

	cfg, err := config.Load(bootstrapLog)
	if err != nil {
		bootstrapLog.Error("Failed to load configuration: %v", err)

		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	bootstrapLog.Info("Configuration loaded successfully.")

	logDir := cfg.Paths.BaseLogsDir
	if logDir == "" {
		logDir = os.TempDir()
	}

	finalLog, err := setupLogger(logDir, serviceLogFile)
	if err != nil {
		bootstrapLog.Error("Failed to create final logger: %v", err)

		return nil, nil, fmt.Errorf("failed to create final logger: %w", err)
	}

	return cfg, finalLog, nil
}

func closeLogger(log *logger.Logger) {
	closeErr := log.Close()
	if closeErr != nil {
		fmt.Fprintf(os.Stderr, "error closing final logger: %v\n", closeErr)
	}
}

func runServe(ctx context.Context, addr string, serveNATS bool) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeLogger(log)

	if addr != "" {
		cfg.Server.Addr = addr
	}

	routerApp, err := app.Build(ctx, cfg, log, app.Options{NeedNATS: serveNATS})
	if err != nil {
		log.Error("Failed to build router: %v", err)

		return fmt.Errorf("failed to build router: %w", err)
	}
	defer routerApp.Close()

	handler, err := server.NewHandler(routerApp.Dispatcher, routerApp.Registry, log)
	if err != nil {
		return fmt.Errorf("failed to create http handler: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errChan := make(chan error, 2)
	running := 1

	go func() {
		errChan <- server.New(cfg.Server.Addr, handler, log).Run(ctx)
	}()

	if serveNATS {
		natsWorker, workerErr := worker.NewNatsWorker(routerApp.NATS, cfg.NATS.RequestSubject, routerApp.Dispatcher, log)
		if workerErr != nil {
			return fmt.Errorf("failed to create NATS worker: %w", workerErr)
		}

		running++

		go func() {
			errChan <- natsWorker.Run(ctx)
		}()
	}

	log.System("ai-router initialized. HTTP on %s, NATS requests: %t", cfg.Server.Addr, serveNATS)

	var firstErr error

	for range running {
		runErr := <-errChan
		if runErr != nil && firstErr == nil {
			firstErr = runErr

			log.Error("Component stopped with error: %v", runErr)
		}

		cancel()
	}

	return firstErr
}

func runLambda(ctx context.Context) error {
	cfg, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer closeLogger(log)

	routerApp, err := app.Build(ctx, cfg, log, app.Options{})
	if err != nil {
		log.Error("Failed to build router: %v", err)

		return fmt.Errorf("failed to build router: %w", err)
	}
	defer routerApp.Close()

	handler, err := lambdaentry.NewHandler(routerApp.Dispatcher, log)
	if err != nil {
		return fmt.Errorf("failed to create lambda handler: %w", err)
	}

	log.System("ai-router initialized as Lambda handler.")

	lambda.StartWithOptions(handler.Handle, lambda.WithContext(ctx))

	return nil
}
