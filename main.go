package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"roommate-service/internal/auth"
	"roommate-service/internal/config"
	"roommate-service/internal/db"
	"roommate-service/internal/grpcserver"
	"roommate-service/internal/handlers"
	"roommate-service/internal/matching"
	"roommate-service/internal/middleware"
	"roommate-service/internal/observability"
	"roommate-service/internal/rabbitmq"
	"roommate-service/internal/repositories"
	"roommate-service/internal/services"
	"roommate-service/internal/telemetry"
	"roommate-service/internal/ws"
)

const version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var weightsFile string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, websocket and gRPC health servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if weightsFile != "" {
				cfg.MatchWeightsFile = weightsFile
			}
			return serveCmd(cmd.Context(), cfg)
		},
	}
	serve.Flags().StringVar(&weightsFile, "weights", "", "YAML match weight table (overrides MATCH_WEIGHTS_FILE)")

	root := &cobra.Command{
		Use:           "roommated",
		Short:         "Roommate matching and messaging service",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}
	root.Flags().AddFlagSet(serve.Flags())

	root.AddCommand(serve, &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrateCmd(cmd.Context(), config.Load())
		},
	}, &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("roommated version %s\n", version)
		},
	})
	return root
}

func migrateCmd(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}
	return nil
}

func serveCmd(parent context.Context, cfg config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracer(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.Environment)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(shutdownCtx)
	}()

	database, err := db.Connect(ctx, cfg.DBDSN)
	if err != nil {
		return err
	}
	defer database.Close()
	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	weights, err := matching.LoadWeights(cfg.MatchWeightsFile)
	if err != nil {
		return err
	}
	engine, err := matching.NewEngine(matching.Options{Weights: weights, Strict: cfg.StrictMatching})
	if err != nil {
		return err
	}

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	observability.SetPublisher(publisher)
	log.Printf("event publisher mode=%s reason=%q", rabbitmq.PublisherMode(publisher), rabbitmq.PublisherNoopReason(publisher))
	emitter := telemetry.NewAuditEmitter(publisher, telemetry.AuditRoutingKey, cfg.ServiceName, cfg.Environment)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.ServiceName)

	userRepo := repositories.NewUserRepo(database)
	prefsRepo := repositories.NewPreferencesRepo(database)
	listingRepo := repositories.NewListingRepo(database)
	convRepo := repositories.NewConversationRepo(database)
	msgRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.NewRouter(handlers.RouterConfig{
		ServiceName:   cfg.ServiceName,
		Auth:          middleware.AuthMiddleware(tokens, userRepo),
		Users:         handlers.NewUserHandler(services.NewUserService(userRepo, prefsRepo, tokens), emitter),
		Preferences:   handlers.NewPreferencesHandler(services.NewPreferencesService(prefsRepo)),
		Matches:       handlers.NewMatchHandler(services.NewMatchService(userRepo, prefsRepo, engine)),
		Conversations: handlers.NewConversationHandler(services.NewConversationService(convRepo, msgRepo, userRepo, hub)),
		Listings:      handlers.NewListingHandler(services.NewListingService(listingRepo, userRepo)),
		WebSocket:     ws.NewConversationWebSocketHandler(hub, convRepo, tokens, userRepo).Handle,
		DB:            database,
		Emitter:       emitter,
		Engine:        engine,
		DebugRoutes:   cfg.DebugRoutes,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcLis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}
	healthServer := grpcserver.New(database, cfg.ServiceName, 10*time.Second)

	errCh := make(chan error, 2)
	go func() {
		if err := healthServer.Serve(ctx, grpcLis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()
	go func() {
		log.Printf("http listening addr=%s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Printf("shutting down")
	case err = <-errCh:
		log.Printf("server error: %v", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	healthServer.Stop()
	if shutdownErr := httpServer.Shutdown(shutdownCtx); shutdownErr != nil {
		log.Printf("http shutdown: %v", shutdownErr)
	}
	return err
}
