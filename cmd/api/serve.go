package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/config"
	"github.com/justsurfingit/linkedin-agent/internal/database"
	"github.com/justsurfingit/linkedin-agent/internal/events"
	"github.com/justsurfingit/linkedin-agent/internal/handlers"
	"github.com/justsurfingit/linkedin-agent/internal/services"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	var configFile string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configFile)
		},
	}
	cmd.Flags().StringVar(&configFile, "config", "", "optional YAML config file")
	return cmd
}

func serve(ctx context.Context, configFile string) error {
	// 1. Configuration
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.GinMode)

	// 2. Database Connection
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}

	// 3. Activity events
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		rdb, err := events.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable, activity events disabled: %v", err)
		} else {
			defer rdb.Close()
			pub = events.NewRedisPublisher(rdb)
			log.Println("✅ Publishing activity events to Redis")
		}
	}

	// 4. LLM provider. Without one, messages use the template and
	// analysis answers 502.
	var llm services.Completer
	if svc, err := services.NewLLMService(ctx, cfg); err != nil {
		log.Printf("⚠️  LLM disabled: %v", err)
	} else {
		llm = svc
	}

	// 5. Services
	activity := services.NewActivityLogger(db, pub)
	matcher := services.NewMatcherService(db)
	jobs := services.NewJobService(db, matcher, activity)
	router := handlers.Router{
		Jobs:         handlers.NewJobHandler(jobs, activity, services.NewAnalysisService(llm, jobs, activity, cfg.LLMTimeout)),
		Connections:  handlers.NewConnectionHandler(services.NewConnectionService(db, matcher, activity)),
		Users:        handlers.NewUserHandler(services.NewUserService(db, activity)),
		Messages:     handlers.NewMessageHandler(services.NewMessageService(llm, nil, cfg.LLMTimeout, cfg.LLMMaxTokens, cfg.LLMTemperature), services.NewProfileService(db)),
		AllowOrigins: cfg.CORSAllowOrigins,
	}
	router.Auth = router.Users.Users

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.Engine(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("🚀 Server starting on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		log.Println("🛑 Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
