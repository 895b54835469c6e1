package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/satrio28/hallbook/internal/adapter/handler"
	"github.com/satrio28/hallbook/internal/adapter/repository/postgres"
	"github.com/satrio28/hallbook/internal/adapter/ws"
	"github.com/satrio28/hallbook/internal/config"
	"github.com/satrio28/hallbook/internal/core/services"
	"github.com/satrio28/hallbook/internal/platform/auth"
	"github.com/satrio28/hallbook/internal/platform/database"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using system environment: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := database.NewPostgresDB(cfg.Database, logger)
	if err != nil {
		logger.Fatal("failed to connect to db after retries", zap.Error(err))
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)
	defer db.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("failed to connect to redis", zap.Error(err))
	}
	logger.Info("redis connected", zap.String("addr", cfg.Redis.Addr()))

	bookingRepo := postgres.NewBookingRepository(db)
	conversationRepo := postgres.NewConversationRepository(db)
	hallRepo := postgres.NewHallRepository(db)
	userRepo := postgres.NewUserRepository(db)

	verifier := auth.NewVerifier(cfg.JWT.Secret)

	bookingSvc := services.NewBookingService(bookingRepo, hallRepo, redisClient, logger)
	chatSvc := services.NewChatService(conversationRepo, hallRepo, userRepo, logger)

	hub := ws.NewHub(logger)
	wsHandler := ws.NewHandler(hub, chatSvc, verifier, logger)

	router := handler.NewRouter(bookingSvc, wsHandler, verifier, logger)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("server starting", zap.String("addr", cfg.Server.Addr))
	if err := runServer(ctx, srv); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server exiting")
}

func runServer(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
