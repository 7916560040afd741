package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fieldsync-server/internal/config"
	"fieldsync-server/internal/handler"
	"fieldsync-server/internal/middleware"
	"fieldsync-server/internal/repository"
	"fieldsync-server/internal/service"
	"fieldsync-server/internal/websocket"

	"github.com/gorilla/mux"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	pool, err := repository.NewPostgresPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("Failed to ensure database schema: %v", err)
	}

	redisClient, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	userRepo := repository.NewUserRepository(pool)
	postRepo := repository.NewPostRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)
	tombstoneRepo := repository.NewTombstoneRepository(pool)
	stateRepo := repository.NewRedisSyncStateRepository(redisClient)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	go wsManager.Run()

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	syncService := service.NewSyncService(postRepo, commentRepo, tombstoneRepo, stateRepo, wsManager)
	postService := service.NewPostService(postRepo, commentRepo, tombstoneRepo)
	commentService := service.NewCommentService(commentRepo, postRepo, tombstoneRepo)

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	commentHandler := handler.NewCommentHandler(commentService)
	syncHandler := handler.NewSyncHandler(syncService)
	wsHandler := handler.NewWebSocketHandler(wsManager, cfg.JWT.Secret)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", authHandler.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	protected.HandleFunc("/sync/push", syncHandler.Push).Methods("POST", "OPTIONS")
	protected.HandleFunc("/sync/pull", syncHandler.Pull).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/changes", syncHandler.Changes).Methods("GET", "OPTIONS")
	protected.HandleFunc("/sync/status", syncHandler.Status).Methods("GET", "OPTIONS")

	// Fixed segments before the {id} routes so mux does not swallow them.
	protected.HandleFunc("/posts/pinned", postHandler.Pinned).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/search", postHandler.Search).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts", postHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/posts", postHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", postHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/posts/{id}", postHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/posts/{id}", postHandler.Delete).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/posts/{id}/comments", postHandler.Comments).Methods("GET", "OPTIONS")

	protected.HandleFunc("/comments/mine", commentHandler.Mine).Methods("GET", "OPTIONS")
	protected.HandleFunc("/comments", commentHandler.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/comments", commentHandler.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/comments/{id}", commentHandler.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/comments/{id}", commentHandler.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/comments/{id}", commentHandler.Delete).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/ws", wsHandler.HandleConnection)

	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/", rootHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting FieldSync Server on %s (env: %s)", addr, cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"fieldsync-server"}`))
}

func rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"message":"FieldSync Server API","version":"1.0.0","endpoints":{"/api/v1/auth/register":"POST","/api/v1/auth/login":"POST","/api/v1/sync/push":"POST (protected)","/api/v1/sync/pull":"GET (protected)"}}`))
}
