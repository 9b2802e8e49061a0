package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/St1cky1/kanban-service/internal/api"
	grpcapi "github.com/St1cky1/kanban-service/internal/api/grpc"
	"github.com/St1cky1/kanban-service/internal/api/handlers"
	"github.com/St1cky1/kanban-service/internal/config"
	"github.com/St1cky1/kanban-service/internal/infrastructure/auth"
	"github.com/St1cky1/kanban-service/internal/infrastructure/cache"
	"github.com/St1cky1/kanban-service/internal/infrastructure/client"
	"github.com/St1cky1/kanban-service/internal/infrastructure/storage"
	"github.com/St1cky1/kanban-service/internal/repository"
	"github.com/St1cky1/kanban-service/internal/usecase"
	"github.com/St1cky1/kanban-service/internal/worker"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
)

const healthCheckInterval = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API, gRPC health server and activity worker",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Println(".env file not found, using environment variables")
		}
		cfg := config.Load()
		return serve(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(cfg config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// Запускаем миграции
	if err := client.RunMigrations(cfg.DatabaseURL()); err != nil {
		return err
	}

	// Подключаемся к БД
	pg, err := client.NewPostgresClient(ctx, cfg.DatabaseURL())
	if err != nil {
		return err
	}
	defer pg.Close()
	log.Println("✅ Подключение к БД установлено")

	// Подключаемся к RabbitMQ
	rabbitMQ, err := client.NewRabbitMQClient(cfg.RabbitMQURL(), cfg.ActivityQueue)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()
	log.Println("✅ Подключение к RabbitMQ установлено")

	// Кеш досок: Redis если задан адрес, иначе память процесса
	ttl := time.Duration(cfg.BoardCacheTTLSeconds) * time.Second
	var boardCache usecase.BoardViewCache
	if cfg.RedisAddr != "" {
		redisClient, err := client.NewRedisClient(cfg.RedisAddr)
		if err != nil {
			return err
		}
		defer redisClient.Close()
		boardCache = cache.NewRedisBoardCache(redisClient, ttl)
		log.Println("✅ Подключение к Redis установлено")
	} else {
		boardCache = cache.NewMemoryBoardCache(ttl)
		log.Println("⚠️  REDIS_ADDR не задан, кеш досок в памяти")
	}

	store, err := storage.NewLocalStore(cfg.StorageDir, cfg.StorageBaseURL)
	if err != nil {
		return err
	}

	// Инициализируем репозитории
	db := pg.Pool
	taskRepo := repository.NewTaskRepository(db)
	boardRepo := repository.NewBoardRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	attachmentRepo := repository.NewAttachmentRepository(db)
	timerRepo := repository.NewTimerRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	shareRepo := repository.NewShareRepository(db)

	// Инициализируем сервисы
	clk := clockwork.NewRealClock()
	maxUpload := int64(cfg.MaxUploadMB) << 20
	taskService := usecase.NewTaskService(taskRepo, boardRepo, attachmentRepo, boardCache, rabbitMQ, clk)
	boardService := usecase.NewBoardService(boardRepo, taskRepo, attachmentRepo, boardCache, rabbitMQ, clk)
	uploader := usecase.NewAttachmentUploader(attachmentRepo, store, boardCache, clk, maxUpload)
	resolver := usecase.NewMemberResolver(memberRepo, usecase.MemberCacheTTL)
	commentService := usecase.NewCommentService(commentRepo, activityRepo, taskRepo, boardRepo, attachmentRepo, uploader, resolver, rabbitMQ, clk)
	draftService := usecase.NewDraftService(taskService, uploader, commentService)
	timerService := usecase.NewTimerService(taskRepo, timerRepo, boardCache, clk)
	shareService := usecase.NewShareService(shareRepo, boardService, cfg.PublicBaseURL, clk)

	// Воркер ленты активности
	activityWorker := worker.NewActivityWorker(rabbitMQ, activityRepo)
	wg.Add(1)
	go func() {
		defer wg.Done()
		activityWorker.Start(ctx)
	}()

	// gRPC: health и reflection
	grpcServer := grpcapi.NewGRPCServer()
	wg.Add(1)
	go func() {
		defer wg.Done()
		grpcServer.WatchHealth(ctx, pg, healthCheckInterval)
	}()
	go func() {
		if err := grpcServer.Start(cfg.GRPCPort); err != nil {
			log.Printf("❌ gRPC server error: %v", err)
		}
	}()

	router := api.NewRouter(api.Services{
		Boards:      boardService,
		Tasks:       taskService,
		Drafts:      draftService,
		Comments:    commentService,
		Uploader:    uploader,
		Timers:      timerService,
		Members:     resolver,
		Shares:      shareService,
		Tokens:      auth.NewJWTManager(cfg.JWTSecretKey),
		Clock:       clk,
		Limits:      handlers.UploadLimits{MaxFileSize: maxUpload, MaxFiles: cfg.MaxUploadFiles},
		Files:       http.FileServer(http.Dir(store.Dir())),
		FilesPrefix: cfg.StorageBaseURL,
	})

	httpServer := &http.Server{
		Addr:              cfg.AppURL,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Printf("HTTP server listening on %s", cfg.AppURL)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("❌ HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Завершение работы...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  HTTP server shutdown: %v", err)
	}
	grpcServer.Stop()
	wg.Wait()

	log.Println("✅ Приложение завершено корректно")
	return nil
}
