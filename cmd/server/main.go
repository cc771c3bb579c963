package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/mkarpushin/procurement-backend/internal/ai"
	"github.com/mkarpushin/procurement-backend/internal/config"
	"github.com/mkarpushin/procurement-backend/internal/db"
	"github.com/mkarpushin/procurement-backend/internal/goroutine"
	httpHandlers "github.com/mkarpushin/procurement-backend/internal/http/handlers"
	httpRouter "github.com/mkarpushin/procurement-backend/internal/http/router"
	"github.com/mkarpushin/procurement-backend/internal/ingest"
	"github.com/mkarpushin/procurement-backend/internal/logger"
	"github.com/mkarpushin/procurement-backend/internal/mail"
	"github.com/mkarpushin/procurement-backend/internal/repository"
	"github.com/mkarpushin/procurement-backend/internal/service"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера
	logLevel := "info"
	if cfg.Env == "development" {
		logLevel = "debug"
		logger.Init(logLevel)
		logger.SetTextFormatter()
	} else {
		logger.Init(logLevel)
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Репозитории.
	rfpRepo := repository.NewRFPRepository(dbConn)
	vendorRepo := repository.NewVendorRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)

	// AI клиент: экстракция и оценка не работают без него, поэтому
	// он создаётся всегда, а недоступность сервиса превращается в
	// ошибку экстракции на конкретном запросе.
	aiClient := ai.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)

	// Почта: рассылка и поллер включаются только при настроенной учётке.
	var sender service.InvitationSender
	var poller *ingest.Poller

	pipeline := ingest.NewPipeline(rfpRepo, vendorRepo, proposalRepo, aiClient, aiClient, logger.Log)

	if cfg.EmailConfigured() {
		sender = mail.NewSender(mail.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.EmailUser,
			Password: cfg.EmailPassword,
		})

		dialer := mail.NewIMAPDialer(mail.IMAPConfig{
			Host:     cfg.IMAPHost,
			Port:     cfg.IMAPPort,
			User:     cfg.EmailUser,
			Password: cfg.EmailPassword,
		})
		poller = ingest.NewPoller(dialer, pipeline, cfg.PollInterval, logger.Log)

		goroutine.SafeGoWithContext(ctx, poller.Run)
	} else {
		logger.Log.Warn("main: почтовая учётка не задана, опрос ящика и рассылка отключены")
	}

	// Сервисы.
	rfpService := service.NewRFPService(rfpRepo, vendorRepo, aiClient, sender, logger.Log)
	analyticsService := service.NewAnalyticsService(rfpRepo, vendorRepo, proposalRepo)

	// HTTP хэндлеры.
	rfpHandler := httpHandlers.NewRFPHandler(rfpRepo, rfpService)
	vendorHandler := httpHandlers.NewVendorHandler(vendorRepo)
	proposalHandler := httpHandlers.NewProposalHandler(proposalRepo, pipeline)
	analyticsHandler := httpHandlers.NewAnalyticsHandler(analyticsService)
	ingestHandler := httpHandlers.NewIngestHandler(poller)
	healthHandler := httpHandlers.NewHealthHandler(dbConn, cfg.EmailConfigured())

	// Роутер.
	engine := httpRouter.SetupRouter(cfg, rfpHandler, vendorHandler, proposalHandler, analyticsHandler, ingestHandler, healthHandler)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
