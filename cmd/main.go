package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"docs-admin-console/config"
	_ "docs-admin-console/docs"
	"docs-admin-console/internal/apiclient"
	"docs-admin-console/internal/browser"
	"docs-admin-console/internal/handler"
	"docs-admin-console/internal/ports"
	"docs-admin-console/internal/repository"
	"docs-admin-console/internal/security"
	"docs-admin-console/internal/service"

	httpSwagger "github.com/swaggo/http-swagger"
)

// sweepInterval : как часто чистятся простаивающие сессии, загрузки и подтверждения
const sweepInterval = time.Minute

// @title Docs admin console
// @version 1.0
// @description Консоль администрирования документов, ТСС и организаций поверх API платформы

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		log.Fatalf("Не удалось подключиться к БД: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка при закрытии БД: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("Ошибка подключения к Redis: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("Ошибка при закрытии Redis: %v", err)
		}
	}()

	staging, err := setupStaging(ctx, cfg)
	if err != nil {
		log.Fatalf("Ошибка создания промежуточного хранилища: %v", err)
	}

	verifier, err := security.NewVerifier(ctx, &cfg.JWT)
	if err != nil {
		log.Fatalf("Ошибка настройки проверки JWT: %v", err)
	}
	adminToken := security.NewAdminToken(&cfg.Admin)

	srv, router := config.SetupServer(cfg.ServerAddr, cfg.CORS)

	api := apiclient.New(cfg.Upstream.BaseURL, cfg.Upstream.TimeoutDuration(), cfg.Upstream.ServiceToken)
	cacheRepo := repository.NewCacheRepository(redisClient)
	preferencesRepo := repository.NewPreferencesRepository(db)

	limits := service.UploadLimits{
		Folder: cfg.Limits.MaxFolderUploadBytes(),
		TCC:    cfg.Limits.MaxTCCUploadBytes(),
	}
	registry := browser.NewRegistry()

	permissionService := service.NewPermissionService(api, cacheRepo, cfg.TTL.Seconds(cfg.TTL.Permission))
	confirmationService := service.NewConfirmationService(cfg.TTL.Seconds(cfg.TTL.Confirmations))
	reportService := service.NewReportService(api, cacheRepo, permissionService, cfg.TTL.Seconds(cfg.TTL.Reports))
	browserService := service.NewBrowserService(registry, api, api, permissionService, confirmationService)
	bulkService := service.NewBulkService(registry, api, api, permissionService, confirmationService, cfg.Limits.BulkConcurrency)
	searchService := service.NewSearchService(api, api, permissionService,
		service.NewDebouncer(cfg.Limits.SearchDebounceDuration()), cfg.Limits.SearchMinLength)
	uploadService := service.NewUploadService(staging, api, permissionService, limits, cfg.Staging.Prefix)
	courseService := service.NewCourseService(api, permissionService, confirmationService, reportService)
	tccService := service.NewTCCService(api, confirmationService, limits)
	organizationService := service.NewOrganizationService(api, permissionService, confirmationService, reportService)
	preferencesService := service.NewPreferencesService(preferencesRepo, db)

	tccService.OnChange(func(ctx context.Context, change service.TCCChange) {
		reportService.Invalidate(ctx, change.OrganizationID)
	})

	handlers := handler.Handlers{
		Browser:      handler.NewBrowserHandler(browserService, bulkService, searchService),
		Permission:   handler.NewPermissionHandler(permissionService, confirmationService),
		Upload:       handler.NewUploadHandler(uploadService, 5*time.Minute),
		Academic:     handler.NewAcademicHandler(courseService, tccService, searchService),
		Organization: handler.NewOrganizationHandler(organizationService, reportService, preferencesService),
	}

	router.Get("/swagger/*", httpSwagger.WrapHandler)
	handlers.Mount(router, security.JWTMiddleware(verifier, adminToken))

	go runSweeper(ctx, registry, uploadService, confirmationService, cfg.TTL.Seconds(cfg.TTL.Staging))

	runServer(ctx, srv)
}

// setupStaging : s3 для нескольких экземпляров консоли, memory для одного
func setupStaging(ctx context.Context, cfg *config.AppConfig) (ports.StagingStorage, error) {
	if cfg.Staging.Backend == "s3" {
		s3Service, err := service.NewS3Service(ctx, &cfg.S3Config)
		if err != nil {
			return nil, err
		}
		return s3Service, nil
	}
	log.Println("Файлы загрузок хранятся в памяти процесса")
	return service.NewMemoryStaging(), nil
}

func runSweeper(ctx context.Context, registry *browser.Registry, uploads *service.UploadService,
	confirmations *service.ConfirmationService, maxAge time.Duration) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			sessions := registry.Sweep(maxAge)
			staged := uploads.Sweep(ctx, maxAge)
			expired := confirmations.Sweep()
			if sessions+staged+expired > 0 {
				log.Printf("[Sweeper] удалено сессий %d, загрузок %d, подтверждений %d", sessions, staged, expired)
			}
		}
	}
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("сервер запущен на " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("ошибка работы сервера: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("получен сигнал %v остановки работы сервера ", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("ошибка при остановке сервера: %v", err)
	} else {
		log.Println("Сервер успешно остановлен")
	}
}
