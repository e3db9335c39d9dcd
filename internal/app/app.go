package app

import (
	"context"
	"coursetrack_backend/internal/config"
	"coursetrack_backend/internal/controller"
	"coursetrack_backend/internal/repository"
	"coursetrack_backend/internal/service"
	"coursetrack_backend/internal/util"
	"coursetrack_backend/pkg/configwatcher"
	"coursetrack_backend/pkg/database"
	"coursetrack_backend/pkg/lock"
	"coursetrack_backend/pkg/logger"
	"coursetrack_backend/pkg/monitoring"
	"coursetrack_backend/pkg/security"
	"coursetrack_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const configFile = "configs/config.yaml"

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	services        *services
	rateLimiter     *security.RateLimiter
	tracerProvider  *sdktrace.TracerProvider
	stopWatcher     context.CancelFunc
	configCallbacks []func(*config.Config)
}

type repositories struct {
	curriculum *repository.CurriculumRepository
	progress   *repository.ProgressRepository
	enrollment *repository.EnrollmentRepository
}

type services struct {
	storage    *service.StorageService
	progress   *service.ProgressService
	analytics  *service.AnalyticsService
	enrollment *service.EnrollmentService
	dashboard  *service.DashboardService
	report     *service.ReportService
	tracker    *service.ViewTracker
}

type controllers struct {
	progress   *controller.ProgressController
	enrollment *controller.EnrollmentController
	analytics  *controller.AnalyticsController
	dashboard  *controller.DashboardController
	health     *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		curriculum: repository.NewCurriculumRepository(db),
		progress:   repository.NewProgressRepository(db),
		enrollment: repository.NewEnrollmentRepository(db),
	}
}

// newLocker 按配置选择进程内锁或 Redis 分布式锁
func newLocker(cfg *config.ProgressConfig, rdb *redis.Client) lock.Locker {
	if cfg.LockBackend == util.LockBackendRedis && rdb != nil {
		return lock.NewRedisLocker(rdb, cfg.LockTTL)
	}
	return lock.NewMemoryLocker()
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	curriculum := service.NewCachedCurriculum(repos.curriculum, rdb, cfg.Progress.CurriculumCacheTTL)

	s.storage = service.NewStorageService(cfg)
	s.progress = service.NewProgressService(repos.progress, curriculum, newLocker(&cfg.Progress, rdb))
	s.analytics = service.NewAnalyticsService(repos.curriculum, repos.enrollment, s.progress)
	s.analytics.SetLimits(cfg.Analytics.RecentDefaultLimit, cfg.Analytics.RecentMaxLimit, cfg.Analytics.SummaryConcurrency)
	s.enrollment = service.NewEnrollmentService(repos.curriculum, repos.enrollment)
	s.dashboard = service.NewDashboardService(repos.curriculum, repos.enrollment, s.progress, s.analytics)
	s.report = service.NewReportService(s.analytics, repos.enrollment, s.progress, s.storage)
	s.tracker = service.NewViewTracker(s.progress, service.NewCompletionNotifier(rdb, cfg.Progress.CompletionChannel))

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		progress:   controller.NewProgressController(s.progress, s.tracker),
		enrollment: controller.NewEnrollmentController(s.enrollment),
		analytics:  controller.NewAnalyticsController(s.analytics, s.report),
		dashboard:  controller.NewDashboardController(s.dashboard),
		health:     controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.rateLimiter = security.NewRateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.rateLimiter.Middleware())

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// startConfigWatcher 配置文件变更时热更新限流和统计参数
func (a *App) startConfigWatcher() {
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.rateLimiter.Update(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	})
	a.RegisterConfigCallback(func(cfg *config.Config) {
		a.services.analytics.SetLimits(cfg.Analytics.RecentDefaultLimit, cfg.Analytics.RecentMaxLimit, cfg.Analytics.SummaryConcurrency)
	})

	ctx, cancel := context.WithCancel(context.Background())
	a.stopWatcher = cancel

	path, _ := filepath.Abs(configFile)
	go func() {
		err := configwatcher.WatchConfig(ctx, path, func(cfg *config.Config) {
			for _, callback := range a.configCallbacks {
				callback(cfg)
			}
		})
		if err != nil {
			logger.Log.Warn("Config watcher stopped", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode, cfg.ForceMigrate)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	app := &App{
		Config: cfg,
		DB:     db,
	}
	if cfg.MigrateOnly {
		return app
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		log.Fatalf("Failed to initialize redis: %v", err)
	}
	app.Redis = rdb

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("coursetrack", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == util.StorageLocal {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startConfigWatcher()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	if a.stopWatcher != nil {
		a.stopWatcher()
	}
	if a.rateLimiter != nil {
		a.rateLimiter.Stop()
	}

	// 关闭服务
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}

	log.Println("Server exiting")
}
