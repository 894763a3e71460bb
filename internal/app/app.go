package app

import (
	"context"
	"fmt"
	"log"
	"math_quiz_backend/internal/config"
	"math_quiz_backend/internal/controller"
	"math_quiz_backend/internal/middleware"
	"math_quiz_backend/internal/model"
	"math_quiz_backend/internal/repository"
	"math_quiz_backend/internal/service"
	"math_quiz_backend/internal/util"
	"math_quiz_backend/internal/web"
	"math_quiz_backend/pkg/configwatcher"
	"math_quiz_backend/pkg/database"
	"math_quiz_backend/pkg/logger"
	"math_quiz_backend/pkg/monitoring"
	"math_quiz_backend/pkg/security"
	"math_quiz_backend/pkg/tracing"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracer          *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	results  repository.ResultsStore
	sessions repository.QuizSessionStore
}

type services struct {
	storage   *service.StorageService
	quiz      *service.QuizService
	results   *service.ResultsService
	chart     *service.ChartService
	worksheet *service.WorksheetService
}

type controllers struct {
	home      *controller.HomeController
	quiz      *controller.QuizController
	results   *controller.ResultsController
	analytics *controller.AnalyticsController
	worksheet *controller.WorksheetController
	health    *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// initRepositories 连接外部存储，任何失败都视为启动失败
func (a *App) initRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	repos := &repositories{}

	switch cfg.Results.Backend {
	case util.ResultsBackendMySQL:
		db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
		if err != nil {
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.DB = db
		repos.results = repository.NewGormResultsRepository(db)
		logger.Log.Info("Results store: mysql", zap.String("database", cfg.Database.DBName))
	default:
		sheets, err := repository.NewSheetsResultsRepository(ctx, cfg.Results.Sheets)
		if err != nil {
			return nil, err
		}
		repos.results = sheets
		logger.Log.Info("Results store: google sheets", zap.String("title", cfg.Results.Sheets.SpreadsheetTitle))
	}

	if err := repos.results.Init(ctx); err != nil {
		return nil, fmt.Errorf("initialize results store: %w", err)
	}

	switch cfg.Quiz.SessionBackend {
	case util.SessionBackendRedis:
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		a.Redis = rdb
		repos.sessions = repository.NewRedisSessionRepository(rdb, cfg.Quiz.SessionTTL)
	case util.SessionBackendMemory:
		repos.sessions = repository.NewMemorySessionRepository(cfg.Quiz.SessionTTL)
	default:
		secret := cfg.Quiz.TokenSecret
		if secret == "" {
			// 仅非 release 模式会走到这里，重启后旧令牌失效
			secret = model.GenerateUUID() + model.GenerateUUID()
			logger.Log.Warn("quiz.token_secret is empty, using a random secret for this process")
		}
		repos.sessions = repository.NewTokenSessionRepository(secret, cfg.Quiz.SessionTTL)
	}
	logger.Log.Info("Quiz sessions", zap.String("backend", cfg.Quiz.SessionBackend))

	return repos, nil
}

func (a *App) initServices(repos *repositories, cfg *config.Config) (*services, error) {
	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	gen := service.NewQuestionGenerator(nil)

	return &services{
		storage:   storage,
		quiz:      service.NewQuizService(gen, repos.sessions, repos.results, cfg.Quiz.QuestionCount),
		results:   service.NewResultsService(repos.results),
		chart:     service.NewChartService(repos.results, storage, cfg.Chart.Filename, cfg.Chart.Width, cfg.Chart.Height),
		worksheet: service.NewWorksheetService(gen, cfg.Quiz.WorksheetCount),
	}, nil
}

func (a *App) initControllers(s *services, repos *repositories) *controllers {
	return &controllers{
		home:      controller.NewHomeController(),
		quiz:      controller.NewQuizController(s.quiz),
		results:   controller.NewResultsController(s.results),
		analytics: controller.NewAnalyticsController(s.chart),
		worksheet: controller.NewWorksheetController(s.worksheet),
		health:    controller.NewHealthController(repos.results),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// build 组装服务、控制器与路由，外部存储由调用方提供
func (a *App) build(repos *repositories) error {
	services, err := a.initServices(repos, a.Config)
	if err != nil {
		return err
	}
	controllers := a.initControllers(services, repos)

	router := gin.New()
	router.SetHTMLTemplate(web.Templates())
	a.Router = router

	a.setupMiddlewares(router, a.Config)
	a.registerRoutes(router, controllers, a.Config)
	return nil
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	if cfg.Server.Mode == gin.DebugMode || cfg.Server.Mode == gin.ReleaseMode || cfg.Server.Mode == gin.TestMode {
		gin.SetMode(cfg.Server.Mode)
	}

	app := &App{Config: cfg}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repos, err := app.initRepositories(ctx, cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize repositories", zap.Error(err))
	}

	// 监控初始化
	monitoring.Init()

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer(tracing.ServiceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	if err := app.build(repos); err != nil {
		logger.Log.Fatal("Failed to build application", zap.Error(err))
	}

	app.RegisterConfigCallback(func(newCfg *config.Config) {
		logger.SetLevel(newCfg.Server.Mode)
	})

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.Config.ConfigFile != "" {
		go func() {
			err := configwatcher.WatchConfig(ctx, a.Config.ConfigFile, func(newCfg *config.Config) {
				for _, cb := range a.configCallbacks {
					cb(newCfg)
				}
			})
			if err != nil {
				logger.Log.Error("Config watcher stopped", zap.Error(err))
			}
		}()
	}

	// 启动服务器
	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	<-ctx.Done()
	logger.Log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.tracer != nil {
		if err := a.tracer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	logger.Log.Info("Server exiting")
	logger.Log.Sync()
}
