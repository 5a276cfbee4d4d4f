package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flagdojo_backend/challenges"
	"flagdojo_backend/internal/challenge"
	"flagdojo_backend/internal/config"
	"flagdojo_backend/internal/controller"
	"flagdojo_backend/internal/repository"
	"flagdojo_backend/internal/service"
	"flagdojo_backend/pkg/configwatcher"
	"flagdojo_backend/pkg/database"
	"flagdojo_backend/pkg/logger"
	"flagdojo_backend/pkg/monitoring"
	"flagdojo_backend/pkg/security"
	"flagdojo_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Router *gin.Engine
	DB     *gorm.DB
	Redis  *redis.Client

	// 挂载成功的插件实例，按命名空间索引
	Mounter *challenge.Mounter

	// 启动阶段被隔离的插件失败，/api/admin/stats 会曝光
	LoadFailures []challenge.LoadFailure

	services *services
	tracer   *sdktrace.TracerProvider

	// CORS 白名单的热更句柄，配置回调换内容，中间件读快照
	origins *security.AllowedOrigins
}

type repositories struct {
	user       *repository.UserRepository
	challenge  *repository.ChallengeRepository
	submission *repository.SubmissionRepository
	solve      *repository.SolveRepository
}

type services struct {
	auth       *service.AuthService
	sync       *service.SyncService
	submission *service.SubmissionService
	catalog    *service.CatalogService
	scoreboard *service.ScoreboardService
	admin      *service.AdminService
}

type controllers struct {
	auth       *controller.AuthController
	challenge  *controller.ChallengeController
	submission *controller.SubmissionController
	scoreboard *controller.ScoreboardController
	admin      *controller.AdminController
	health     *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:       repository.NewUserRepository(db),
		challenge:  repository.NewChallengeRepository(db),
		submission: repository.NewSubmissionRepository(db),
		solve:      repository.NewSolveRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.sync = service.NewSyncService(db)
	s.submission = service.NewSubmissionService(repos.challenge, repos.solve, repos.submission, a.Mounter)
	s.catalog = service.NewCatalogService(repos.challenge, repos.solve, repos.submission)
	s.scoreboard = service.NewScoreboardService(db, rdb, repos.challenge, repos.solve, repos.submission)
	s.admin = service.NewAdminService(repos.user, repos.challenge, repos.submission, repos.solve)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:       controller.NewAuthController(s.auth),
		challenge:  controller.NewChallengeController(s.catalog),
		submission: controller.NewSubmissionController(s.submission, s.scoreboard),
		scoreboard: controller.NewScoreboardController(s.scoreboard),
		admin:      controller.NewAdminController(s.admin, s.scoreboard),
		health:     controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	a.origins = security.NewAllowedOrigins(cfg.CORS.AllowedOrigins)
	router.Use(security.CORS(a.origins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// loadChallenges 注册内置插件、扫描插件目录、挂载实例并把
// 目录元数据同步到持久化 catalog。同步失败视为启动失败，
// 单个插件的加载或挂载失败只被记录并隔离。
func (a *App) loadChallenges(cfg *config.Config, db *gorm.DB, sync *service.SyncService) {
	challenges.RegisterAll()

	loader := challenge.NewLoader(cfg.Challenges.RootDir, db)
	loaded, failures, err := loader.Discover()
	if err != nil {
		logger.Log.Fatal("challenge discovery failed", zap.Error(err))
	}

	var mounted []challenge.Challenge
	for _, ch := range loaded {
		if err := a.Mounter.Mount(ch); err != nil {
			failures = append(failures, challenge.LoadFailure{Plugin: ch.Slug(), Err: err})
			logger.Log.Warn("challenge mount rejected",
				zap.String("slug", ch.Slug()), zap.Error(err))
			continue
		}
		mounted = append(mounted, ch)
	}
	a.LoadFailures = failures

	monitoring.ChallengesLoaded.WithLabelValues("loaded").Set(float64(len(mounted)))
	monitoring.ChallengesLoaded.WithLabelValues("failed").Set(float64(len(failures)))

	if err := sync.Sync(mounted); err != nil {
		logger.Log.Fatal("challenge catalog sync failed", zap.Error(err))
	}
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if cfg.ForceMigrate || cfg.MigrateOnly || cfg.Server.Mode == "debug" {
		if err := database.MigrateTables(db); err != nil {
			logger.Log.Fatal("Failed to migrate tables", zap.Error(err))
		}
		logger.Log.Info("Database migration completed")
	}

	// redis 只承载排行榜缓存，连不上时降级为直查数据库
	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Warn("Redis unavailable, leaderboard cache disabled", zap.Error(err))
		rdb = nil
	}

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()

	app := &App{
		Config:  cfg,
		Router:  router,
		DB:      db,
		Redis:   rdb,
		Mounter: challenge.NewMounter(router),
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, db, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	monitoring.Init()

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("flagdojo", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracer = tp
	}

	app.registerRoutes(router, controllers, cfg)

	// 插件必须在中间件和静态路由都就绪后挂载
	app.loadChallenges(cfg, db, services.sync)

	for _, f := range app.LoadFailures {
		controllers.admin.LoadFailures = append(controllers.admin.LoadFailures, controller.PluginFailure{
			Plugin: f.Plugin,
			Error:  f.Err.Error(),
		})
	}

	if cfg.MigrateOnly {
		return app
	}

	if cfg.SeedAdmin {
		admin, created, err := services.auth.SeedAdmin()
		if err != nil {
			logger.Log.Fatal("Failed to seed admin account", zap.Error(err))
		}
		if created {
			logger.Log.Info("Admin account created", zap.String("username", admin.Username))
		} else {
			logger.Log.Info("Admin account already exists", zap.String("username", admin.Username))
		}
	}

	go configwatcher.WatchConfig("configs/config.yaml", func(newCfg *config.Config) {
		logger.Log.Info("Config reloaded",
			zap.Strings("cors_allowed_origins", newCfg.CORS.AllowedOrigins))
		app.Config.CORS = newCfg.CORS
		app.origins.Set(newCfg.CORS.AllowedOrigins)
	})

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

// Run 启动 HTTP 服务并等待退出信号，收到信号后优雅停机
func (a *App) Run() error {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		logger.Log.Info("Server starting", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.tracer != nil {
		if err := a.tracer.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Log.Info("Server exited")
	return nil
}
