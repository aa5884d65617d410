package main

import (
	"errors"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"finsight/api/ai"
	"finsight/api/config"
	"finsight/api/db"
	"finsight/api/handlers"
	"finsight/api/kafka"
	"finsight/api/logger"
	"finsight/api/metrics"
	"finsight/api/middleware"
	"finsight/api/models"
	"finsight/api/mongodb"
	"finsight/api/news"
	"finsight/api/sse"
	"finsight/api/storage"
	"finsight/api/worker"

	fsauth "finsight/api/auth"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	development := cfg.Environment == "development"
	if err := logger.Init(development, cfg.LogLevel); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := db.InitDB(cfg.PostgresURL); err != nil {
		logger.Get().Fatal("failed to initialize Postgres", zap.Error(err))
	}
	defer db.CloseDB()

	if err := mongodb.InitMongoDB(cfg.MongoURI); err != nil {
		logger.Get().Fatal("failed to initialize MongoDB", zap.Error(err))
	}
	defer mongodb.CloseMongoDB()

	// Shared handler dependencies.
	handlers.Tokens = fsauth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	handlers.AI = ai.NewGateway(cfg.AIServiceURL, cfg.AIServiceKey, cfg.AIRequestTimeout)
	handlers.Events = sse.NewHub()

	newsCache := news.NewCache(cfg.NewsCacheTTL, nil)
	newsBudget := news.NewBudget(cfg.NewsHourlyCap, nil)
	handlers.News = news.NewService(newsCache, newsBudget, news.NewHTTPFetcher(cfg.NewsAPIURL, cfg.NewsAPIKey))

	handlers.Files, err = storage.NewFileStore(cfg.UploadDir)
	if err != nil {
		logger.Get().Fatal("failed to initialize file store", zap.Error(err))
	}

	// Analysis pipeline: tasks out through Kafka, results back through the
	// consumer feeding the worker pool (plus the HTTP callback route).
	pool := worker.NewPool(4, handlers.Events)
	pool.Start()
	defer pool.Stop()

	if cfg.KafkaBootstrapServers != "" {
		settings := kafka.Settings{
			BootstrapServers: cfg.KafkaBootstrapServers,
			APIKey:           cfg.KafkaAPIKey,
			APISecret:        cfg.KafkaAPISecret,
		}
		if err := kafka.InitProducer(settings); err != nil {
			logger.Get().Fatal("failed to initialize Kafka producer", zap.Error(err))
		}
		defer kafka.CloseProducer()
		stopConsumer, err := kafka.StartResultConsumer(settings, pool)
		if err != nil {
			logger.Get().Fatal("failed to start result consumer", zap.Error(err))
		}
		// Deferred after pool.Stop, so it runs first: the consumer drains
		// before the pool closes its partitions.
		defer stopConsumer()
		handlers.Produce = kafka.ProduceAnalysisTask
	} else {
		// Without a broker, analysis triggers fail soft; results still land
		// through the internal callback route.
		logger.Get().Warn("KAFKA_BOOTSTRAP_SERVERS not set, analysis task queue disabled")
		handlers.Produce = func(*models.AnalysisTask) error {
			return errors.New("analysis task queue disabled")
		}
	}

	if !development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	frontend := os.Getenv("FRONTEND_ORIGIN")
	if frontend == "" {
		frontend = "http://localhost:3000"
	}
	router.Use(middleware.CORS(frontend))
	router.Use(metrics.Middleware())

	router.GET("/metrics", metrics.Handler())
	router.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	authGate := middleware.Auth(handlers.Tokens, db.GetAccountState)
	queryGate := middleware.AuthFromQuery(handlers.Tokens, db.GetAccountState)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/signup", handlers.HandleSignup)
			authRoutes.POST("/login", handlers.HandleLogin)
			authRoutes.POST("/logout", authGate, handlers.HandleLogout)
			authRoutes.GET("/me", authGate, handlers.HandleMe)
			authRoutes.POST("/change-password", authGate, handlers.HandleChangePassword)
		}

		goals := api.Group("/goals", authGate)
		{
			goals.GET("", handlers.HandleListGoals)
			goals.POST("", handlers.HandleCreateGoal)
			goals.GET("/:id", handlers.HandleGetGoal)
			goals.PUT("/:id", handlers.HandleUpdateGoal)
			goals.DELETE("/:id", handlers.HandleDeleteGoal)
		}

		documents := api.Group("/documents", authGate)
		{
			documents.GET("", handlers.HandleListDocuments)
			documents.POST("", handlers.HandleUploadDocument)
			documents.GET("/:id", handlers.HandleGetDocument)
			documents.DELETE("/:id", handlers.HandleDeleteDocument)
			documents.POST("/:id/analyze", handlers.HandleTriggerAnalysis)
			documents.GET("/:id/analysis", handlers.HandleAnalysisStatus)
			documents.GET("/:id/download", handlers.HandleDownloadDocument)
		}
		api.GET("/documents/:id/events", queryGate, handlers.HandleDocumentEvents)

		aiRoutes := api.Group("/ai", authGate)
		{
			aiRoutes.POST("/chat", handlers.HandleChat)
			aiRoutes.GET("/sessions", handlers.HandleListSessions)
			aiRoutes.GET("/sessions/:id", handlers.HandleGetSession)
			aiRoutes.PUT("/sessions/:id", handlers.HandleRenameSession)
			aiRoutes.DELETE("/sessions/:id", handlers.HandleDeleteSession)
		}

		api.GET("/credit-health", authGate, handlers.HandleCreditHealth)

		portfolio := api.Group("/customer/portfolio", authGate)
		{
			portfolio.GET("", handlers.HandleGetPortfolio)
			portfolio.POST("", handlers.HandleAddHolding)
			portfolio.PUT("/:id", handlers.HandleUpdateHolding)
			portfolio.DELETE("/:id", handlers.HandleDeleteHolding)
		}

		kb := api.Group("/knowledge-base", authGate)
		{
			kb.GET("", handlers.HandleListKnowledge)
			kb.POST("", handlers.HandleCreateKnowledge)
			kb.DELETE("/:id", handlers.HandleDeleteKnowledge)
		}

		team := api.Group("/team", authGate)
		{
			team.GET("", handlers.HandleListTeam)
			team.POST("", handlers.HandleAddMember)
			team.PUT("/:userId", handlers.HandleUpdateMember)
			team.DELETE("/:userId", handlers.HandleRemoveMember)
		}

		api.GET("/news", authGate, handlers.HandleNews)

		internal := api.Group("/internal", middleware.InternalAPIKey(cfg.InternalAPIKey))
		{
			internal.POST("/analysis-results", handlers.HandleAnalysisCallback)
		}
	}

	logger.Get().Info("server starting", zap.String("port", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Get().Fatal("server exited", zap.Error(err))
	}
}
