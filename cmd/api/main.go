package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/recruitment-assistant/internal/config"
	"alfredoptarigan/recruitment-assistant/internal/handlers"
	"alfredoptarigan/recruitment-assistant/internal/repositories"
	"alfredoptarigan/recruitment-assistant/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize services
	storageService := services.NewStorageService(cfg.Storage.UploadPath)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	resumeParser := services.NewResumeParserService()
	log.Println("✅ Services initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Initialize Qdrant-backed reference retrieval
	var retriever services.ContextRetriever
	qdrantService, err := services.NewQdrantService(
		cfg.Qdrant.URL,
		cfg.Qdrant.APIKey,
		cfg.Qdrant.Collection,
	)
	if err != nil {
		log.Printf("⚠️ Qdrant unavailable, continuing without reference context: %v\n", err)
	} else if err := qdrantService.InitCollection(); err != nil {
		log.Printf("⚠️ Qdrant collection init failed, continuing without reference context: %v\n", err)
	} else {
		retriever = services.NewContextRetriever(geminiService, qdrantService)
		log.Println("✅ Qdrant initialized successfully")
	}

	// Initialize web search
	searchService := services.NewTavilyService(
		cfg.Tavily.APIKey,
		cfg.Tavily.MaxResults,
		cfg.Tavily.Timeout,
	)

	// Initialize pipeline
	matcher := services.NewMatcherService(geminiService)
	ranker := services.NewResourceRanker(geminiService, cfg.Pipeline.RetryMaxAttempts)
	pipeline := services.NewPipeline(
		resumeParser,
		matcher,
		geminiService,
		searchService,
		retriever,
		ranker,
		cfg.Pipeline.RetryMaxAttempts,
	)
	log.Println("✅ Pipeline initialized")

	// Initialize session store
	sessions := services.NewSessionStore(cfg.Pipeline.SessionTTL)
	sessions.StartJanitor()
	log.Println("✅ Session store started")

	// Initialize handlers
	pipelineHandler := handlers.NewPipelineHandler(
		pipeline,
		sessions,
		storageService,
		jobRepo,
		cfg.Storage.MaxFileSize,
	)
	jobHandler := handlers.NewJobHandler(jobRepo)
	log.Println("✅ Handlers initialized")

	// Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Recruitment Assistant API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
		BodyLimit:    int(cfg.Storage.MaxFileSize),
		ErrorHandler: customErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Routes
	api := app.Group("/api/v1")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	// Pipeline stages
	api.Post("/resume-upload", pipelineHandler.HandleResumeUpload)
	api.Post("/jd-upload", pipelineHandler.HandleJDUpload)
	api.Post("/match", pipelineHandler.HandleMatch)
	api.Post("/skill-gap", pipelineHandler.HandleSkillGap)
	api.Post("/assessment", pipelineHandler.HandleAssessment)
	api.Post("/interview", pipelineHandler.HandleInterview)
	api.Post("/evaluate-interview", pipelineHandler.HandleEvaluateInterview)
	api.Post("/pipeline", pipelineHandler.HandleFullPipeline)

	// Job postings
	api.Post("/jobs", jobHandler.HandleCreateJob)
	api.Get("/jobs", jobHandler.HandleListJobs)
	api.Delete("/jobs/:id", jobHandler.HandleDeleteJob)

	// Root route
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Recruitment Assistant API",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /api/v1/resume-upload",
				"POST /api/v1/jd-upload",
				"POST /api/v1/match",
				"POST /api/v1/skill-gap",
				"POST /api/v1/assessment",
				"POST /api/v1/interview",
				"POST /api/v1/evaluate-interview",
				"POST /api/v1/pipeline",
				"POST /api/v1/jobs",
				"GET /api/v1/jobs",
				"DELETE /api/v1/jobs/:id",
			},
		})
	})

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		sessions.Stop()
		if err := app.Shutdown(); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
