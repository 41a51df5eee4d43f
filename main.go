package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/careerverse/backend/applications"
	"github.com/careerverse/backend/auth"
	"github.com/careerverse/backend/config"
	_ "github.com/careerverse/backend/docs"
	"github.com/careerverse/backend/gemini"
	"github.com/careerverse/backend/handlers"
	"github.com/careerverse/backend/jobs"
	"github.com/careerverse/backend/mcp"
	"github.com/careerverse/backend/models"
	"github.com/careerverse/backend/navigation"
	"github.com/careerverse/backend/resume"
	"github.com/careerverse/backend/session"
	"github.com/careerverse/backend/storage"
	"github.com/careerverse/backend/tools"
)

// @title CareerVerse API
// @version 1.0
// @description Recruiting backend with role-based navigation, job requisitions, applications and a resume builder.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@careerverse.app

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load .env file if present (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	// Document store. A Firestore outage at startup leaves the app running on
	// process memory with role resolution reporting unavailable.
	store, profiles := openStore(ctx, cfg)
	defer store.Close()

	// Blob storage for resumes, videos and logos
	var blobs storage.BlobStore
	if cfg.UploadBucket != "" {
		log.Println("Initializing Cloud Storage client...")
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg)
		if err != nil {
			log.Printf("Failed to initialize Cloud Storage client, uploads disabled: %v", err)
		} else {
			defer storageClient.Close()
			blobs = storageClient
			log.Println("Cloud Storage client initialized successfully")
		}
	} else {
		log.Println("UPLOAD_BUCKET not set, uploads disabled")
	}

	// Description suggestions
	var suggester jobs.Suggester
	if cfg.VertexEnabled {
		log.Println("Initializing Gemini client...")
		geminiClient, err := gemini.NewClient(ctx, cfg)
		if err != nil {
			log.Printf("Failed to create Gemini client, using static suggestions: %v", err)
		} else {
			defer geminiClient.Close()
			suggester = geminiClient
		}
	}

	menu, err := navigation.LoadFile(cfg.NavigationFile)
	if err != nil {
		log.Fatalf("Failed to load navigation table: %v", err)
	}

	// Auth and sessions
	jwtService := auth.NewJWTService(cfg)
	googleAuthService := auth.NewGoogleAuthService(cfg)
	sessions := session.NewManager(session.NewResolver(profiles, session.PolicyFromConfig(cfg)))

	// Domain services
	jobService := jobs.NewService(store, blobs, suggester)
	applicationService := applications.NewService(store, blobs).WithProfiles(profiles)
	builder := resume.NewBuilder(store, resume.NewClient(cfg), blobs)

	// Handlers
	authHandler := handlers.NewAuthHandler(store, profiles, jwtService, googleAuthService)
	sessionHandler := handlers.NewSessionHandler(sessions, menu, profiles, jobService)
	jobsHandler := handlers.NewJobsHandler(jobService)
	applicationsHandler := handlers.NewApplicationsHandler(applicationService, builder)
	resumeHandler := handlers.NewResumeHandler(builder)

	// MCP server with tool registry
	toolRegistry := tools.NewToolRegistry()
	toolRegistry.Register(tools.NewSearchJobsTool(jobService))
	toolRegistry.Register(tools.NewNormalizeResumeTool())
	toolRegistry.Register(tools.NewSuggestDescriptionTool(jobService))
	mcpServer := mcp.NewServer(toolRegistry, handlers.Version)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handlers.HealthCheck)

	api := router.Group("/api")
	registerRoutes(api, routes{
		jwt:          jwtService,
		sessions:     sessions,
		auth:         authHandler,
		session:      sessionHandler,
		jobs:         jobsHandler,
		applications: applicationsHandler,
		resume:       resumeHandler,
		mcp:          mcpServer,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s...", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}

// openStore opens the configured backend. The returned profile store is nil
// when Firestore could not be reached.
func openStore(ctx context.Context, cfg *config.Config) (storage.Store, storage.ProfileStore) {
	switch cfg.StoreBackend {
	case config.StoreSQLite:
		log.Printf("Opening sqlite store at %s...", cfg.SQLitePath)
		sqliteStore, err := storage.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to open sqlite store: %v", err)
		}
		return sqliteStore, sqliteStore
	case config.StoreMemory:
		log.Println("Using in-memory store")
		memoryStore := storage.NewMemoryStore()
		return memoryStore, memoryStore
	default:
		log.Println("Initializing Firestore client...")
		firestoreClient, err := storage.NewFirestoreClient(ctx, cfg)
		if err != nil {
			log.Printf("Failed to initialize Firestore client, profiles unavailable: %v", err)
			return storage.NewMemoryStore(), nil
		}
		log.Println("Firestore client initialized successfully")
		return firestoreClient, firestoreClient
	}
}

type routes struct {
	jwt          *auth.JWTService
	sessions     *session.Manager
	auth         *handlers.AuthHandler
	session      *handlers.SessionHandler
	jobs         *handlers.JobsHandler
	applications *handlers.ApplicationsHandler
	resume       *handlers.ResumeHandler
	mcp          *mcp.Server
}

func registerRoutes(api *gin.RouterGroup, r routes) {
	authenticated := auth.AuthMiddleware(r.jwt)
	anyRole := session.RequireRole(r.sessions)
	candidate := session.RequireRole(r.sessions, models.RoleCandidate)
	staff := session.RequireRole(r.sessions, models.RoleRecruiter, models.RoleAdmin)
	admin := session.RequireRole(r.sessions, models.RoleAdmin)

	// Auth endpoints (public)
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", r.auth.Register)
		authGroup.POST("/login", r.auth.Login)
		authGroup.POST("/google", r.auth.GoogleLogin)
		authGroup.POST("/refresh", authenticated, r.auth.Refresh)
	}

	// Navigation answers anonymous callers with an empty menu
	api.GET("/navigation", auth.OptionalAuthMiddleware(r.jwt), r.session.Navigation)

	sessionGroup := api.Group("")
	sessionGroup.Use(authenticated)
	{
		sessionGroup.GET("/session", r.session.GetSession)
		sessionGroup.POST("/session/logout", r.session.Logout)
		sessionGroup.GET("/navigation/access", anyRole, r.session.Access)
		sessionGroup.GET("/profile", anyRole, r.session.GetProfile)
		sessionGroup.PUT("/profile", anyRole, r.session.UpdateProfile)
	}

	candidateGroup := api.Group("")
	candidateGroup.Use(authenticated, candidate)
	{
		candidateGroup.GET("/jobs", r.jobs.ListJobs)
		candidateGroup.GET("/jobs/recent", r.jobs.RecentJobs)
		candidateGroup.GET("/jobs/:jobId", r.jobs.GetJob)
		candidateGroup.GET("/jobs/:jobId/application", r.applications.GetApplication)
		candidateGroup.PUT("/jobs/:jobId/application", r.applications.SaveForLater)
		candidateGroup.POST("/jobs/:jobId/application", r.applications.Submit)
		candidateGroup.GET("/applications", r.applications.ListMine)

		resumeGroup := candidateGroup.Group("/resume")
		resumeGroup.GET("", r.resume.GetResume)
		resumeGroup.PUT("", r.resume.UpdateResume)
		resumeGroup.POST("/undo", r.resume.Undo)
		resumeGroup.POST("/redo", r.resume.Redo)
		resumeGroup.POST("/import", r.resume.Import)
		resumeGroup.POST("/enhance", r.resume.Enhance)
		resumeGroup.POST("/elevator-pitch", r.resume.ElevatorPitch)
		resumeGroup.POST("/export/:format", r.resume.Export)
		resumeGroup.POST("/pitch-video", r.resume.UploadPitchVideo)
	}

	staffGroup := api.Group("")
	staffGroup.Use(authenticated, staff)
	{
		staffGroup.GET("/requisitions", r.jobs.ListRequisitions)
		staffGroup.POST("/requisitions", r.jobs.CreateRequisition)
		staffGroup.POST("/requisitions/suggestions", r.jobs.Suggest)
		staffGroup.POST("/requisitions/logo", r.jobs.UploadLogo)
		staffGroup.GET("/requisitions/:jobId", r.jobs.GetRequisition)
		staffGroup.PUT("/requisitions/:jobId", r.jobs.UpdateRequisition)
		staffGroup.DELETE("/requisitions/:jobId", r.jobs.DeleteRequisition)
		staffGroup.GET("/candidates", r.applications.ListCandidates)
		staffGroup.PUT("/candidates/:applicantId/applications/:applicationId/status", r.applications.UpdateStatus)
	}

	// Agent tools are offered by session role
	toolsGroup := api.Group("")
	toolsGroup.Use(authenticated, anyRole)
	r.mcp.RegisterRoutes(toolsGroup)

	adminGroup := api.Group("/admin")
	adminGroup.Use(authenticated, admin)
	{
		adminGroup.PUT("/users/:userId/role", r.session.UpdateRole)
	}
}
