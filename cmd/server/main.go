package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/config"
	"github.com/rsawada/project-management-api/internal/database"
	"github.com/rsawada/project-management-api/internal/handlers"
	"github.com/rsawada/project-management-api/internal/mailer"
	"github.com/rsawada/project-management-api/internal/repository"
	"github.com/rsawada/project-management-api/internal/services"
	"github.com/rsawada/project-management-api/internal/token"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	db := database.GetDB()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	otpRepo := repository.NewOTPRepository(db)

	// OTP codes are delivered over SMTP in release mode; in development they
	// are written to the server log instead.
	var sender mailer.Sender
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg)
	} else {
		sender = &mailer.LogSender{}
	}

	issuer := token.NewIssuer([]byte(cfg.JWTSecret), cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Initialize services
	authService := services.NewAuthService(userRepo, otpRepo, sender, issuer)
	projectService := services.NewProjectService(projectRepo)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo)
	commentService := services.NewCommentService(commentRepo, taskRepo)
	membershipService := services.NewMembershipService(projectRepo, userRepo)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userRepo)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	commentHandler := handlers.NewCommentHandler(commentService)
	membershipHandler := handlers.NewMembershipHandler(membershipService)

	// Periodically purge expired OTP rows past the retention window.
	go purgeExpiredOTPs(otpRepo, cfg.OTPRetention, cfg.OTPPurgePeriod)

	r := handlers.SetupRouter(
		issuer,
		authHandler,
		userHandler,
		projectHandler,
		taskHandler,
		commentHandler,
		membershipHandler,
	)

	// Start server
	log.Println("Server starting on :8080")
	if err := r.Run(":8080"); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func purgeExpiredOTPs(otpRepo repository.OTPRepository, retention, period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for range ticker.C {
		cutoff := time.Now().Add(-retention)
		purged, err := otpRepo.PurgeExpired(cutoff)
		if err != nil {
			log.Printf("Failed to purge expired OTPs: %v", err)
			continue
		}
		if purged > 0 {
			log.Printf("Purged %d expired OTP rows", purged)
		}
	}
}
