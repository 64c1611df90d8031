package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rsawada/project-management-api/internal/middleware"
	"github.com/rsawada/project-management-api/internal/token"
)

// SetupRouter builds the Gin engine with all API routes registered.
func SetupRouter(
	issuer *token.Issuer,
	authHandler *AuthHandler,
	userHandler *UserHandler,
	projectHandler *ProjectHandler,
	taskHandler *TaskHandler,
	commentHandler *CommentHandler,
	membershipHandler *MembershipHandler,
) *gin.Engine {
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Management API is running",
		})
	})

	api := r.Group("/api")
	{
		// Auth routes (public except /me)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/verify-otp", authHandler.VerifyOTP)
			auth.POST("/token/refresh", authHandler.RefreshToken)
			auth.GET("/me", middleware.RequireAuth(issuer), authHandler.GetCurrentUser)
		}

		// User routes (protected, read only)
		users := api.Group("/users")
		users.Use(middleware.RequireAuth(issuer))
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/:id", userHandler.GetUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth(issuer))
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(issuer))
		{
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
		}

		// Comment routes (protected)
		comments := api.Group("/comments")
		comments.Use(middleware.RequireAuth(issuer))
		{
			comments.POST("", commentHandler.CreateComment)
			comments.GET("", commentHandler.ListComments)
			comments.GET("/:id", commentHandler.GetComment)
			comments.PATCH("/:id", commentHandler.UpdateComment)
			comments.DELETE("/:id", commentHandler.DeleteComment)
		}

		// Membership routes (protected), addressed by (project, user)
		memberships := api.Group("/memberships")
		memberships.Use(middleware.RequireAuth(issuer))
		{
			memberships.POST("", membershipHandler.CreateMembership)
			memberships.GET("", membershipHandler.ListMemberships)
			memberships.GET("/:project_id/:user_id", membershipHandler.GetMembership)
			memberships.PATCH("/:project_id/:user_id", membershipHandler.UpdateMembership)
			memberships.DELETE("/:project_id/:user_id", membershipHandler.DeleteMembership)
		}
	}

	return r
}
