package routes

import (
	"log/slog"

	"delegation-api/internal/handlers"
	"delegation-api/internal/logging"
	"delegation-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	handlers.RegisterValidators()

	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery())
	ginRouter.Use(logging.GinMiddleware(slog.Default()))

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Delegation API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
		api.POST("/staff", handlers.CreateStaff)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)

		// Task endpoints
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.GET("/tasks/:id", handlers.GetAssignmentChain)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		protectedRoutes.GET("/tasks/:id/events", handlers.GetTaskEvents)
		protectedRoutes.PATCH("/tasks/:id/progress", handlers.UpdateTaskProgress)
		protectedRoutes.PATCH("/tasks/:id/status", handlers.UpdateTaskStatus)
		protectedRoutes.POST("/tasks/:id/deadline", handlers.ExtendDeadline)
		protectedRoutes.POST("/tasks/:id/executors", handlers.AddTaskExecutors)
		protectedRoutes.GET("/tasks/:id/actions", handlers.GetTaskActions)
		protectedRoutes.GET("/tasks/:id/comments", handlers.GetTaskComments)
		protectedRoutes.POST("/tasks/:id/comments", handlers.AddTaskComment)

		// Action endpoints
		protectedRoutes.POST("/actions", handlers.CreateAction)
		protectedRoutes.DELETE("/actions/:id", handlers.DeleteAction)
		protectedRoutes.PATCH("/actions/:id/status", handlers.UpdateActionStatus)

		// Personal work of the authenticated staff member
		protectedRoutes.GET("/me/plans", handlers.GetMyPlans)
		protectedRoutes.GET("/me/tasks", handlers.GetMyTasks)
		protectedRoutes.GET("/me/actions", handlers.GetMyActions)

		// Plan endpoints
		protectedRoutes.POST("/plans", handlers.CreatePlan)
		protectedRoutes.GET("/plans/:id", handlers.GetPlan)
		protectedRoutes.PUT("/plans/:id", handlers.UpdatePlan)
		protectedRoutes.DELETE("/plans/:id", handlers.DeletePlan)
		protectedRoutes.GET("/plans/:id/tasks", handlers.GetPlanTasks)
		protectedRoutes.GET("/plans/:id/tasks/export", handlers.ExportPlanTasks)
		protectedRoutes.GET("/plans/:id/units/:unitId/tasks", handlers.GetPlanUnitTasks)

		// Unit endpoints
		protectedRoutes.POST("/units", handlers.CreateUnit)
		protectedRoutes.GET("/units", handlers.GetUnits)
		protectedRoutes.DELETE("/units/:id", handlers.DeleteUnit)
		protectedRoutes.GET("/units/:id/structure", handlers.GetUnitStructure)
		protectedRoutes.GET("/units/:id/children", handlers.GetUnitChildren)
		protectedRoutes.GET("/units/:id/staff", handlers.GetUnitStaff)
		protectedRoutes.POST("/units/:id/staff", handlers.AddUnitStaff)
		protectedRoutes.GET("/units/:id/all-staff", handlers.GetAllStaffUnderUnit)
		protectedRoutes.GET("/units/:id/plans", handlers.GetUnitPlans)
		protectedRoutes.GET("/units/:id/participating-plans", handlers.GetParticipatingPlans)

		// Staff endpoints
		protectedRoutes.GET("/staff", handlers.GetAllStaff)
		protectedRoutes.PUT("/staff/:id", handlers.UpdateStaff)
		protectedRoutes.DELETE("/staff/:id", handlers.DeleteStaff)
	}

	return ginRouter
}
