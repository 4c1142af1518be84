package handlers

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/linkedin-agent/internal/auth"
)

// Router groups everything the HTTP surface needs.
type Router struct {
	Jobs        *JobHandler
	Connections *ConnectionHandler
	Users       *UserHandler
	Messages    *MessageHandler
	Auth        auth.UserLookup
	// AllowOrigins are the CORS origins; "*" or empty allows any.
	AllowOrigins []string
}

// Engine builds the gin engine with every /api/v1 route.
func (r Router) Engine() *gin.Engine {
	e := gin.New()
	e.Use(gin.Logger(), gin.Recovery())

	config := cors.DefaultConfig()
	if len(r.AllowOrigins) == 0 || (len(r.AllowOrigins) == 1 && r.AllowOrigins[0] == "*") {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = r.AllowOrigins
	}
	config.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	e.Use(cors.New(config))

	api := e.Group("/api/v1")
	api.GET("/health", HealthCheck)

	// Account
	api.POST("/auth/register", r.Users.Register)
	api.POST("/auth/login", r.Users.Login)

	// Message generation
	api.POST("/profiles", r.Messages.UpsertProfile)
	api.GET("/profiles/by-email", r.Messages.ProfileByEmail)
	api.GET("/profiles/:id", r.Messages.GetProfile)
	api.POST("/generate-message", r.Messages.Generate)
	api.POST("/generate-messages/batch", r.Messages.GenerateBatch)
	api.POST("/connections/bulk", r.Messages.BulkConnections)
	api.GET("/usage/:profile_id", r.Messages.Usage)

	// Job tracker
	tracked := api.Group("", auth.Middleware(r.Auth))
	{
		tracked.GET("/user/profile", r.Users.Profile)
		tracked.PUT("/user/settings", r.Users.UpdateSettings)

		tracked.POST("/jobs", r.Jobs.SaveJobs)
		tracked.GET("/jobs", r.Jobs.ListJobs)
		tracked.GET("/jobs/by-url", r.Jobs.ByURL)
		tracked.PUT("/jobs/status", r.Jobs.UpdateStatus)
		tracked.GET("/jobs/:id", r.Jobs.GetJob)
		tracked.PUT("/jobs/:id", r.Jobs.UpdateJob)
		tracked.DELETE("/jobs/:id", r.Jobs.DeleteJob)

		tracked.GET("/connections", r.Connections.List)
		tracked.POST("/connections", r.Connections.Create)
		tracked.PUT("/connections/:id", r.Connections.UpdateStatus)

		tracked.GET("/stats", r.Jobs.Stats)
		tracked.GET("/activity", r.Jobs.Activity)
		tracked.POST("/ai/analyze", r.Jobs.Analyze)
	}
	return e
}
