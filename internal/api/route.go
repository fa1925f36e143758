package api

import (
	"Atheneum/internal/api/middleware"
	"Atheneum/internal/pkg/logger"
	"net/http"

	"github.com/gin-gonic/gin"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		userGroup := apiGroup.Group("/user")
		{
			userGroup.POST("/register", group.UserHandler.Register)
			userGroup.POST("/login", group.UserHandler.Login)

			authGroup := userGroup.Group("")
			authGroup.Use(middleware.AuthMiddleware())
			{
				authGroup.POST("/logout", group.UserHandler.Logout)
			}
		}

		draftGroup := apiGroup.Group("/drafts")
		{
			draftGroup.Use(middleware.AuthMiddleware())
			{
				draftGroup.POST("", group.DraftHandler.Create)
				draftGroup.GET("", group.DraftHandler.List)
				draftGroup.GET("/:draft_id", group.DraftHandler.Get)
				draftGroup.PUT("/:draft_id", group.DraftHandler.Update)
				draftGroup.DELETE("/:draft_id", group.DraftHandler.Delete)
				draftGroup.POST("/:draft_id/publish", group.PublishHandler.PublishResource)
			}
		}

		courseDraftGroup := apiGroup.Group("/course-drafts")
		{
			courseDraftGroup.Use(middleware.AuthMiddleware())
			{
				courseDraftGroup.POST("", group.CourseDraftHandler.Create)
				courseDraftGroup.GET("", group.CourseDraftHandler.List)
				courseDraftGroup.GET("/:draft_id", group.CourseDraftHandler.Get)
				courseDraftGroup.PUT("/:draft_id", group.CourseDraftHandler.Update)
				courseDraftGroup.DELETE("/:draft_id", group.CourseDraftHandler.Delete)
				courseDraftGroup.POST("/:draft_id/lessons", group.CourseDraftHandler.AddLesson)
				courseDraftGroup.DELETE("/:draft_id/lessons/:lesson_id", group.CourseDraftHandler.RemoveLesson)
				courseDraftGroup.PUT("/:draft_id/lessons/order", group.CourseDraftHandler.ReorderLessons)
				courseDraftGroup.GET("/:draft_id/validate", group.CourseDraftHandler.Validate)
				courseDraftGroup.POST("/:draft_id/publish", group.PublishHandler.PublishCourse)
			}
		}

		publishedGroup := apiGroup.Group("")
		{
			publishedGroup.Use(middleware.AuthMiddleware())
			{
				publishedGroup.POST("/resources/:resource_id/republish", group.PublishHandler.RepublishResource)
				publishedGroup.POST("/courses/:course_id/republish", group.PublishHandler.RepublishCourse)
			}
		}

		mediaGroup := apiGroup.Group("/media")
		{
			mediaGroup.Use(middleware.AuthMiddleware())
			{
				mediaGroup.POST("/image", group.MediaHandler.UploadImage)
			}
		}

		viewGroup := apiGroup.Group("/views")
		{
			countGroup := viewGroup.Group("")
			countGroup.Use(middleware.AuthOptionalMiddleware(), middleware.ViewRateLimitMiddleware())
			{
				countGroup.GET("/increment", group.ViewHandler.Increment)
				countGroup.POST("/increment", group.ViewHandler.Increment)
			}

			viewGroup.GET("/count", group.ViewHandler.GetCount)
			viewGroup.GET("/daily", group.ViewHandler.GetDaily)

			flushGroup := viewGroup.Group("")
			flushGroup.Use(middleware.FlushAuthMiddleware())
			{
				flushGroup.POST("/flush", group.ViewHandler.Flush)
				flushGroup.GET("/flush", group.ViewHandler.Flush)
			}
		}
	}

	return r
}
