package api

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine, h *Handler) {
	api := r.Group("/api")
	{
		api.GET("/votes", h.GetVotes)
		api.GET("/comments", h.GetComments)
		api.GET("/session", h.GetSession)
		api.GET("/stream", h.Stream)

		api.POST("/vote", h.Vote)
		api.POST("/comment", h.ProvideComment)
		api.POST("/comment/skip", h.SkipComment)
		api.POST("/submit", h.ConfirmSubmit)
	}
}
