package router

import (
	"github.com/gin-gonic/gin"

	"encore-ai/internal/handler"
)

func SetupRouter(r *gin.Engine) *handler.Handler {
	hdl := handler.NewHandler()

	api := r.Group("/api")
	{
		api.POST("/render/task", hdl.StartRenderTask)
		api.GET("/render/task", hdl.GetRenderTask)
		api.GET("/render/history", hdl.GetTaskHistory)
		api.DELETE("/render/task/:taskId", hdl.DeleteTask)
		api.POST("/render/task/:taskId/retry", hdl.RetryTask)
		api.GET("/render/excerpts", hdl.SuggestExcerpts)
		api.GET("/file/*filepath", hdl.DownloadFile)
		api.HEAD("/file/*filepath", hdl.DownloadFile)
		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}

	r.GET("/ws/progress", hdl.ProgressSocket)

	return hdl
}
