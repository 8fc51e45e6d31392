package router

import (
	"context"

	"resume-match-go/internal/api/handler"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, resumeHandler *handler.ResumeHandler) {
	api := h.Group("/api/v1")

	// 健康检查
	api.GET("/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})

	api.POST("/resumes/upload", resumeHandler.HandleUpload)
	api.GET("/resumes", resumeHandler.HandleList)
	api.POST("/resumes/match", resumeHandler.HandleMatch)
	api.DELETE("/resumes/:name", resumeHandler.HandleDelete)
	api.GET("/resumes/:name/metadata", resumeHandler.HandleGetMetadata)
	api.PUT("/resumes/:name/metadata", resumeHandler.HandleSetMetadata)
}
