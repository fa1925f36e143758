package api

import (
	"Atheneum/internal/api/handler"
)

// HandlersGroup 汇总路由需要的全部 handler
type HandlersGroup struct {
	UserHandler        *handler.UserHandler
	DraftHandler       *handler.DraftHandler
	CourseDraftHandler *handler.CourseDraftHandler
	PublishHandler     *handler.PublishHandler
	ViewHandler        *handler.ViewHandler
	MediaHandler       *handler.MediaHandler
}
