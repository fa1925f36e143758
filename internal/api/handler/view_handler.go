package handler

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/service"
	"time"

	"github.com/gin-gonic/gin"
)

type ViewHandler struct {
	viewSvc service.ViewService
}

func NewViewHandler(viewSvc service.ViewService) *ViewHandler {
	return &ViewHandler{viewSvc: viewSvc}
}

// Increment 记一次阅读。GET 和 POST 都接，埋点像素和正经客户端各取所需。
func (s *ViewHandler) Increment(c *gin.Context) {
	var req dto.ViewIncrementDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	key := req.Key
	if key == "" {
		var err error
		if key, err = s.viewSvc.BuildKey(req.NS, req.ID); err != nil {
			response.Error(c, err)
			return
		}
	}

	count, err := s.viewSvc.RecordView(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ViewCountDTO{Key: key, Count: count})
}

func (s *ViewHandler) GetCount(c *gin.Context) {
	var req dto.ViewIncrementDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	key := req.Key
	if key == "" {
		var err error
		if key, err = s.viewSvc.BuildKey(req.NS, req.ID); err != nil {
			response.Error(c, err)
			return
		}
	}

	count, err := s.viewSvc.GetCount(c.Request.Context(), key)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ViewCountDTO{Key: key, Count: count})
}

func (s *ViewHandler) GetDaily(c *gin.Context) {
	var req dto.ViewIncrementDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}

	key := req.Key
	if key == "" {
		var err error
		if key, err = s.viewSvc.BuildKey(req.NS, req.ID); err != nil {
			response.Error(c, err)
			return
		}
	}

	days := 30
	if v := c.Query("days"); v == "7" {
		days = 7
	}
	to := time.Now().UTC().Truncate(24 * time.Hour)
	from := to.AddDate(0, 0, -days+1)

	counts, err := s.viewSvc.GetDaily(c.Request.Context(), key, from, to)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, counts)
}

// Flush 手动触发一轮冲账；?status=1 时只报遥测不执行
func (s *ViewHandler) Flush(c *gin.Context) {
	if c.Query("status") == "1" {
		status, err := s.viewSvc.Status(c.Request.Context())
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, status)
		return
	}

	result, err := s.viewSvc.RunFlushWithTelemetry(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
