package handler

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/service"

	"github.com/gin-gonic/gin"
)

type DraftHandler struct {
	draftSvc service.DraftService
}

func NewDraftHandler(draftSvc service.DraftService) *DraftHandler {
	return &DraftHandler{draftSvc: draftSvc}
}

func (s *DraftHandler) Create(c *gin.Context) {
	var req dto.DraftBaseDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.draftSvc.Create(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *DraftHandler) Get(c *gin.Context) {
	draft, err := s.draftSvc.Get(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *DraftHandler) List(c *gin.Context) {
	drafts, err := s.draftSvc.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, drafts)
}

func (s *DraftHandler) Update(c *gin.Context) {
	var req dto.DraftBaseDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.draftSvc.Update(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *DraftHandler) Delete(c *gin.Context) {
	err := s.draftSvc.Delete(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}
