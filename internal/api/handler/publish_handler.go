package handler

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/service"

	"github.com/gin-gonic/gin"
)

type PublishHandler struct {
	publishSvc   service.PublishService
	republishSvc service.RepublishService
}

func NewPublishHandler(publishSvc service.PublishService, republishSvc service.RepublishService) *PublishHandler {
	return &PublishHandler{
		publishSvc:   publishSvc,
		republishSvc: republishSvc,
	}
}

func (s *PublishHandler) PublishResource(c *gin.Context) {
	var req dto.PublishRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.publishSvc.PublishResource(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PublishHandler) PublishCourse(c *gin.Context) {
	var req dto.PublishRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.publishSvc.PublishCourse(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PublishHandler) RepublishResource(c *gin.Context) {
	var req dto.RepublishRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.republishSvc.RepublishResource(c.Request.Context(), c.Param("resource_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

func (s *PublishHandler) RepublishCourse(c *gin.Context) {
	var req dto.RepublishRequestDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	result, err := s.republishSvc.RepublishCourse(c.Request.Context(), c.Param("course_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
