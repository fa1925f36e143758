package handler

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/pkg/response"
	"Atheneum/internal/service"

	"github.com/gin-gonic/gin"
)

type CourseDraftHandler struct {
	courseDraftSvc service.CourseDraftService
	lessonSvc      service.LessonService
}

func NewCourseDraftHandler(courseDraftSvc service.CourseDraftService, lessonSvc service.LessonService) *CourseDraftHandler {
	return &CourseDraftHandler{
		courseDraftSvc: courseDraftSvc,
		lessonSvc:      lessonSvc,
	}
}

func (s *CourseDraftHandler) Create(c *gin.Context) {
	var req dto.CourseDraftBaseDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.courseDraftSvc.Create(c.Request.Context(), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

// Get 返回课程草稿，课时展开为解析后的视图。读之前先跑一轮指向自愈。
func (s *CourseDraftHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	draftID := c.Param("draft_id")
	userID := c.GetString("user_id")

	if err := s.lessonSvc.SyncPublishedLessons(ctx, draftID); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.courseDraftSvc.Get(ctx, draftID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := s.lessonSvc.ResolveLessons(ctx, draft, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"draft": draft, "lessons": lessons})
}

func (s *CourseDraftHandler) List(c *gin.Context) {
	drafts, err := s.courseDraftSvc.List(c.Request.Context(), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, drafts)
}

func (s *CourseDraftHandler) Update(c *gin.Context) {
	var req dto.CourseDraftBaseDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	draft, err := s.courseDraftSvc.Update(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, draft)
}

func (s *CourseDraftHandler) Delete(c *gin.Context) {
	err := s.courseDraftSvc.Delete(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CourseDraftHandler) AddLesson(c *gin.Context) {
	var req dto.DraftLessonAddDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	lesson, err := s.courseDraftSvc.AddLesson(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, lesson)
}

func (s *CourseDraftHandler) RemoveLesson(c *gin.Context) {
	err := s.courseDraftSvc.RemoveLesson(c.Request.Context(), c.Param("draft_id"), c.Param("lesson_id"), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

func (s *CourseDraftHandler) ReorderLessons(c *gin.Context) {
	var req dto.DraftLessonReorderDTO
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, err)
		return
	}
	err := s.courseDraftSvc.ReorderLessons(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"), &req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Validate 发布前校验，内部先执行课时自愈再出报告
func (s *CourseDraftHandler) Validate(c *gin.Context) {
	report, err := s.lessonSvc.ValidateCourse(c.Request.Context(), c.Param("draft_id"), c.GetString("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}
