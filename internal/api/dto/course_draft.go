package dto

// CourseDraftBaseDTO 课程草稿创建/更新的公共字段
type CourseDraftBaseDTO struct {
	Title   string   `json:"title" binding:"required,max=255"`
	Summary string   `json:"summary" binding:"max=1024"`
	Topics  []string `json:"topics"`
	Image   string   `json:"image" binding:"omitempty,url"`
	Price   int      `json:"price" binding:"gte=0"`
}

// DraftLessonAddDTO 向课程草稿添加一课，draftId/resourceId 二选一
type DraftLessonAddDTO struct {
	Index      int     `json:"index" binding:"gte=0"`
	DraftID    *string `json:"draftId"`
	ResourceID *string `json:"resourceId"`
}

// DraftLessonReorderDTO 课时重排
type DraftLessonReorderDTO struct {
	LessonIDs []string `json:"lessonIds" binding:"required,min=1"`
}
