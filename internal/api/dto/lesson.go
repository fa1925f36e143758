package dto

const (
	LessonStatePublished   = "published"
	LessonStateDraft       = "draft"
	LessonStateUnavailable = "unavailable"
)

// ResolvedLessonDTO 解析后的课时视图。
// State 是显式判别字段；Unavailable 时除 ID/Index/NoteError 外无可用数据，
// 调用方对该课时展示"内容不可用"而不中断整页渲染。
type ResolvedLessonDTO struct {
	ID         string  `json:"id"`
	Index      int     `json:"index"`
	State      string  `json:"state"`
	DraftID    *string `json:"draftId,omitempty"`
	ResourceID *string `json:"resourceId,omitempty"`

	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`
	Image   string `json:"image,omitempty"`
	Price   int    `json:"price"`

	// Locked 付费且未解锁时为 true，此时不下发 Content
	Locked  bool   `json:"locked"`
	Content string `json:"content,omitempty"`

	// NoteError 外部事件拉取失败时透传给调用方，不阻塞本地兜底数据
	NoteError string `json:"noteError,omitempty"`
}

// CourseValidationDTO 课程发布前校验报告
type CourseValidationDTO struct {
	CourseDraftID  string               `json:"courseDraftId"`
	Publishable    bool                 `json:"publishable"`
	LessonCount    int                  `json:"lessonCount"`
	Lessons        []*ResolvedLessonDTO `json:"lessons"`
	UnpublishedIDs []string             `json:"unpublishedIds,omitempty"`
	Problems       []string             `json:"problems,omitempty"`
}
