package dto

import (
	"Atheneum/internal/model"

	"github.com/nbd-wtf/go-nostr"
)

// PublishRequestDTO 发布请求。
// SignedEvent 给出走客户端签名流程；缺省走服务端托管签名，
// 此时 relay 列表按 Relays > RelaySet > 默认集的顺序解析。
type PublishRequestDTO struct {
	SignedEvent *nostr.Event `json:"signedEvent"`
	Relays      []string     `json:"relays"`
	RelaySet    string       `json:"relaySet"`
	// PublishedLessonEvents 课程发布时客户端已先行签名发布的课时事件
	PublishedLessonEvents []*nostr.Event `json:"publishedLessonEvents"`
	SubmissionRequired    bool           `json:"submissionRequired"`
}

// RepublishRequestDTO 重发布请求，SignedEvent 与服务端签名二选一
type RepublishRequestDTO struct {
	SignedEvent *nostr.Event `json:"signedEvent"`
	ServerSign  bool         `json:"serverSign"`
	Relays      []string     `json:"relays"`
	RelaySet    string       `json:"relaySet"`
	Price       *int         `json:"price"`
}

// PublishResourceResponseDTO 资源发布返回
type PublishResourceResponseDTO struct {
	Resource        *model.Resource `json:"resource"`
	Event           *nostr.Event    `json:"event"`
	PublishedRelays []string        `json:"publishedRelays"`
}

// PublishCourseResponseDTO 课程发布返回
type PublishCourseResponseDTO struct {
	Course                *model.Course   `json:"course"`
	Lessons               []*model.Lesson `json:"lessons"`
	Event                 *nostr.Event    `json:"event"`
	PublishedRelays       []string        `json:"publishedRelays"`
	PublishedLessonEvents []*nostr.Event  `json:"publishedLessonEvents,omitempty"`
}

// RepublishResponseDTO 重发布返回
type RepublishResponseDTO struct {
	NoteID          string       `json:"noteId"`
	Event           *nostr.Event `json:"event"`
	PublishedRelays []string     `json:"publishedRelays"`
}
