package nostr

import (
	"fmt"
	"strconv"

	"github.com/nbd-wtf/go-nostr"
)

// ResourceContent 服务端代签资源事件所需的内容字段
type ResourceContent struct {
	ID       string
	Type     string // document | video
	Title    string
	Summary  string
	Image    string
	Price    int
	Content  string
	VideoURL string
	Topics   []string
}

// CourseContent 服务端代签课程事件所需的内容字段
type CourseContent struct {
	ID      string
	Title   string
	Summary string
	Image   string
	Price   int
	Topics  []string
	// LessonRefs 每课一条 a tag 引用：kind:pubkey:d-identifier
	LessonRefs []string
}

// SignResourceEvent 用托管私钥构造并签名资源事件，d tag 必须等于草稿 ID
func SignResourceEvent(privkeyHex string, c *ResourceContent) (*nostr.Event, error) {
	kind := KindLongForm
	if c.Type == "video" {
		kind = KindVideo
	}

	tags := nostr.Tags{
		nostr.Tag{"d", c.ID},
		nostr.Tag{"title", c.Title},
		nostr.Tag{"summary", c.Summary},
		nostr.Tag{"price", strconv.Itoa(c.Price)},
	}
	if c.Image != "" {
		tags = append(tags, nostr.Tag{"image", c.Image})
	}
	if c.VideoURL != "" {
		tags = append(tags, nostr.Tag{"url", c.VideoURL})
	}
	for _, topic := range c.Topics {
		tags = append(tags, nostr.Tag{"t", topic})
	}

	evt := &nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      kind,
		Tags:      tags,
		Content:   c.Content,
	}

	if err := evt.Sign(privkeyHex); err != nil {
		return nil, fmt.Errorf("failed to sign resource event: %w", err)
	}
	return evt, nil
}

// SignCourseEvent 用托管私钥构造并签名课程事件
func SignCourseEvent(privkeyHex string, c *CourseContent) (*nostr.Event, error) {
	tags := nostr.Tags{
		nostr.Tag{"d", c.ID},
		nostr.Tag{"name", c.Title},
		nostr.Tag{"about", c.Summary},
		nostr.Tag{"price", strconv.Itoa(c.Price)},
	}
	if c.Image != "" {
		tags = append(tags, nostr.Tag{"image", c.Image})
	}
	for _, topic := range c.Topics {
		tags = append(tags, nostr.Tag{"t", topic})
	}
	for _, ref := range c.LessonRefs {
		tags = append(tags, nostr.Tag{"a", ref})
	}

	evt := &nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      KindCourseList,
		Tags:      tags,
		Content:   c.Summary,
	}

	if err := evt.Sign(privkeyHex); err != nil {
		return nil, fmt.Errorf("failed to sign course event: %w", err)
	}
	return evt, nil
}
