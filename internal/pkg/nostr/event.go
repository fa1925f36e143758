package nostr

import (
	"github.com/nbd-wtf/go-nostr"
)

const (
	// KindLongForm 长文内容（NIP-23）
	KindLongForm = 30023
	// KindVideo 视频内容
	KindVideo = 34235
	// KindCourseList 课程课时列表（NIP-51 curation set）
	KindCourseList = 30004
)

// FirstTagValue 取第一个名为 name 的 tag 的首个值。
// 同名 tag 可以合法出现多次且顺序有意义，保持 first-match-wins。
func FirstTagValue(evt *nostr.Event, name string) string {
	for _, tag := range evt.Tags {
		if len(tag) >= 2 && tag[0] == name {
			return tag[1]
		}
	}
	return ""
}

// DTag 取事件的 d tag，发布校验用它和草稿 ID 绑定
func DTag(evt *nostr.Event) string {
	return FirstTagValue(evt, "d")
}

// Verify 校验事件 ID 与签名
func Verify(evt *nostr.Event) bool {
	if evt.GetID() != evt.ID {
		return false
	}
	ok, err := evt.CheckSignature()
	return err == nil && ok
}
