package nostr

import (
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 同名 tag 重复时按第一个算
func TestFirstTagValueFirstMatchWins(t *testing.T) {
	evt := &nostr.Event{
		Tags: nostr.Tags{
			{"t", "golang"},
			{"d", "first"},
			{"d", "second"},
			{"title"},
		},
	}

	assert.Equal(t, "first", FirstTagValue(evt, "d"))
	assert.Equal(t, "first", DTag(evt))
	assert.Equal(t, "golang", FirstTagValue(evt, "t"))
	// 值位缺失的 tag 跳过
	assert.Empty(t, FirstTagValue(evt, "title"))
	assert.Empty(t, FirstTagValue(evt, "missing"))
}

func TestVerify(t *testing.T) {
	sk := nostr.GeneratePrivateKey()
	evt := &nostr.Event{
		CreatedAt: nostr.Now(),
		Kind:      KindLongForm,
		Tags:      nostr.Tags{{"d", "some-id"}},
		Content:   "hello",
	}
	require.NoError(t, evt.Sign(sk))
	assert.True(t, Verify(evt))

	// 内容篡改后 ID 对不上
	evt.Content = "tampered"
	assert.False(t, Verify(evt))
}

func TestSignResourceEvent(t *testing.T) {
	sk := nostr.GeneratePrivateKey()

	evt, err := SignResourceEvent(sk, &ResourceContent{
		ID:      "d1",
		Type:    "document",
		Title:   "intro",
		Summary: "a summary",
		Price:   10,
		Content: "body",
		Topics:  []string{"golang", "nostr"},
	})
	require.NoError(t, err)

	assert.Equal(t, KindLongForm, evt.Kind)
	assert.Equal(t, "d1", DTag(evt))
	assert.Equal(t, "intro", FirstTagValue(evt, "title"))
	assert.Equal(t, "10", FirstTagValue(evt, "price"))
	assert.True(t, Verify(evt))

	video, err := SignResourceEvent(sk, &ResourceContent{
		ID:       "v1",
		Type:     "video",
		Title:    "clip",
		VideoURL: "https://cdn.example/v.mp4",
	})
	require.NoError(t, err)
	assert.Equal(t, KindVideo, video.Kind)
	assert.Equal(t, "https://cdn.example/v.mp4", FirstTagValue(video, "url"))
}

func TestSignCourseEvent(t *testing.T) {
	sk := nostr.GeneratePrivateKey()

	evt, err := SignCourseEvent(sk, &CourseContent{
		ID:         "c1",
		Title:      "course",
		Summary:    "about",
		LessonRefs: []string{"30023:pk:r1", "34235:pk:r2"},
	})
	require.NoError(t, err)

	assert.Equal(t, KindCourseList, evt.Kind)
	assert.Equal(t, "c1", DTag(evt))
	assert.True(t, Verify(evt))

	var refs []string
	for _, tag := range evt.Tags {
		if len(tag) >= 2 && tag[0] == "a" {
			refs = append(refs, tag[1])
		}
	}
	assert.Equal(t, []string{"30023:pk:r1", "34235:pk:r2"}, refs)
}
