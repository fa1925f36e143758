package service

import (
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/counter"
	"Atheneum/internal/pkg/util"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeViewCountRepo 进程内落库存储，可注入写失败
type fakeViewCountRepo struct {
	mu        sync.Mutex
	totals    map[string]int64
	daily     map[string]int64 // "day|key"
	failWrite bool
}

func newFakeViewCountRepo() *fakeViewCountRepo {
	return &fakeViewCountRepo{
		totals: make(map[string]int64),
		daily:  make(map[string]int64),
	}
}

func (s *fakeViewCountRepo) IncrTotal(_ context.Context, key string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errors.New("durable store down")
	}
	s.totals[key] += n
	return nil
}

func (s *fakeViewCountRepo) IncrDaily(_ context.Context, day time.Time, key string, n int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite {
		return errors.New("durable store down")
	}
	s.daily[day.Format(consts.DayLayout)+"|"+key] += n
	return nil
}

func (s *fakeViewCountRepo) GetTotal(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals[key], nil
}

func (s *fakeViewCountRepo) GetDailyRange(_ context.Context, key string, from, to time.Time) ([]*model.ViewDailyCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.ViewDailyCount
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if n, ok := s.daily[d.Format(consts.DayLayout)+"|"+key]; ok {
			out = append(out, &model.ViewDailyCount{Day: d, Key: key, Count: n})
		}
	}
	return out, nil
}

func newTestViewService(repo *fakeViewCountRepo) (*viewServiceImpl, *counter.MemoryStore) {
	store := counter.NewMemoryStore()
	svc := &viewServiceImpl{
		store:           store,
		repo:            repo,
		stalenessWindow: time.Hour,
		now:             time.Now,
	}
	return svc, store
}

func TestValidateKey(t *testing.T) {
	svc, _ := newTestViewService(newFakeViewCountRepo())

	cases := []struct {
		name string
		key  string
		ok   bool
	}{
		{"simple", "views:resource:abc123", true},
		{"id with colon", "views:course:c1:lesson:l1", true},
		{"underscore and dash", "views:my_ns-2:id_0-9", true},
		{"path form", "views:path:/courses/intro", true},
		{"path pct-encoded", "views:path:/docs/g%C3%B6", true},
		{"missing id", "views:resource:", false},
		{"missing ns", "views::abc", false},
		{"no prefix", "resource:abc", false},
		{"ns bad char", "views:re source:abc", false},
		{"id bad char", "views:resource:a b", false},
		{"ns too long", "views:" + strings.Repeat("n", 33) + ":id", false},
		{"id too long", "views:ns:" + strings.Repeat("i", 129), false},
		{"reserved daily ns", "views:daily:2026-01-01", false},
		{"reserved dirty ns", "views:dirty:x", false},
		{"path too long", "views:path:/" + strings.Repeat("p", 255), false},
		{"path bad escape", "views:path:/a%ZZb", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.ValidateKey(tc.key)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidViewKey)
			}
		})
	}
}

func TestRecordViewMarksDirty(t *testing.T) {
	svc, store := newTestViewService(newFakeViewCountRepo())
	ctx := context.Background()

	n, err := svc.RecordView(ctx, "views:resource:r1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = svc.RecordView(ctx, "views:resource:r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	dirty, err := store.SMembers(ctx, consts.ViewDirtyKey)
	require.NoError(t, err)
	assert.Equal(t, []string{"views:resource:r1"}, dirty)

	day := util.DayString(time.Now())
	daily, err := store.Get(ctx, consts.ViewDailyKeyPrefix+day+":views:resource:r1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), daily)

	_, err = svc.RecordView(ctx, "views:bad key")
	assert.ErrorIs(t, err, ErrInvalidViewKey)
}

func TestFlushTotalsMovesCounts(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, store := newTestViewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordView(ctx, "views:resource:r1")
		require.NoError(t, err)
	}

	flushed, err := svc.FlushTotals(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)

	total, _ := repo.GetTotal(ctx, "views:resource:r1")
	assert.Equal(t, int64(3), total)

	// 快速存储清零，脏集合清空
	pending, _ := store.Get(ctx, "views:resource:r1")
	assert.Zero(t, pending)
	dirty, _ := store.SMembers(ctx, consts.ViewDirtyKey)
	assert.Empty(t, dirty)

	// 第二轮计数必须和第一轮相加，不是覆盖
	for i := 0; i < 2; i++ {
		_, err = svc.RecordView(ctx, "views:resource:r1")
		require.NoError(t, err)
	}
	_, err = svc.FlushTotals(ctx)
	require.NoError(t, err)

	total, _ = repo.GetTotal(ctx, "views:resource:r1")
	assert.Equal(t, int64(5), total)
}

func TestFlushTotalsRestoresOnFailure(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, store := newTestViewService(repo)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := svc.RecordView(ctx, "views:resource:r1")
		require.NoError(t, err)
	}

	repo.failWrite = true
	_, err := svc.FlushTotals(ctx)
	require.Error(t, err)

	// 计数放回快速存储，脏标记保留，没有任何丢失
	pending, _ := store.Get(ctx, "views:resource:r1")
	assert.Equal(t, int64(4), pending)
	dirty, _ := store.SMembers(ctx, consts.ViewDirtyKey)
	assert.Equal(t, []string{"views:resource:r1"}, dirty)

	repo.failWrite = false
	_, err = svc.FlushTotals(ctx)
	require.NoError(t, err)
	total, _ := repo.GetTotal(ctx, "views:resource:r1")
	assert.Equal(t, int64(4), total)
}

func TestFlushDailyCleansDateIndex(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, store := newTestViewService(repo)
	ctx := context.Background()

	yesterday := time.Now().UTC().AddDate(0, 0, -1)
	svc.now = func() time.Time { return yesterday }
	_, err := svc.RecordView(ctx, "views:resource:r1")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.RecordView(ctx, "views:resource:r1")
	require.NoError(t, err)

	flushed, err := svc.FlushDaily(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, flushed)

	yd := util.DayString(yesterday)
	assert.Equal(t, int64(1), repo.daily[yd+"|views:resource:r1"])
	assert.Equal(t, int64(1), repo.daily[util.DayString(time.Now())+"|views:resource:r1"])

	// 历史日期冲完即从索引摘除，今天的保留
	days, _ := store.SMembers(ctx, consts.ViewDateIndexKey)
	assert.NotContains(t, days, yd)
	assert.Contains(t, days, util.DayString(time.Now()))
}

// 并发递增和冲账交错，最终落库加残余必须严格等于总递增数
func TestConcurrentRecordAndFlush(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, store := newTestViewService(repo)
	ctx := context.Background()

	const writers = 8
	const perWriter = 200

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				_, err := svc.RecordView(ctx, "views:resource:hot")
				assert.NoError(t, err)
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 20; i++ {
			_, _ = svc.FlushTotals(ctx)
		}
	}()

	wg.Wait()
	<-done
	_, err := svc.FlushTotals(ctx)
	require.NoError(t, err)

	total, _ := repo.GetTotal(ctx, "views:resource:hot")
	pending, _ := store.Get(ctx, "views:resource:hot")
	assert.Equal(t, int64(writers*perWriter), total+pending)
}

func TestFlushTelemetry(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, store := newTestViewService(repo)
	ctx := context.Background()

	_, err := svc.RecordView(ctx, "views:resource:r1")
	require.NoError(t, err)

	result, err := svc.RunFlushWithTelemetry(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.FlushedTotals)

	fields, err := store.HGetAll(ctx, consts.ViewFlushTelemetryKey)
	require.NoError(t, err)
	assert.NotEmpty(t, fields[tfLastAttemptAt])
	assert.NotEmpty(t, fields[tfLastSuccessAt])
	assert.Equal(t, "0", fields[tfConsecutiveFailures])
	assert.Empty(t, fields[tfLastError])

	// 失败路径：连续失败数递增，错误信息截断后记录
	repo.failWrite = true
	_, err = svc.RecordView(ctx, "views:resource:r2")
	require.NoError(t, err)
	_, err = svc.RunFlushWithTelemetry(ctx)
	require.Error(t, err)

	fields, _ = store.HGetAll(ctx, consts.ViewFlushTelemetryKey)
	assert.Equal(t, "1", fields[tfConsecutiveFailures])
	assert.NotEmpty(t, fields[tfLastError])
	assert.LessOrEqual(t, len(fields[tfLastError]), maxTelemetryErrorLen+len("...[truncated]"))
}

func TestStatusStaleness(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, _ := newTestViewService(repo)
	ctx := context.Background()

	// 从未成功过算 stale
	status, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsStale)

	_, err = svc.RunFlushWithTelemetry(ctx)
	require.NoError(t, err)
	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.False(t, status.IsStale)

	// 把时钟拨过窗口
	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	status, err = svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, status.IsStale)
}

func TestStalenessWindowClamp(t *testing.T) {
	cases := []struct {
		minutes int
		want    time.Duration
	}{
		{0, 60 * time.Minute},
		{1, 5 * time.Minute},
		{720, 720 * time.Minute},
		{999999, 10080 * time.Minute},
	}
	for _, tc := range cases {
		svc := NewViewService(counter.NewMemoryStore(), newFakeViewCountRepo(), tc.minutes).(*viewServiceImpl)
		assert.Equal(t, tc.want, svc.stalenessWindow, "minutes=%d", tc.minutes)
	}
}

func TestGetCountIncludesPending(t *testing.T) {
	repo := newFakeViewCountRepo()
	svc, _ := newTestViewService(repo)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.RecordView(ctx, "views:resource:r1")
		require.NoError(t, err)
	}
	_, err := svc.FlushTotals(ctx)
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err = svc.RecordView(ctx, "views:resource:r1")
		require.NoError(t, err)
	}

	count, err := svc.GetCount(ctx, "views:resource:r1")
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
