package service

import (
	"Atheneum/internal/api/dto"
	"Atheneum/internal/model"
	"Atheneum/internal/pkg/consts"
	"Atheneum/internal/pkg/counter"
	"Atheneum/internal/pkg/util"
	"Atheneum/internal/repository"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	viewKeyRe  = regexp.MustCompile(`^views:([A-Za-z0-9_-]{1,32}):([A-Za-z0-9:_-]{1,128})$`)
	viewPathRe = regexp.MustCompile(`^[A-Za-z0-9._~%!$&'()*+,;=:@/-]+$`)
)

// reservedNamespaces 内部管线占用的命名空间，放进 key 语法会撞内部 key 空间
var reservedNamespaces = map[string]struct{}{
	"daily": {},
	"dirty": {},
	"flush": {},
}

const (
	tfLastAttemptAt       = "last_attempt_at"
	tfLastSuccessAt       = "last_success_at"
	tfConsecutiveFailures = "consecutive_failures"
	tfLastError           = "last_error"
	tfLastFlushedTotals   = "last_flushed_totals"
	tfLastFlushedDaily    = "last_flushed_daily"
	tfLastDurationMs      = "last_duration_ms"

	maxTelemetryErrorLen = 200

	minStalenessMinutes     = 5
	maxStalenessMinutes     = 10080
	defaultStalenessMinutes = 60
)

type ViewService interface {
	// BuildKey 由 ns+id 构造并校验计数 key
	BuildKey(ns, id string) (string, error)
	// ValidateKey 严格 key 语法校验，防 key 空间无限膨胀和存储误用
	ValidateKey(key string) error
	// RecordView 原子递增计数并置脏标记，返回递增后的值
	RecordView(ctx context.Context, key string) (int64, error)
	// GetCount 读总数：已落库部分加上快速存储里未冲账的余量
	GetCount(ctx context.Context, key string) (int64, error)
	// GetDaily 读一段日期区间的逐日计数，只含已落库部分
	GetDaily(ctx context.Context, key string, from, to time.Time) ([]*model.ViewDailyCount, error)
	FlushTotals(ctx context.Context) (int, error)
	FlushDaily(ctx context.Context) (int, error)
	RunFlushWithTelemetry(ctx context.Context) (*dto.FlushResultDTO, error)
	Status(ctx context.Context) (*dto.FlushStatusDTO, error)
}

type viewServiceImpl struct {
	store           counter.Store
	repo            repository.ViewCountRepo
	stalenessWindow time.Duration
	now             func() time.Time
}

func NewViewService(store counter.Store, repo repository.ViewCountRepo, stalenessMinutes int) ViewService {
	if stalenessMinutes <= 0 {
		stalenessMinutes = defaultStalenessMinutes
	}
	if stalenessMinutes < minStalenessMinutes {
		stalenessMinutes = minStalenessMinutes
	}
	if stalenessMinutes > maxStalenessMinutes {
		stalenessMinutes = maxStalenessMinutes
	}
	return &viewServiceImpl{
		store:           store,
		repo:            repo,
		stalenessWindow: time.Duration(stalenessMinutes) * time.Minute,
		now:             time.Now,
	}
}

func (s *viewServiceImpl) BuildKey(ns, id string) (string, error) {
	key := "views:" + ns + ":" + id
	if err := s.ValidateKey(key); err != nil {
		return "", err
	}
	return key, nil
}

func (s *viewServiceImpl) ValidateKey(key string) error {
	if rest, ok := strings.CutPrefix(key, "views:path:"); ok {
		if len(rest) == 0 || len(rest) > 255 {
			return ErrInvalidViewKey
		}
		if !viewPathRe.MatchString(rest) {
			return ErrInvalidViewKey
		}
		if _, err := url.PathUnescape(rest); err != nil {
			return ErrInvalidViewKey
		}
		return nil
	}

	m := viewKeyRe.FindStringSubmatch(key)
	if m == nil {
		return ErrInvalidViewKey
	}
	if _, reserved := reservedNamespaces[m[1]]; reserved {
		return ErrInvalidViewKey
	}
	return nil
}

func (s *viewServiceImpl) RecordView(ctx context.Context, key string) (int64, error) {
	if err := s.ValidateKey(key); err != nil {
		return 0, err
	}

	count, err := s.store.Incr(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", key, err)
	}

	// 下面四个标记操作相互独立，不做跨 key 事务。部分失败只记日志：
	// 权威计数已经在 per-key 计数器里，下一次成功的递增或冲账会补回标记。
	day := util.DayString(s.now())
	dailyKey := consts.ViewDailyKeyPrefix + day + ":" + key

	if err = s.store.SAdd(ctx, consts.ViewDirtyKey, key); err != nil {
		log.WarnContext(ctx, "mark dirty failed", "key", key, "err", err)
	}
	if _, err = s.store.Incr(ctx, dailyKey); err != nil {
		log.WarnContext(ctx, "daily bucket increment failed", "key", dailyKey, "err", err)
	}
	if err = s.store.SAdd(ctx, consts.ViewDailyDirtyPrefix+day, dailyKey); err != nil {
		log.WarnContext(ctx, "mark daily dirty failed", "key", dailyKey, "err", err)
	}
	if err = s.store.SAdd(ctx, consts.ViewDateIndexKey, day); err != nil {
		log.WarnContext(ctx, "date index add failed", "day", day, "err", err)
	}

	return count, nil
}

func (s *viewServiceImpl) GetCount(ctx context.Context, key string) (int64, error) {
	if err := s.ValidateKey(key); err != nil {
		return 0, err
	}
	durable, err := s.repo.GetTotal(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("read durable count: %w", err)
	}
	pending, err := s.store.Get(ctx, key)
	if err != nil {
		// 快速存储不可用时退化为只报已落库部分
		log.WarnContext(ctx, "fast store read failed", "key", key, "err", err)
		return durable, nil
	}
	return durable + pending, nil
}

func (s *viewServiceImpl) GetDaily(ctx context.Context, key string, from, to time.Time) ([]*model.ViewDailyCount, error) {
	if err := s.ValidateKey(key); err != nil {
		return nil, err
	}
	return s.repo.GetDailyRange(ctx, key, from, to)
}

// FlushTotals 把脏 key 的累计计数搬进落库存储。
//
// 竞态说明：GetDel 和下面的盲删之间，key K 上可能有新的递增。新递增会
// 重建 K 的计数并把 K 重新加入脏集合，而本轮的盲删会连同这个新脏标记
// 一起清掉。这是刻意容忍的：计数仍在快速存储里不会丢，只是推迟到下一次
// 递增重新置脏后才冲账。不要用锁"修复"这里——跨进程锁换来的只是去掉
// 一段有界的延迟。正确性依赖的是 GetDel 的原子性和落库侧的加法 upsert。
func (s *viewServiceImpl) FlushTotals(ctx context.Context) (int, error) {
	keys, err := s.store.SMembers(ctx, consts.ViewDirtyKey)
	if err != nil {
		return 0, fmt.Errorf("list dirty keys: %w", err)
	}
	if len(keys) == 0 {
		return 0, nil
	}

	flushed := 0
	var failed []string
	var firstErr error

	for _, key := range keys {
		n, err := s.store.GetDel(ctx, key)
		if err != nil {
			log.ErrorContext(ctx, "getdel failed", "key", key, "err", err)
			failed = append(failed, key)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if n == 0 {
			continue
		}

		if err = s.repo.IncrTotal(ctx, key, n); err != nil {
			// 落库失败就把计数放回快速存储并保留脏标记，下轮自然重试
			if _, addErr := s.store.IncrBy(ctx, key, n); addErr != nil {
				log.ErrorContext(ctx, "restore count failed, count lost", "key", key, "count", n, "err", addErr)
			}
			log.ErrorContext(ctx, "durable upsert failed", "key", key, "err", err)
			failed = append(failed, key)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		flushed++
	}

	if err = s.store.SRem(ctx, consts.ViewDirtyKey, keys...); err != nil {
		log.ErrorContext(ctx, "dirty set cleanup failed", "err", err)
		if firstErr == nil {
			firstErr = err
		}
	}
	if len(failed) > 0 {
		if err = s.store.SAdd(ctx, consts.ViewDirtyKey, failed...); err != nil {
			log.ErrorContext(ctx, "re-mark failed keys dirty failed", "err", err)
		}
	}

	return flushed, firstErr
}

// FlushDaily 同样的模式逐日桶冲账，并清理已空的日期索引项
func (s *viewServiceImpl) FlushDaily(ctx context.Context) (int, error) {
	days, err := s.store.SMembers(ctx, consts.ViewDateIndexKey)
	if err != nil {
		return 0, fmt.Errorf("list date index: %w", err)
	}

	today := util.DayString(s.now())
	flushed := 0
	var firstErr error

	for _, day := range days {
		date, err := time.Parse(consts.DayLayout, day)
		if err != nil {
			log.WarnContext(ctx, "bad date index entry, removing", "day", day)
			_ = s.store.SRem(ctx, consts.ViewDateIndexKey, day)
			continue
		}

		dirtySetKey := consts.ViewDailyDirtyPrefix + day
		keys, err := s.store.SMembers(ctx, dirtySetKey)
		if err != nil {
			log.ErrorContext(ctx, "list daily dirty set failed", "day", day, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		var failed []string
		prefix := consts.ViewDailyKeyPrefix + day + ":"

		for _, dailyKey := range keys {
			n, err := s.store.GetDel(ctx, dailyKey)
			if err != nil {
				failed = append(failed, dailyKey)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			if n == 0 {
				continue
			}

			baseKey := strings.TrimPrefix(dailyKey, prefix)
			if err = s.repo.IncrDaily(ctx, date, baseKey, n); err != nil {
				if _, addErr := s.store.IncrBy(ctx, dailyKey, n); addErr != nil {
					log.ErrorContext(ctx, "restore daily count failed, count lost", "key", dailyKey, "count", n, "err", addErr)
				}
				log.ErrorContext(ctx, "daily durable upsert failed", "key", dailyKey, "err", err)
				failed = append(failed, dailyKey)
				if firstErr == nil {
					firstErr = err
				}
				continue
			}
			flushed++
		}

		if len(keys) > 0 {
			if err = s.store.SRem(ctx, dirtySetKey, keys...); err != nil && firstErr == nil {
				firstErr = err
			}
			if len(failed) > 0 {
				_ = s.store.SAdd(ctx, dirtySetKey, failed...)
			}
		}

		// 历史日期的脏集合清空后从索引摘掉，今天的保留
		if day != today {
			remaining, err := s.store.SMembers(ctx, dirtySetKey)
			if err == nil && len(remaining) == 0 {
				_ = s.store.SRem(ctx, consts.ViewDateIndexKey, day)
			}
		}
	}

	return flushed, firstErr
}

func (s *viewServiceImpl) RunFlushWithTelemetry(ctx context.Context) (*dto.FlushResultDTO, error) {
	start := s.now()

	// 尝试时间无条件记录
	if err := s.store.HSet(ctx, consts.ViewFlushTelemetryKey, map[string]string{
		tfLastAttemptAt: start.UTC().Format(time.RFC3339),
	}); err != nil {
		log.WarnContext(ctx, "record flush attempt failed", "err", err)
	}

	totals, errTotals := s.FlushTotals(ctx)
	daily, errDaily := s.FlushDaily(ctx)
	result := &dto.FlushResultDTO{FlushedTotals: totals, FlushedDaily: daily}

	if errTotals != nil || errDaily != nil {
		flushErr := errors.Join(errTotals, errDaily)
		failures := s.readConsecutiveFailures(ctx) + 1
		if err := s.store.HSet(ctx, consts.ViewFlushTelemetryKey, map[string]string{
			tfConsecutiveFailures: strconv.Itoa(failures),
			tfLastError:           util.Truncate(flushErr.Error(), maxTelemetryErrorLen),
		}); err != nil {
			log.WarnContext(ctx, "record flush failure failed", "err", err)
		}
		return result, fmt.Errorf("%w: view flush failed", UnExpectedError)
	}

	if err := s.store.HSet(ctx, consts.ViewFlushTelemetryKey, map[string]string{
		tfLastSuccessAt:       s.now().UTC().Format(time.RFC3339),
		tfConsecutiveFailures: "0",
		tfLastError:           "",
		tfLastFlushedTotals:   strconv.Itoa(totals),
		tfLastFlushedDaily:    strconv.Itoa(daily),
		tfLastDurationMs:      strconv.FormatInt(time.Since(start).Milliseconds(), 10),
	}); err != nil {
		log.WarnContext(ctx, "record flush success failed", "err", err)
	}

	return result, nil
}

func (s *viewServiceImpl) Status(ctx context.Context) (*dto.FlushStatusDTO, error) {
	fields, err := s.store.HGetAll(ctx, consts.ViewFlushTelemetryKey)
	if err != nil {
		return nil, fmt.Errorf("read telemetry: %w", err)
	}

	status := &dto.FlushStatusDTO{
		LastAttemptAt:          fields[tfLastAttemptAt],
		LastSuccessAt:          fields[tfLastSuccessAt],
		LastError:              fields[tfLastError],
		StalenessWindowMinutes: int(s.stalenessWindow / time.Minute),
	}
	status.ConsecutiveFailures, _ = strconv.Atoi(fields[tfConsecutiveFailures])
	status.LastFlushedTotals, _ = strconv.Atoi(fields[tfLastFlushedTotals])
	status.LastFlushedDaily, _ = strconv.Atoi(fields[tfLastFlushedDaily])
	status.LastDurationMs, _ = strconv.ParseInt(fields[tfLastDurationMs], 10, 64)

	status.IsStale = true
	if status.LastSuccessAt != "" {
		if lastSuccess, err := time.Parse(time.RFC3339, status.LastSuccessAt); err == nil {
			status.IsStale = s.now().Sub(lastSuccess) > s.stalenessWindow
		}
	}

	return status, nil
}

func (s *viewServiceImpl) readConsecutiveFailures(ctx context.Context) int {
	fields, err := s.store.HGetAll(ctx, consts.ViewFlushTelemetryKey)
	if err != nil {
		return 0
	}
	n, _ := strconv.Atoi(fields[tfConsecutiveFailures])
	return n
}
