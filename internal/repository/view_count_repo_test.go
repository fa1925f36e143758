package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// upsert 必须是加法复合而不是赋值，两个冲账周期的部分计数要能相加
func TestIncrTotalIsAdditive(t *testing.T) {
	db := newTestDB(t)
	repo := NewViewCountRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.IncrTotal(ctx, "views:resource:r1", 3))
	require.NoError(t, repo.IncrTotal(ctx, "views:resource:r1", 4))

	total, err := repo.GetTotal(ctx, "views:resource:r1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	// 不存在的 key 读出 0
	total, err = repo.GetTotal(ctx, "views:resource:none")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestIncrDailyIsAdditivePerDay(t *testing.T) {
	db := newTestDB(t)
	repo := NewViewCountRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.IncrDaily(ctx, day1, "views:resource:r1", 2))
	require.NoError(t, repo.IncrDaily(ctx, day1, "views:resource:r1", 5))
	require.NoError(t, repo.IncrDaily(ctx, day2, "views:resource:r1", 1))

	counts, err := repo.GetDailyRange(ctx, "views:resource:r1", day1, day2)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, int64(7), counts[0].Count)
	assert.Equal(t, int64(1), counts[1].Count)
}
