package repository

import (
	"Atheneum/internal/model"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ViewCountRepo interface {
	// IncrTotal 累计量加法 upsert。必须是 count = count + n 而不是赋值，
	// 多个冲账周期（或并发冲账）的部分计数要能相加复合。
	IncrTotal(ctx context.Context, key string, n int64) error
	// IncrDaily 日桶加法 upsert，(day, key) 唯一
	IncrDaily(ctx context.Context, day time.Time, key string, n int64) error
	GetTotal(ctx context.Context, key string) (int64, error)
	GetDailyRange(ctx context.Context, key string, from, to time.Time) ([]*model.ViewDailyCount, error)
}

type viewCountRepoImpl struct {
	db *gorm.DB
}

func NewViewCountRepository(db *gorm.DB) ViewCountRepo {
	return &viewCountRepoImpl{db: db}
}

func (s *viewCountRepoImpl) IncrTotal(ctx context.Context, key string, n int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "view_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total":      gorm.Expr("total + ?", n),
			"updated_at": time.Now(),
		}),
	}).Create(&model.ViewCount{Key: key, Total: n}).Error
}

func (s *viewCountRepoImpl) IncrDaily(ctx context.Context, day time.Time, key string, n int64) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "day"}, {Name: "view_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count": gorm.Expr("count + ?", n),
		}),
	}).Create(&model.ViewDailyCount{Day: day, Key: key, Count: n}).Error
}

func (s *viewCountRepoImpl) GetTotal(ctx context.Context, key string) (int64, error) {
	var count model.ViewCount
	err := s.db.WithContext(ctx).First(&count, "view_key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return count.Total, nil
}

func (s *viewCountRepoImpl) GetDailyRange(ctx context.Context, key string, from, to time.Time) ([]*model.ViewDailyCount, error) {
	counts := make([]*model.ViewDailyCount, 0)
	result := s.db.WithContext(ctx).
		Where("view_key = ?", key).
		Where("day >= ? AND day <= ?", from, to).
		Order("day ASC").
		Find(&counts)
	if result.Error != nil {
		return nil, result.Error
	}
	return counts, nil
}
