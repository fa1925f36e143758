package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ArchivedEvent 已接受的签名事件原文
type ArchivedEvent struct {
	EventID   string    `bson:"event_id"`
	Pubkey    string    `bson:"pubkey"`
	Kind      int       `bson:"kind"`
	RecordID  string    `bson:"record_id"`
	Raw       string    `bson:"raw"`
	CreatedAt time.Time `bson:"created_at"`
}

// EventArchive 保存发布/重发布时接受的每个签名事件，供校验接口回查
type EventArchive interface {
	Save(ctx context.Context, evt *ArchivedEvent) error
	GetByEventID(ctx context.Context, eventID string) (*ArchivedEvent, error)
	GetByRecordID(ctx context.Context, recordID string) ([]*ArchivedEvent, error)
}

type eventArchiveImpl struct {
	col *mongo.Collection
}

func NewEventArchive(db *mongo.Database) (EventArchive, error) {
	col := db.Collection("event_archive")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "event_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "pubkey", Value: 1}}},
		{Keys: bson.D{{Key: "record_id", Value: 1}}},
	})
	if err != nil {
		return nil, err
	}

	return &eventArchiveImpl{col: col}, nil
}

func (s *eventArchiveImpl) Save(ctx context.Context, evt *ArchivedEvent) error {
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = time.Now()
	}
	_, err := s.col.InsertOne(ctx, evt)
	if mongo.IsDuplicateKeyError(err) {
		// 相同事件重复归档视为成功
		return nil
	}
	return err
}

func (s *eventArchiveImpl) GetByEventID(ctx context.Context, eventID string) (*ArchivedEvent, error) {
	var evt ArchivedEvent
	err := s.col.FindOne(ctx, bson.M{"event_id": eventID}).Decode(&evt)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &evt, nil
}

func (s *eventArchiveImpl) GetByRecordID(ctx context.Context, recordID string) ([]*ArchivedEvent, error) {
	cursor, err := s.col.Find(ctx, bson.M{"record_id": recordID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	var list []*ArchivedEvent
	if err = cursor.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// NoopEventArchive 未配置 Mongo 时的空实现
type NoopEventArchive struct{}

func (NoopEventArchive) Save(context.Context, *ArchivedEvent) error { return nil }

func (NoopEventArchive) GetByEventID(context.Context, string) (*ArchivedEvent, error) {
	return nil, nil
}

func (NoopEventArchive) GetByRecordID(context.Context, string) ([]*ArchivedEvent, error) {
	return nil, nil
}
