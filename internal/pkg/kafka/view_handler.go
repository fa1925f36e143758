package kafka

import (
	"Atheneum/internal/service"
	"context"
	"errors"
	log "log/slog"

	"github.com/IBM/sarama"
	"github.com/goccy/go-json"
)

// ViewMessage 上游埋点投递的阅读事件，ns+id 或完整 key 二选一
type ViewMessage struct {
	NS  string `json:"ns"`
	ID  string `json:"id"`
	Key string `json:"key"`
}

type ViewsHandler struct {
	viewSvc service.ViewService
}

func NewViewsHandler(viewSvc service.ViewService) *ViewsHandler {
	return &ViewsHandler{viewSvc: viewSvc}
}

func (s *ViewsHandler) Setup(sarama.ConsumerGroupSession) error {
	log.Info("view consumer setup")
	return nil
}

func (s *ViewsHandler) Cleanup(sarama.ConsumerGroupSession) error {
	log.Info("view consumer cleanup")
	return nil
}

func (s *ViewsHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	log.Info("topic-views consume claim")
	err := pullMessageBatch(session, claim, s.logic)
	if err != nil {
		log.Error("topic-views process batch error", "err", err)
		return err
	}
	return nil
}

func (s *ViewsHandler) logic(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var vm ViewMessage
	if err := json.Unmarshal(msg.Value, &vm); err != nil {
		// 坏消息直接丢，重试也不会变好
		log.WarnContext(ctx, "malformed view message dropped", "offset", msg.Offset, "err", err)
		return nil
	}

	key := vm.Key
	if key == "" {
		var err error
		if key, err = s.viewSvc.BuildKey(vm.NS, vm.ID); err != nil {
			log.WarnContext(ctx, "view message with invalid key dropped", "ns", vm.NS, "id", vm.ID)
			return nil
		}
	}

	_, err := s.viewSvc.RecordView(ctx, key)
	if errors.Is(err, service.ErrInvalidViewKey) {
		log.WarnContext(ctx, "view message with invalid key dropped", "key", key)
		return nil
	}
	return err
}
