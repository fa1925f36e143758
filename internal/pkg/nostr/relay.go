package nostr

import (
	"context"
	log "log/slog"
	"sync"
	"time"

	"github.com/nbd-wtf/go-nostr"
)

// Publisher 向一组 relay 广播事件，返回接受成功的 relay 列表。
// 单个 relay 超时或拒绝不会取消对其余 relay 的尝试。
type Publisher interface {
	Publish(ctx context.Context, relays []string, evt *nostr.Event) []string
}

type relayPublisher struct {
	timeout time.Duration
}

// NewPublisher timeoutSeconds <= 0 时使用 10 秒
func NewPublisher(timeoutSeconds int) Publisher {
	timeout := 10 * time.Second
	if timeoutSeconds > 0 {
		timeout = time.Duration(timeoutSeconds) * time.Second
	}
	return &relayPublisher{timeout: timeout}
}

func (p *relayPublisher) Publish(ctx context.Context, relays []string, evt *nostr.Event) []string {
	var (
		mu        sync.Mutex
		accepted  []string
		waitGroup sync.WaitGroup
	)

	for _, url := range relays {
		waitGroup.Add(1)
		go func(url string) {
			defer waitGroup.Done()

			attemptCtx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()

			relay, err := nostr.RelayConnect(attemptCtx, url)
			if err != nil {
				log.WarnContext(ctx, "relay connect failed", "relay", url, "err", err)
				return
			}
			defer relay.Close()

			if err = relay.Publish(attemptCtx, *evt); err != nil {
				log.WarnContext(ctx, "relay publish rejected", "relay", url, "event", evt.ID, "err", err)
				return
			}

			mu.Lock()
			accepted = append(accepted, url)
			mu.Unlock()
		}(url)
	}

	waitGroup.Wait()
	return accepted
}
