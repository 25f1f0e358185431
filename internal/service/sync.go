package service

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const syncQueueSize = 256

type syncEvent struct {
	action string
	data   map[string]any
}

// enqueue ставит событие в очередь отправки. При переполнении событие отбрасывается.
func (s *Service) enqueue(action string, data map[string]any) {
	if s.remoteClient == nil {
		return
	}
	select {
	case s.events <- syncEvent{action: action, data: data}:
	default:
		s.metrics.SyncFailures.Inc()
		s.logger.Warn("sync queue full, event dropped", zap.String("action", action))
	}
}

// StartSync запускает фоновую отправку событий во внешний endpoint.
func (s *Service) StartSync(ctx context.Context) {
	if s.remoteClient == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(s.syncInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.flushEvents(ctx)
			}
		}
	}()
}

func (s *Service) flushEvents(ctx context.Context) {
	for {
		select {
		case ev := <-s.events:
			if _, err := s.remoteClient.Call(ctx, ev.action, ev.data, http.MethodPost); err != nil {
				s.metrics.SyncFailures.Inc()
				s.logger.Warn("sync event failed", zap.String("action", ev.action), zap.Error(err))
			}
		default:
			return
		}
	}
}
