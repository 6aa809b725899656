package eventbus

import (
	"context"

	"github.com/annel0/artillery/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог компонента.
// Функция неблокирующая. Если logger == nil, используется логгер по умолчанию.
func StartLoggingListener(ctx context.Context, bus EventBus, logger *logging.Logger) (Subscription, error) {
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		if logger != nil {
			logger.Debug("[EventBus] tick=%d %s src=%s prio=%d %s", ev.Tick, ev.EventType, ev.Source, ev.Priority, ev.Payload)
			return
		}
		logging.Debug("[EventBus] tick=%d %s src=%s prio=%d %s", ev.Tick, ev.EventType, ev.Source, ev.Priority, ev.Payload)
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
