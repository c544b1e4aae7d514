package audit

import (
	"context"
	"time"

	"github.com/canada7700/finish-line-calendar-app-sub000/core/events"
	"github.com/canada7700/finish-line-calendar-app-sub000/core/logger"
	"github.com/canada7700/finish-line-calendar-app-sub000/internal/eventbus"
)

// Start appends every bus event to st until ctx is canceled.
func Start(ctx context.Context, bus eventbus.EventBus, st Store, log logger.Logger) {
	if bus == nil || st == nil {
		return
	}
	log = logger.OrNop(log)
	sub := bus.Subscribe()
	go func() {
		defer bus.Unsubscribe(sub)
		eventbus.Forward(ctx, sub, func(ev events.Event) {
			rec, err := NewRecord(ev, time.Now())
			if err == nil {
				err = st.Append(ctx, rec)
			}
			if err != nil {
				log.Warnf("audit %s: %v", ev.Topic(), err)
			}
		})
	}()
}
