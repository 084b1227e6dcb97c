package event

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"github.com/viant/kcore/internal/clock"
	"github.com/viant/kcore/internal/idgen"
	"github.com/viant/kcore/service/messaging"
)

// Publisher stamps and enqueues events. Publishing never blocks the caller:
// when the queue is full the event is dropped. A nil Publisher discards
// everything.
type Publisher struct {
	queue messaging.Queue[Event]
}

func NewPublisher(queue messaging.Queue[Event]) *Publisher {
	return &Publisher{queue: queue}
}

// Publish stamps e with an id and time and offers it to the queue.
func (p *Publisher) Publish(e *Event) bool {
	if p == nil || e == nil {
		return false
	}
	e.ID = idgen.New()
	e.CreatedAt = clock.Now()
	return p.queue.TryPublish(e)
}

// Listen feeds every event to handler until ctx is done.
func (p *Publisher) Listen(ctx context.Context, handler func(*Event)) {
	if p == nil {
		return
	}
	go func() {
		for {
			msg, err := p.queue.Consume(ctx)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				log.WithError(err).Warn("event consume failed")
				continue
			}
			if msg == nil {
				continue
			}
			handler(msg.T())
			if err = msg.Ack(); err != nil {
				log.WithError(err).Debug("event ack failed")
			}
		}
	}()
}
