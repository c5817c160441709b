package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/events"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/model"
	"github.com/cydodol-beep/shorttail-ecommerce-sub002/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const insertTimeout = 5 * time.Second

type task struct {
	order     *model.Order
	itemCount int
}

// Notifier writes back-office notifications and publishes order events,
// detached from the request path. Everything here is best-effort: a
// failed or slow notification never affects a checkout response.
type Notifier struct {
	repo      repository.NotificationRepository
	publisher events.Publisher // nil when kafka is disabled
	service   string
	logger    zerolog.Logger
	inbox     chan task
	closeCh   chan struct{}
}

// New creates a Notifier with the given inbox capacity.
func New(repo repository.NotificationRepository, publisher events.Publisher, service string, buf int, logger zerolog.Logger) *Notifier {
	return &Notifier{
		repo:      repo,
		publisher: publisher,
		service:   service,
		logger:    logger.With().Str("component", "notifier").Logger(),
		inbox:     make(chan task, buf),
		closeCh:   make(chan struct{}),
	}
}

// Start runs the worker until ctx is cancelled, then drains the inbox.
func (n *Notifier) Start(ctx context.Context) {
	go func() {
		defer close(n.closeCh)
		for {
			select {
			case <-ctx.Done():
				n.drain()
				return
			case t, ok := <-n.inbox:
				if !ok {
					return
				}
				n.process(t)
			}
		}
	}()
}

func (n *Notifier) drain() {
	for {
		select {
		case t, ok := <-n.inbox:
			if !ok {
				return
			}
			n.process(t)
		default:
			return
		}
	}
}

// OrderCreated enqueues a notification for a freshly committed order.
// It never blocks: when the inbox is full the notification is dropped
// and logged.
func (n *Notifier) OrderCreated(order *model.Order, itemCount int) {
	select {
	case n.inbox <- task{order: order, itemCount: itemCount}:
	default:
		n.logger.Warn().
			Str("order_id", order.ID.String()).
			Msg("notification dropped: notifier inbox full")
	}
}

func (n *Notifier) process(t task) {
	ctx, cancel := context.WithTimeout(context.Background(), insertTimeout)
	defer cancel()

	notification := &model.Notification{
		ID:        uuid.New(),
		Title:     "New POS order",
		Body:      fmt.Sprintf("Order with %d item(s) paid, total Rp%d", t.itemCount, t.order.TotalAmount),
		Link:      fmt.Sprintf("/admin/orders/%s", t.order.ID),
		CreatedAt: time.Now(),
	}

	if err := n.repo.Insert(ctx, notification); err != nil {
		// Swallowed: the order is already committed.
		n.logger.Error().
			Err(err).
			Str("order_id", t.order.ID.String()).
			Msg("failed to insert order notification")
	}

	if n.publisher != nil {
		env, err := events.NewOrderCreated(n.service, t.order, t.itemCount)
		if err != nil {
			n.logger.Error().Err(err).Str("order_id", t.order.ID.String()).Msg("failed to build order event")
			return
		}
		if err := n.publisher.Publish(env); err != nil {
			n.logger.Error().Err(err).Str("order_id", t.order.ID.String()).Msg("failed to publish order event")
		}
	}
}

// Close stops accepting notifications; the worker exits after draining.
func (n *Notifier) Close() { close(n.inbox) }

// WaitClosed blocks until the worker has exited.
func (n *Notifier) WaitClosed() { <-n.closeCh }
