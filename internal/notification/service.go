package notification

import (
	"context"
	"sync"
	"time"

	"skill-staffing/internal/config"
	"skill-staffing/internal/pkg/logger"

	"github.com/google/uuid"
)

// Service fans each notification out to every channel on a worker pool.
// Subjects are resolved on the worker, never on the caller's goroutine.
type Service struct {
	pool      *WorkerPool
	channels  []Channel
	resolvers Resolvers
	log       *logger.Logger
	timeout   time.Duration
	now       func() time.Time

	startOnce sync.Once
	stopOnce  sync.Once
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewService(cfg config.NotificationConfig, resolvers Resolvers, log *logger.Logger, channels ...Channel) *Service {
	queue := cfg.QueueSize
	if queue <= 0 {
		queue = 1024
	}
	timeout := cfg.DeliverTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pool := NewWorkerPool(cfg.Workers, queue)
	pool.SetRateLimit(cfg.RatePerSecond)

	return &Service{
		pool:      pool,
		channels:  channels,
		resolvers: resolvers,
		log:       logger.OrNop(log).With("component", "notification"),
		timeout:   timeout,
		now:       time.Now,
		done:      make(chan struct{}),
	}
}

// Start launches the workers. Notifications submitted earlier wait in the queue.
func (s *Service) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		ctx, s.cancel = context.WithCancel(ctx)
		results := s.pool.Run(ctx)
		go func() {
			defer close(s.done)
			for r := range results {
				if r.Err != nil {
					s.log.Warn("notification task failed", "error", r.Err)
				}
			}
		}()
	})
}

// Stop drains the queue, waiting at most until ctx is done.
func (s *Service) Stop(ctx context.Context) {
	s.stopOnce.Do(func() {
		s.pool.Close()
		if s.cancel == nil {
			return
		}
		select {
		case <-s.done:
		case <-ctx.Done():
			s.log.Warn("notification drain interrupted", "error", ctx.Err())
		}
		s.cancel()
	})
}

func (s *Service) Notify(n Notification) {
	if n.RecipientID == uuid.Nil {
		s.log.Warn("notification without recipient dropped", "title", n.Title)
		return
	}
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = s.now().UTC()
	}

	ok := s.pool.TrySubmit(func(ctx context.Context) error {
		s.deliver(ctx, n)
		return nil
	})
	if !ok {
		s.log.Warn("notification queue full, dropped",
			"recipient_id", n.RecipientID,
			"title", n.Title,
		)
	}
}

func (s *Service) deliver(ctx context.Context, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("notification delivery panicked", "recipient_id", n.RecipientID, "panic", r)
		}
	}()

	if n.Subject != nil && s.resolvers != nil {
		ref, err := s.resolvers.Resolve(ctx, *n.Subject)
		if err != nil {
			s.log.Debug("notification subject unresolved", "kind", n.Subject.Kind, "id", n.Subject.ID, "error", err)
		} else {
			n.SubjectLabel = ref.Label
			if n.Link == "" {
				n.Link = ref.Link
			}
		}
	}

	for _, ch := range s.channels {
		cctx, cancel := context.WithTimeout(ctx, s.timeout)
		err := ch.Deliver(cctx, n)
		cancel()
		if err != nil {
			s.log.Warn("notification delivery failed",
				"channel", ch.Name(),
				"recipient_id", n.RecipientID,
				"error", err,
			)
		}
	}
}
