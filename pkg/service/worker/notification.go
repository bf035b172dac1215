package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/fieldlink/pkg/domain/interfaces"
	"github.com/secmon-lab/fieldlink/pkg/domain/model"
	"github.com/secmon-lab/fieldlink/pkg/domain/types"
	"github.com/secmon-lab/fieldlink/pkg/service/slack"
	"github.com/secmon-lab/fieldlink/pkg/service/telegram"
	"github.com/secmon-lab/fieldlink/pkg/utils/async"
	"github.com/secmon-lab/fieldlink/pkg/utils/logging"
)

const (
	DefaultQueueSize   = 256
	DefaultMaxAttempts = 3
	DefaultBackoff     = time.Second
	DefaultSendTimeout = 10 * time.Second
)

type notification struct {
	chatID types.ChatID
	text   string
}

// NotificationWorker delivers chat notifications in the background.
// Messages are queued by Notify and sent with bounded retries; messages that cannot be
// delivered are stored as dead letters and optionally announced on Slack.
//
// Architecture assumptions:
// - Single server instance; queued messages are lost if the process dies
type NotificationWorker struct {
	sender      telegram.Service
	deadLetters interfaces.DeadLetterRepository

	alert        slack.Service
	alertChannel string

	queue       chan notification
	maxAttempts int
	backoff     time.Duration
	sendTimeout time.Duration

	mu      sync.RWMutex
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

var _ interfaces.Notifier = &NotificationWorker{}

// NotificationOption is a functional option for NotificationWorker
type NotificationOption func(*NotificationWorker)

func WithQueueSize(n int) NotificationOption {
	return func(w *NotificationWorker) {
		if n > 0 {
			w.queue = make(chan notification, n)
		}
	}
}

func WithMaxAttempts(n int) NotificationOption {
	return func(w *NotificationWorker) {
		if n > 0 {
			w.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between attempts; attempt n waits n*backoff
func WithBackoff(d time.Duration) NotificationOption {
	return func(w *NotificationWorker) {
		w.backoff = d
	}
}

func WithSendTimeout(d time.Duration) NotificationOption {
	return func(w *NotificationWorker) {
		if d > 0 {
			w.sendTimeout = d
		}
	}
}

// WithSlackAlert posts a message to channelID for every dead letter
func WithSlackAlert(svc slack.Service, channelID string) NotificationOption {
	return func(w *NotificationWorker) {
		w.alert = svc
		w.alertChannel = channelID
	}
}

// NewNotificationWorker creates a worker. Call Start before Notify is used.
func NewNotificationWorker(sender telegram.Service, deadLetters interfaces.DeadLetterRepository, opts ...NotificationOption) *NotificationWorker {
	w := &NotificationWorker{
		sender:      sender,
		deadLetters: deadLetters,
		queue:       make(chan notification, DefaultQueueSize),
		maxAttempts: DefaultMaxAttempts,
		backoff:     DefaultBackoff,
		sendTimeout: DefaultSendTimeout,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Notify queues a message. It never blocks: when the queue is full or the worker is
// stopped the message goes straight to the dead-letter sink.
func (w *NotificationWorker) Notify(ctx context.Context, chatID types.ChatID, text string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.stopped {
		w.deadLetter(ctx, notification{chatID: chatID, text: text}, "notification worker stopped", 0)
		return
	}

	select {
	case w.queue <- notification{chatID: chatID, text: text}:
	default:
		w.deadLetter(ctx, notification{chatID: chatID, text: text}, "notification queue full", 0)
	}
}

// Start begins the background delivery loop
func (w *NotificationWorker) Start(ctx context.Context) error {
	logging.Default().Info("Notification worker starting",
		"queue_size", cap(w.queue),
		"max_attempts", w.maxAttempts)

	go w.run(ctx)

	return nil
}

// Stop rejects new messages, delivers what is already queued and waits for completion
func (w *NotificationWorker) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	w.mu.Unlock()

	logging.Default().Info("Notification worker stopping", "pending", len(w.queue))
	close(w.stopCh)
	<-w.doneCh
	logging.Default().Info("Notification worker stopped")
}

func (w *NotificationWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		select {
		case n := <-w.queue:
			w.deliver(ctx, n)

		case <-w.stopCh:
			w.drain()
			return

		case <-ctx.Done():
			logging.Default().Info("Notification worker context cancelled")
			w.drain()
			return
		}
	}
}

// drain delivers queued messages with a context detached from the canceled parent
func (w *NotificationWorker) drain() {
	ctx := context.Background()
	for {
		select {
		case n := <-w.queue:
			w.deliver(ctx, n)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, n notification) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, time.Duration(attempt-1)*w.backoff); err != nil {
				lastErr = err
				break
			}
		}

		lastErr = w.send(ctx, n)
		if lastErr == nil {
			return
		}

		logging.Default().Warn("Failed to send notification",
			"chat_id", n.chatID,
			"attempt", attempt,
			"error", lastErr.Error())
	}

	w.deadLetter(ctx, n, lastErr.Error(), w.maxAttempts)
}

func (w *NotificationWorker) send(ctx context.Context, n notification) error {
	sendCtx, cancel := context.WithTimeout(ctx, w.sendTimeout)
	defer cancel()
	return w.sender.SendMessage(sendCtx, n.chatID, n.text)
}

func (w *NotificationWorker) deadLetter(ctx context.Context, n notification, reason string, attempts int) {
	logger := logging.From(ctx)
	logger.Error("Notification could not be delivered",
		"chat_id", n.chatID,
		"reason", reason,
		"attempts", attempts)

	letter := model.NewDeadLetter(n.chatID, n.text, reason, attempts)

	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.sendTimeout)
	defer cancel()
	if err := w.deadLetters.Put(storeCtx, letter); err != nil {
		logger.Error("Failed to store dead letter",
			"dead_letter_id", letter.ID,
			"error", err.Error())
	}

	if w.alert == nil || w.alertChannel == "" {
		return
	}
	async.Dispatch(ctx, "dead_letter_alert", w.sendTimeout, func(ctx context.Context) error {
		text := fmt.Sprintf("Telegram notification to chat %s was not delivered after %d attempt(s): %s",
			letter.ChatID, letter.Attempts, letter.Reason)
		if _, err := w.alert.PostMessage(ctx, w.alertChannel, text); err != nil {
			return goerr.Wrap(err, "failed to post dead letter alert",
				goerr.V("dead_letter_id", letter.ID))
		}
		return nil
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
