package session

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Notifier receives every notification, in order, on the dispatcher goroutine.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to [Notifier].
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// LogNotifier writes notifications to a logger: successes at info, errors at error.
type LogNotifier struct {
	Logger *log.Logger
}

func (l LogNotifier) Notify(n Notification) {
	if n.Level == LevelError {
		l.Logger.Error(n.Message)
		return
	}
	l.Logger.Info(n.Message)
}

// Update is published after each handled event.
type Update struct {
	Event         Event
	View          View
	Notifications []Notification
}

// Dispatcher serializes events into a [Controller] on one goroutine.
type Dispatcher struct {
	ctrl     *Controller
	notifier Notifier
	logger   *log.Logger
	events   chan Event
	done     chan struct{}

	mu      sync.Mutex
	subs    map[int]chan Update
	waiters map[int]chan struct{}
	nextID  int
}

// NewDispatcher creates a dispatcher for ctrl. notifier may be nil.
func NewDispatcher(ctrl *Controller, notifier Notifier, logger *log.Logger) *Dispatcher {
	return &Dispatcher{
		ctrl:     ctrl,
		notifier: notifier,
		logger:   logger,
		events:   make(chan Event, 64),
		done:     make(chan struct{}),
		subs:     make(map[int]chan Update),
		waiters:  make(map[int]chan struct{}),
	}
}

// Controller returns the controller being driven.
func (d *Dispatcher) Controller() *Controller {
	return d.ctrl
}

// Post queues ev. It returns false once the dispatcher has stopped.
func (d *Dispatcher) Post(ev Event) bool {
	select {
	case <-d.done:
		return false
	default:
	}
	select {
	case d.events <- ev:
		return true
	case <-d.done:
		return false
	}
}

// Run handles events until ctx is cancelled, then waits for running commands to return.
func (d *Dispatcher) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer func() {
		close(d.done)
		wg.Wait()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			cmd := d.ctrl.Handle(ev)
			notes := d.ctrl.TakeNotifications()
			if d.notifier != nil {
				for _, n := range notes {
					d.notifier.Notify(n)
				}
			}
			d.publish(Update{Event: ev, View: d.ctrl.Snapshot(), Notifications: notes})

			if cmd != nil {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if result := cmd(ctx); result != nil {
						d.Post(result)
					}
				}()
			}
		}
	}
}

// Subscribe returns a channel of updates and a function that cancels the subscription.
//
// Updates are dropped rather than block the dispatcher when the subscriber falls behind.
func (d *Dispatcher) Subscribe(buffer int) (<-chan Update, func()) {
	ch := make(chan Update, buffer)

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.subs[id] = ch
	d.mu.Unlock()

	return ch, func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		if _, ok := d.subs[id]; ok {
			delete(d.subs, id)
			close(ch)
		}
	}
}

// Await blocks until pred holds for the controller's view.
func (d *Dispatcher) Await(ctx context.Context, pred func(View) bool) (View, error) {
	return d.Dispatch(ctx, nil, pred)
}

// Dispatch posts ev (when non-nil) and blocks until pred holds. The wait is registered before the event is posted,
// so a fast round trip cannot be missed.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event, pred func(View) bool) (View, error) {
	signal := make(chan struct{}, 1)

	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.waiters[id] = signal
	d.mu.Unlock()
	defer func() {
		d.mu.Lock()
		delete(d.waiters, id)
		d.mu.Unlock()
	}()

	if ev != nil && !d.Post(ev) {
		return d.ctrl.Snapshot(), context.Canceled
	}

	for {
		if v := d.ctrl.Snapshot(); pred(v) {
			return v, nil
		}
		select {
		case <-signal:
		case <-ctx.Done():
			return d.ctrl.Snapshot(), ctx.Err()
		case <-d.done:
			return d.ctrl.Snapshot(), context.Canceled
		}
	}
}

// publish sends u to every subscriber without blocking.
func (d *Dispatcher) publish(u Update) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, ch := range d.subs {
		select {
		case ch <- u:
		default:
			if d.logger != nil {
				d.logger.Debug("dropping update for slow subscriber")
			}
		}
	}
	for _, w := range d.waiters {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}
