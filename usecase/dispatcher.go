package usecase

import (
	"context"
	"fmt"
	"sync"
)

type CommandHandler func(ctx context.Context, payload interface{}) (interface{}, error)
type QueryHandler func(ctx context.Context, params interface{}) (interface{}, error)

// Dispatcher routes named actions to handlers and runs them one at a time, in
// the order they arrived.
type Dispatcher struct {
	cmdHandlers map[string]CommandHandler
	qryHandlers map[string]QueryHandler
	mu          sync.RWMutex

	turn      sync.Mutex
	cond      *sync.Cond
	next      uint64
	serving   uint64
	abandoned map[uint64]struct{}
}

func NewDispatcher() *Dispatcher {
	d := &Dispatcher{
		cmdHandlers: make(map[string]CommandHandler),
		qryHandlers: make(map[string]QueryHandler),
		abandoned:   make(map[uint64]struct{}),
	}
	d.cond = sync.NewCond(&d.turn)
	return d
}

func (d *Dispatcher) RegisterCommand(name string, handler CommandHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cmdHandlers[name] = handler
}

func (d *Dispatcher) RegisterQuery(name string, handler QueryHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.qryHandlers[name] = handler
}

func (d *Dispatcher) ExecuteCommand(ctx context.Context, name string, payload interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.cmdHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("command handler %s not registered", name)
	}
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()
	return handler(ctx, payload)
}

func (d *Dispatcher) ExecuteQuery(ctx context.Context, name string, params interface{}) (interface{}, error) {
	d.mu.RLock()
	handler, ok := d.qryHandlers[name]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("query handler %s not registered", name)
	}
	if err := d.acquire(ctx); err != nil {
		return nil, err
	}
	defer d.release()
	return handler(ctx, params)
}

// acquire takes a ticket and waits until it is served. A caller whose context
// ends while queued gives up its ticket and returns the context error.
func (d *Dispatcher) acquire(ctx context.Context) error {
	d.turn.Lock()
	defer d.turn.Unlock()
	ticket := d.next
	d.next++

	stop := context.AfterFunc(ctx, func() {
		d.turn.Lock()
		d.cond.Broadcast()
		d.turn.Unlock()
	})
	defer stop()

	for d.serving != ticket {
		if err := ctx.Err(); err != nil {
			d.abandoned[ticket] = struct{}{}
			return err
		}
		d.cond.Wait()
	}
	if err := ctx.Err(); err != nil {
		d.advanceLocked()
		return err
	}
	return nil
}

func (d *Dispatcher) release() {
	d.turn.Lock()
	d.advanceLocked()
	d.turn.Unlock()
}

// advanceLocked serves the next live ticket. d.turn must be held.
func (d *Dispatcher) advanceLocked() {
	d.serving++
	for {
		if _, ok := d.abandoned[d.serving]; !ok {
			break
		}
		delete(d.abandoned, d.serving)
		d.serving++
	}
	d.cond.Broadcast()
}
