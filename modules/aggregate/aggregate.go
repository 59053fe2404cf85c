package aggregate

import (
	"context"
	"errors"
	"fmt"

	"github.com/chebyrash/promise"
)

type Aggregate struct {
	ctx     context.Context
	cancel  context.CancelFunc
	plugins []Plugin
}

var _ Plugin = &Aggregate{}

func New(plugins []Plugin) *Aggregate {
	return NewWithContext(context.Background(), plugins)
}

func NewWithContext(parent context.Context, plugins []Plugin) *Aggregate {
	ctx, cancel := context.WithCancel(parent)
	return &Aggregate{
		ctx,
		cancel,
		plugins,
	}
}

// Run initializes and starts every plugin, then blocks until the aggregate
// context is cancelled. A failed start stops the plugins right away.
func (a *Aggregate) Run() error {
	if err := a.Init(); err != nil {
		return err
	}

	if _, err := a.Start().Await(a.ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return a.Stop()
		}
		return errors.Join(err, a.Stop())
	}

	<-a.ctx.Done()

	return a.Stop()
}

// Cancel unblocks Run.
func (a *Aggregate) Cancel() {
	a.cancel()
}

// Init implements Plugin.
func (a *Aggregate) Init() error {
	for i, p := range a.plugins {
		if err := p.Init(); err != nil {
			return fmt.Errorf("plugin %d (%T) init: %w", i, p, err)
		}
	}
	return nil
}

// Start implements Plugin.
func (a *Aggregate) Start() *promise.Promise[any] {
	promises := make([]*promise.Promise[any], len(a.plugins))
	for i, p := range a.plugins {
		promises[i] = p.Start()
	}
	return promise.Then(
		promise.All(a.ctx, promises...),
		a.ctx,
		func([]any) (any, error) {
			return nil, nil
		},
	)
}

// Stop implements Plugin. Plugins stop in reverse registration order so
// that consumers shut down before the stores they depend on.
func (a *Aggregate) Stop() error {
	var errs []error
	for i := len(a.plugins) - 1; i >= 0; i-- {
		if err := a.plugins[i].Stop(); err != nil {
			errs = append(errs, fmt.Errorf("plugin %d (%T) stop: %w", i, a.plugins[i], err))
		}
	}
	a.cancel()
	return errors.Join(errs...)
}
