package actor

import "context"

// LifecycleHook is an async callback receiving the Started agent. It is
// used for all four hook points: before_start, after_start, before_stop,
// after_stop.
type LifecycleHook[S any] func(ctx context.Context, agent *StartedAgent[S])

// hooks bundles the four lifecycle hook slots an Idle agent may register.
// A nil slot is a no-op when invoked.
type hooks[S any] struct {
	beforeStart LifecycleHook[S]
	afterStart  LifecycleHook[S]
	beforeStop  LifecycleHook[S]
	afterStop   LifecycleHook[S]
}

func (h hooks[S]) runBeforeStart(ctx context.Context, a *StartedAgent[S]) {
	if h.beforeStart != nil {
		h.beforeStart(ctx, a)
	}
}

func (h hooks[S]) runAfterStart(ctx context.Context, a *StartedAgent[S]) {
	if h.afterStart != nil {
		h.afterStart(ctx, a)
	}
}

func (h hooks[S]) runBeforeStop(ctx context.Context, a *StartedAgent[S]) {
	if h.beforeStop != nil {
		h.beforeStop(ctx, a)
	}
}

func (h hooks[S]) runAfterStop(ctx context.Context, a *StartedAgent[S]) {
	if h.afterStop != nil {
		h.afterStop(ctx, a)
	}
}

// BeforeStart registers the hook run immediately before the drain loop
// starts consuming the mailbox (before after_start).
func (a *IdleAgent[S]) BeforeStart(h LifecycleHook[S]) {
	a.core.lifecycleHooks.beforeStart = h
}

// AfterStart registers the hook awaited to completion before the first
// message is dequeued.
func (a *IdleAgent[S]) AfterStart(h LifecycleHook[S]) {
	a.core.lifecycleHooks.afterStart = h
}

// BeforeStop registers the hook awaited after Terminate is observed, before
// the mailbox is closed.
func (a *IdleAgent[S]) BeforeStop(h LifecycleHook[S]) {
	a.core.lifecycleHooks.beforeStop = h
}

// AfterStop registers the hook run after terminate() has fully returned,
// immediately before wake() itself returns.
func (a *IdleAgent[S]) AfterStop(h LifecycleHook[S]) {
	a.core.lifecycleHooks.afterStop = h
}
