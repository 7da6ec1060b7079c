package actor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// System is the root launcher: it owns the broker and serves as the shared
// context that every spawned agent's handle is registered against. There is
// exactly one broker per System.
type System struct {
	config RuntimeConfig

	ctx    context.Context
	cancel context.CancelFunc

	broker *AgentHandle

	mu     sync.RWMutex
	agents map[AgentId]*AgentHandle

	metrics *Metrics
}

// LaunchOption configures optional System facilities at Launch time.
type LaunchOption func(*System)

// WithMetrics attaches a Metrics collector that Launch's System updates as
// agents spawn, stop, drop messages, and as the broker fans out. The
// collector is otherwise inert: registering it with a Prometheus registry
// is the embedding application's responsibility.
func WithMetrics(m *Metrics) LaunchOption {
	return func(s *System) { s.metrics = m }
}

// AgentConfig configures a single Spawn call.
type AgentConfig struct {
	// Id is this agent's name segment. If empty, an anonymous name is
	// generated. The full AgentId is this value prefixed by the parent's
	// id (or "root" for a top-level agent).
	Id string

	// MailboxCapacity overrides RuntimeConfig.MailboxCapacity for this
	// agent only. Zero means "use the system default".
	MailboxCapacity int

	// Broker is recorded on the agent as its broker; nil records the
	// system broker. Subscribe, Unsubscribe and Publish take their broker
	// handle as an explicit argument and do not consult this field.
	Broker *AgentHandle
}

// SystemReady is returned by Launch; it is a thin, safely shareable facade
// over System used to spawn top-level agents.
type SystemReady struct {
	sys *System
}

// Broker returns the system's broker handle.
func (r SystemReady) Broker() *AgentHandle {
	return r.sys.broker
}

// Metrics returns the Metrics collector attached via WithMetrics, or nil if
// none was attached.
func (r SystemReady) Metrics() *Metrics {
	return r.sys.metrics
}

// Launch constructs a System, spawns its broker, and returns a SystemReady
// usable as a factory for top-level agents. Each call constructs an
// independent System with its own broker; callers that want a single
// process-wide system should call Launch once and share the result. A zero
// RuntimeConfig is equivalent to DefaultRuntimeConfig().
func Launch(config RuntimeConfig, opts ...LaunchOption) SystemReady {
	if config.MailboxCapacity <= 0 {
		config = DefaultRuntimeConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sys := &System{
		config: config,
		ctx:    ctx,
		cancel: cancel,
		agents: make(map[AgentId]*AgentHandle),
	}

	for _, opt := range opts {
		opt(sys)
	}

	sys.broker = newBroker(sys)

	if sys.metrics != nil {
		go sys.sampleMailboxDepth()
	}

	return SystemReady{sys: sys}
}

// mailboxSampleInterval is how often Launch's background sampler refreshes
// the mailbox_depth gauge when a Metrics collector is attached.
const mailboxSampleInterval = time.Second

// sampleMailboxDepth periodically sums the buffered length of every live
// agent's mailbox into the mailbox_depth gauge. It exits when the system
// context is cancelled (see SystemReady.Shutdown).
func (s *System) sampleMailboxDepth() {
	ticker := time.NewTicker(mailboxSampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return

		case <-ticker.C:
			s.mu.RLock()
			total := 0
			for _, handle := range s.agents {
				if handle.mailbox.IsClosed() {
					continue
				}
				total += handle.mailboxLen()
			}
			s.mu.RUnlock()

			s.metrics.mailboxDepth.Set(float64(total))
		}
	}
}

// SpawnAgent spawns a top-level agent (no parent) using cfg and setup, which
// registers reactors and hooks on the Idle agent and must call Activate
// before returning. The returned handle is available once the drain-loop
// goroutine has been scheduled.
func SpawnAgent[S any](r SystemReady, cfg AgentConfig, setup func(*IdleAgent[S]) *AgentHandle) (*AgentHandle, error) {
	idle, err := spawnChild[S](r.sys, nil, cfg)
	if err != nil {
		return nil, err
	}

	return setup(idle), nil
}

// spawnChild is the shared constructor behind Spawn, SpawnFromIdle and
// SpawnAgent. parent is nil for top-level agents.
func spawnChild[S any](sys *System, parent *AgentHandle, cfg AgentConfig) (*IdleAgent[S], error) {
	if strings.ContainsRune(cfg.Id, '/') {
		return nil, fmt.Errorf("%w: id %q must not contain '/'",
			ErrConfigInvalid, cfg.Id)
	}

	capacity := cfg.MailboxCapacity
	if capacity <= 0 {
		capacity = sys.config.MailboxCapacity
	}
	if capacity <= 0 {
		capacity = DefaultMailboxCapacity
	}

	var parentId AgentId
	if parent != nil {
		parentId = parent.ID()
	}

	id := newAgentId(parentId, cfg.Id)

	ctx, cancel := context.WithCancel(sys.ctx)
	mailbox := NewChannelMailbox(ctx, capacity)
	handle := newAgentHandle(id, mailbox)

	broker := cfg.Broker
	if broker == nil {
		broker = sys.broker
	}

	core := &agentCore[S]{
		id:       id,
		reactors: newReactorMap[S](),
		parent:   parent,
		broker:   broker,
		mailbox:  mailbox,
		handle:   handle,
		ctx:      ctx,
		cancel:   cancel,
		system:   sys,
	}

	if parent != nil {
		parent.addChild(handle)
	}

	sys.mu.Lock()
	sys.agents[id] = handle
	sys.mu.Unlock()

	if sys.metrics != nil {
		sys.metrics.agentsSpawned.Inc()
	}

	log.DebugS(ctx, "Agent spawned", "agent_id", id)

	return &IdleAgent[S]{core: core}, nil
}

// Shutdown stops the broker with a Terminate signal and blocks until the
// broker's own wake has returned or ctx is cancelled. It then cancels the
// system context, which ends the drain loop of every other agent spawned
// from this system; Shutdown does not wait for those agents, and their
// before_stop hooks are not run on this path.
func (r SystemReady) Shutdown(ctx context.Context) error {
	result := r.sys.broker.Stop(ctx).Await(ctx)

	r.sys.cancel()

	if result.IsErr() {
		var err error
		result.WhenErr(func(e error) { err = e })
		return err
	}

	return nil
}
