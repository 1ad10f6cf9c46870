package listener

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"reflect"
	"sync"

	"github.com/ethereum/go-ethereum/event"
	"github.com/shamank/ets-sdk-go/pkg/blockchain"
	"github.com/shamank/ets-sdk-go/pkg/metadata"
	"github.com/shamank/ets-sdk-go/pkg/model"
	"go.uber.org/zap"
)

// LogSource delivers decoded logs of one contract. *blockchain.Facet and the
// typed facets embedding it implement it.
type LogSource interface {
	SubscribeEvent(ctx context.Context, name string, sink chan<- *blockchain.DecodedLog) (event.Subscription, error)
}

// MembersReader reads the team of an event.
type MembersReader interface {
	GetEventMembers(ctx context.Context, eventID *big.Int) ([]model.Member, error)
}

// EventsSource is the events facet: logs plus the reads needed to enrich
// EventCreated and MetadataUpdate.
type EventsSource interface {
	LogSource
	metadata.URIReader
	MembersReader
}

// Sources are the contracts a Registry subscribes to. A nil source makes the
// registrations of its topics fail.
type Sources struct {
	Events     EventsSource
	Controller LogSource
	Tickets    LogSource
}

// SourcesFromClient returns the facets of evm as sources. Unset facets stay
// nil sources.
func SourcesFromClient(evm *blockchain.EVMClient) Sources {
	var src Sources
	if evm == nil {
		return src
	}
	if evm.Events != nil {
		src.Events = evm.Events
	}
	if evm.Controller != nil {
		src.Controller = evm.Controller
	}
	if evm.Tickets != nil {
		src.Tickets = evm.Tickets
	}
	return src
}

// isNil reports whether src is nil or wraps a nil pointer.
func isNil(src LogSource) bool {
	if src == nil {
		return true
	}
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// Option configures a Registry.
type Option func(*Registry)

// WithErrors sends every *HandlerError to errs. Without it failures are
// logged.
func WithErrors(errs chan<- error) Option {
	return func(r *Registry) { r.errs = errs }
}

// WithBuffer sets how many decoded logs may queue per registration while its
// callback runs.
func WithBuffer(n int) Option {
	return func(r *Registry) {
		if n >= 0 {
			r.buffer = n
		}
	}
}

// Registry runs topic registrations. Each registration owns one goroutine and
// handles its deliveries one at a time, in transport order; distinct
// registrations run independently.
type Registry struct {
	resolver *metadata.Resolver
	src      Sources
	errs     chan<- error
	buffer   int

	mu     sync.Mutex
	subs   []event.Subscription
	closed bool
	done   chan struct{}
	wg     sync.WaitGroup
}

// NewRegistry returns a registry enriching records through resolver.
func NewRegistry(resolver *metadata.Resolver, src Sources, opts ...Option) *Registry {
	r := &Registry{
		resolver: resolver,
		src:      src,
		buffer:   16,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stop ends every registration without waiting for running callbacks. It is
// safe to call from a callback.
func (r *Registry) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.done)
	subs := r.subs
	r.subs = nil
	r.mu.Unlock()

	for _, s := range subs {
		s.Unsubscribe()
	}
}

// Close ends every registration and waits for running callbacks to return.
// A callback must call Stop instead: Close would wait for itself.
func (r *Registry) Close() {
	r.Stop()
	r.wg.Wait()
}

// builder turns a decoded log into the record handed to a callback.
type builder[T any] func(ctx context.Context, d *blockchain.DecodedLog) (T, error)

// enrichError marks builder failures that happened after decoding.
type enrichError struct{ err error }

func (e enrichError) Error() string { return e.err.Error() }
func (e enrichError) Unwrap() error { return e.err }

func listen[T any](ctx context.Context, r *Registry, src LogSource, topic string, build builder[T], cb func(context.Context, T) error) error {
	if cb == nil {
		return fmt.Errorf("%s: nil callback", topic)
	}
	if isNil(src) {
		return fmt.Errorf("%s: no contract configured for this topic", topic)
	}

	r.mu.Lock()
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return ErrClosed
	}

	sink := make(chan *blockchain.DecodedLog, r.buffer)
	sub, err := src.SubscribeEvent(ctx, topic, sink)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", topic, err)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.Unsubscribe()
		return ErrClosed
	}
	r.subs = append(r.subs, sub)
	r.wg.Add(1)
	r.mu.Unlock()

	activeRegistrations.Inc()
	go func() {
		defer r.wg.Done()
		defer activeRegistrations.Dec()
		defer sub.Unsubscribe()
		for {
			select {
			case d := <-sink:
				deliver(ctx, r, topic, d, build, cb)
			case err, ok := <-sub.Err():
				// Logs queued before the failure are still handed out.
				drain(ctx, r, topic, sink, build, cb)
				if ok && err != nil {
					r.report(ctx, &HandlerError{Topic: topic, Stage: StageSubscription, Err: err})
				}
				return
			case <-ctx.Done():
				return
			case <-r.done:
				return
			}
		}
	}()
	return nil
}

func drain[T any](ctx context.Context, r *Registry, topic string, sink <-chan *blockchain.DecodedLog, build builder[T], cb func(context.Context, T) error) {
	for {
		if ctx.Err() != nil {
			return
		}
		select {
		case d := <-sink:
			deliver(ctx, r, topic, d, build, cb)
		case <-r.done:
			return
		default:
			return
		}
	}
}

func deliver[T any](ctx context.Context, r *Registry, topic string, d *blockchain.DecodedLog, build builder[T], cb func(context.Context, T) error) {
	stage := StageDecode
	defer func() {
		if p := recover(); p != nil {
			deliveries.WithLabelValues(topic, "panic").Inc()
			r.report(ctx, &HandlerError{Topic: topic, Stage: stage, Log: d.Raw, Err: fmt.Errorf("panic: %v", p)})
		}
	}()

	if d.Err != nil {
		deliveries.WithLabelValues(topic, stage).Inc()
		r.report(ctx, &HandlerError{Topic: topic, Stage: stage, Log: d.Raw, Err: d.Err})
		return
	}
	rec, err := build(ctx, d)
	if err != nil {
		var ee enrichError
		if errors.As(err, &ee) {
			stage, err = StageEnrich, ee.err
		}
		deliveries.WithLabelValues(topic, stage).Inc()
		r.report(ctx, &HandlerError{Topic: topic, Stage: stage, Log: d.Raw, Err: err})
		return
	}

	stage = StageCallback
	if err := cb(ctx, rec); err != nil {
		deliveries.WithLabelValues(topic, stage).Inc()
		r.report(ctx, &HandlerError{Topic: topic, Stage: stage, Log: d.Raw, Err: err})
		return
	}
	deliveries.WithLabelValues(topic, "ok").Inc()
}

func (r *Registry) report(ctx context.Context, err *HandlerError) {
	if r.errs == nil {
		zap.L().Error("contract log handler failed",
			zap.String("topic", err.Topic),
			zap.String("stage", err.Stage),
			zap.Uint64("block", err.Log.BlockNumber),
			zap.String("tx", err.Log.TxHash.Hex()),
			zap.Error(err.Err))
		return
	}
	select {
	case r.errs <- err:
	case <-ctx.Done():
	case <-r.done:
	}
}
