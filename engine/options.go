package engine

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/katalvlaran/transformlab/store"
	"github.com/katalvlaran/transformlab/transform"
)

// Option configures an Engine before creation.
type Option func(o *options)

type options struct {
	logger    *log.Logger
	idFn      IDFn
	clamp     bool
	observers []Observer
}

func defaultOptions() options {
	return options{
		logger: log.New(io.Discard),
		idFn:   UUIDIDFn,
	}
}

// WithLogger sets the logger; commits are logged at debug, rejections at warn.
func WithLogger(l *log.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithIDScheme sets the generator for ids not given explicitly.
func WithIDScheme(fn IDFn) Option {
	return func(o *options) {
		if fn != nil {
			o.idFn = fn
		}
	}
}

// WithClampFactors clamps out-of-range factors instead of rejecting them.
func WithClampFactors() Option {
	return func(o *options) { o.clamp = true }
}

// WithObserver adds an event observer (metrics, tracing).
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

func (o options) storeOptions() []store.Option {
	if o.clamp {
		return []store.Option{store.WithClampFactors()}
	}

	return nil
}

// AddOption customizes a descriptor created by AddTransform.
type AddOption func(a *addConfig)

type addConfig struct {
	d          transform.Descriptor
	explicitID bool
}

// WithParameters replaces the kind's default parameters.
func WithParameters(p ...float64) AddOption {
	return func(a *addConfig) { a.d.Parameters = append([]float64(nil), p...) }
}

// WithFactor sets the initial factor (default 1).
func WithFactor(f float64) AddOption {
	return func(a *addConfig) { a.d.Factor = f }
}

// WithName sets the display name (default: the kind's display name).
func WithName(name string) AddOption {
	return func(a *addConfig) { a.d.Name = name }
}

// WithID uses id instead of generating one.
func WithID(id string) AddOption {
	return func(a *addConfig) {
		a.d.ID = id
		a.explicitID = true
	}
}
