package fortune

import (
	"context"
	"slices"
	"strings"
)

// Engine draws outcomes in-process. It holds only the immutable catalog and
// the entropy collector, so one Engine serves concurrent draws.
type Engine struct {
	catalog   *Catalog
	collector *Collector
}

// Option configures an Engine.
type Option func(*Engine)

// WithCollector replaces the entropy collector, mostly for tests.
func WithCollector(c *Collector) Option {
	return func(e *Engine) {
		e.collector = c
	}
}

// NewEngine validates catalog and returns an Engine drawing from a private
// copy of it.
func NewEngine(catalog *Catalog, opts ...Option) (*Engine, error) {
	if catalog == nil {
		return nil, &ConfigurationError{Reason: "nil catalog"}
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		catalog:   catalog.Clone(),
		collector: NewCollector(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Catalog returns a copy of the catalog the engine draws from.
func (e *Engine) Catalog() *Catalog {
	return e.catalog.Clone()
}

// Draw validates the wish, collects a seed and runs the draw. Invalid input
// is rejected before any randomness is consumed.
func (e *Engine) Draw(ctx context.Context, machine, message string) (*Outcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !e.catalog.HasMachine(machine) {
		return nil, &InvalidMachineTypeError{Machine: machine}
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	seed := e.collector.Collect(machine, message)
	return e.run(machine, seed)
}

// Reproduce runs the draw for machine from a fixed seed, skipping entropy
// collection. The same seed always yields the same Outcome.
func (e *Engine) Reproduce(machine string, seed uint32) (*Outcome, error) {
	if !e.catalog.HasMachine(machine) {
		return nil, &InvalidMachineTypeError{Machine: machine}
	}
	return e.run(machine, seed)
}

func (e *Engine) run(machine string, seed uint32) (*Outcome, error) {
	scenes, err := FilterScenes(machine, e.catalog.Scenes)
	if err != nil {
		return nil, err
	}

	// Order matters: each choice advances the shared sequence.
	rng := NewSequence(seed)
	scene, err := Choose(scenes, rng)
	if err != nil {
		return nil, &ConfigurationError{Reason: "scene choice", Err: err}
	}
	miss, err := Choose(e.catalog.MissBuckets, rng)
	if err != nil {
		return nil, &ConfigurationError{Reason: "miss bucket choice", Err: err}
	}
	food, err := Choose(scene.FoodCategories, rng)
	if err != nil {
		return nil, &ConfigurationError{Reason: "food choice for scene " + scene.ID, Err: err}
	}

	return assemble(scene, food, miss)
}

func assemble(scene Scene, food, miss string) (*Outcome, error) {
	if !slices.Contains(scene.FoodCategories, food) {
		return nil, &ConfigurationError{Reason: "food " + food + " not offered by scene " + scene.ID}
	}
	return &Outcome{
		Scene: scene.clone(),
		Food:  food,
		Miss:  miss,
	}, nil
}
