// Package fortune draws wish outcomes: a scene, a food category within that
// scene and a miss-count bucket.
//
// A draw runs as a fresh pipeline every time: entropy collection produces a
// seed, the seed drives a Sequence, the catalog is filtered for the machine
// type and three choices are made from the sequence in a fixed order.
// Nothing is shared between draws except the immutable Catalog.
package fortune

import (
	"context"
	"fmt"
	"slices"
)

// Scene is a themed draw context with its own food categories.
type Scene struct {
	ID             string   `json:"id"`
	Label          string   `json:"label"`
	FoodCategories []string `json:"food_categories"`
}

func (s Scene) clone() Scene {
	s.FoodCategories = slices.Clone(s.FoodCategories)
	return s
}

// Outcome is the result of a single draw.
type Outcome struct {
	Scene Scene  `json:"scene"`
	Food  string `json:"food"`
	Miss  string `json:"miss"`
}

// WishRequest is the user submission a draw is made for.
type WishRequest struct {
	Machine string `json:"machine"`
	Message string `json:"message"`
}

// Drawer produces an Outcome for a wish.
// Engine draws in-process; remote.Client delegates to an evaluator over HTTP.
type Drawer interface {
	Draw(ctx context.Context, machine, message string) (*Outcome, error)
}

// Catalog is the static configuration every draw runs against.
type Catalog struct {
	Machines    []string
	Scenes      []Scene
	MissBuckets []string
}

// HasMachine reports whether machine is one of the catalog's machine types.
func (c *Catalog) HasMachine(machine string) bool {
	return slices.Contains(c.Machines, machine)
}

// Scene returns the scene with the given id.
func (c *Catalog) Scene(id string) (Scene, bool) {
	for _, s := range c.Scenes {
		if s.ID == id {
			return s.clone(), true
		}
	}
	return Scene{}, false
}

// Clone returns a deep copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		Machines:    slices.Clone(c.Machines),
		Scenes:      make([]Scene, len(c.Scenes)),
		MissBuckets: slices.Clone(c.MissBuckets),
	}
	for i, s := range c.Scenes {
		out.Scenes[i] = s.clone()
	}
	return out
}

// Validate checks the invariants a draw relies on. Every machine type must
// keep at least one scene after filtering, and every option list a draw
// chooses from must be non-empty.
func (c *Catalog) Validate() error {
	if len(c.Machines) == 0 {
		return &ConfigurationError{Reason: "no machine types"}
	}
	seenMachines := make(map[string]struct{}, len(c.Machines))
	for _, m := range c.Machines {
		if m == "" {
			return &ConfigurationError{Reason: "empty machine type label"}
		}
		if _, dup := seenMachines[m]; dup {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate machine type %q", m)}
		}
		seenMachines[m] = struct{}{}
	}

	if len(c.Scenes) == 0 {
		return &ConfigurationError{Reason: "no scenes"}
	}
	seenScenes := make(map[string]struct{}, len(c.Scenes))
	for _, s := range c.Scenes {
		if s.ID == "" {
			return &ConfigurationError{Reason: "scene without id"}
		}
		if _, dup := seenScenes[s.ID]; dup {
			return &ConfigurationError{Reason: fmt.Sprintf("duplicate scene id %q", s.ID)}
		}
		seenScenes[s.ID] = struct{}{}
		if len(s.FoodCategories) == 0 {
			return &ConfigurationError{Reason: fmt.Sprintf("scene %q has no food categories", s.ID)}
		}
	}

	if len(c.MissBuckets) == 0 {
		return &ConfigurationError{Reason: "no miss buckets"}
	}

	for _, m := range c.Machines {
		if _, err := FilterScenes(m, c.Scenes); err != nil {
			return &ConfigurationError{Reason: fmt.Sprintf("machine %q has no eligible scenes", m)}
		}
	}
	return nil
}
