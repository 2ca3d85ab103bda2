// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package randvar

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Uniform is a random number generator that generates draws from a uniform
// distribution over [min, max]. It is not safe for concurrent use.
type Uniform struct {
	min uint64
	max uint64
	rng *rand.Rand
}

// NewUniform constructs a new Uniform generator with the given parameters.
// Panics if min > max.
func NewUniform(rng *rand.Rand, min, max uint64) *Uniform {
	if min > max {
		panic(fmt.Sprintf("randvar: invalid uniform range [%d, %d]", min, max))
	}
	return &Uniform{min: min, max: max, rng: ensureRand(rng)}
}

// Uint64 returns a random Uint64 between min and max, drawn from a uniform
// distribution.
func (g *Uniform) Uint64() uint64 {
	return g.rng.Uint64n(g.max-g.min+1) + g.min
}
