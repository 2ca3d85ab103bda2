// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import "github.com/cinderkv/cinder/internal/randvar"

// ReadSampler is notified of a sample of the internal keys an Iterator scans,
// on average once per IterOptions.ReadSamplingPeriod bytes. A storage engine
// uses the samples to find key ranges that are read often enough to be worth
// compacting. Samples never influence iteration.
type ReadSampler interface {
	// RecordReadSample is called with the encoded internal key of a scanned
	// entry. The key is only valid for the duration of the call.
	RecordReadSample(key []byte)
}

// ReadSamplerFunc adapts a function to the ReadSampler interface.
type ReadSamplerFunc func(key []byte)

// RecordReadSample implements ReadSampler.
func (f ReadSamplerFunc) RecordReadSample(key []byte) {
	f(key)
}

// readSampling tracks the number of bytes remaining until the next read
// sample.
type readSampling struct {
	sampler          ReadSampler
	bytesUntilSample int64
	period           *randvar.Uniform
	// samples counts the calls made to sampler.
	samples int
}

func (s *readSampling) init(opts *IterOptions) {
	if !opts.readSamplingEnabled() {
		return
	}
	s.sampler = opts.ReadSampler
	rng := randvar.NewRand(opts.ReadSamplingSeed)
	s.period = randvar.NewUniform(rng, 0, uint64(2*opts.ReadSamplingPeriod-1))
	s.bytesUntilSample = s.randomPeriod()
}

func (s *readSampling) randomPeriod() int64 {
	return int64(s.period.Uint64())
}

// maybeSample charges n scanned bytes against the sampling budget and records
// as many samples of key as the budget overdraws.
func (s *readSampling) maybeSample(key []byte, n int) {
	if s.sampler == nil {
		return
	}
	s.bytesUntilSample -= int64(n)
	for s.bytesUntilSample < 0 {
		s.bytesUntilSample += s.randomPeriod()
		s.samples++
		s.sampler.RecordReadSample(key)
	}
}
