// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import (
	"bytes"
	"fmt"

	"github.com/cinderkv/cinder/internal/base"
	"github.com/cockroachdb/errors"
)

// DefaultReadSamplingPeriod is the average number of bytes scanned between
// read samples. It matches LevelDB's config::kReadBytesPeriod.
const DefaultReadSamplingPeriod = 1 << 20

// IterOptions hold the optional per-iterator parameters. It is always valid to
// pass a nil *IterOptions, which means to use the default parameter values.
// Any zero field of a non-nil *IterOptions also means to use the default
// value for that parameter.
type IterOptions struct {
	// Comparer defines the ordering of user keys. It must be the comparer the
	// internal iterator was sorted with. The default is DefaultComparer.
	Comparer *Comparer

	// ReadSampler receives periodic samples of the internal keys scanned by
	// the iterator. A nil ReadSampler disables read sampling.
	ReadSampler ReadSampler

	// ReadSamplingPeriod is the average number of scanned key+value bytes
	// between calls to ReadSampler.RecordReadSample. The gap between samples
	// is drawn uniformly from [0, 2*ReadSamplingPeriod). A negative value
	// disables read sampling. The default is DefaultReadSamplingPeriod.
	ReadSamplingPeriod int64

	// ReadSamplingSeed seeds the random source used to draw sampling gaps.
	// Iterators constructed with the same non-zero seed over the same data
	// sample identically. Zero selects a time-based seed.
	ReadSamplingSeed uint64

	// Logger is used to report corruption. The default is DefaultLogger.
	Logger Logger

	// Metrics, if non-nil, accumulates counters across iterators.
	Metrics *IteratorMetrics
}

// EnsureDefaults ensures that the default values for all options are set if a
// valid value was not already specified. Returns the new options.
func (o *IterOptions) EnsureDefaults() *IterOptions {
	if o == nil {
		o = &IterOptions{}
	}
	o.Comparer = o.Comparer.EnsureDefaults()
	if o.ReadSamplingPeriod == 0 {
		o.ReadSamplingPeriod = DefaultReadSamplingPeriod
	}
	if o.Logger == nil {
		o.Logger = base.DefaultLogger{}
	}
	return o
}

// Validate verifies that the options are mutually consistent.
func (o *IterOptions) Validate() error {
	if o == nil {
		return nil
	}
	if c := o.Comparer; c != nil {
		if c.Compare == nil {
			return errors.New("cinder: comparer has no Compare function")
		}
		if c.Name == "" {
			return errors.New("cinder: comparer has no name")
		}
	}
	return nil
}

func (o *IterOptions) readSamplingEnabled() bool {
	return o.ReadSampler != nil && o.ReadSamplingPeriod > 0
}

// String returns a human-readable description of the options.
func (o *IterOptions) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[Iterator]\n")
	comparer := "<default>"
	if o.Comparer != nil {
		comparer = o.Comparer.Name
	}
	fmt.Fprintf(&buf, "  comparer=%s\n", comparer)
	fmt.Fprintf(&buf, "  read_sampling=%t\n", o.ReadSampler != nil)
	fmt.Fprintf(&buf, "  read_sampling_period=%d\n", o.ReadSamplingPeriod)
	fmt.Fprintf(&buf, "  read_sampling_seed=%d\n", o.ReadSamplingSeed)
	fmt.Fprintf(&buf, "  metrics=%t\n", o.Metrics != nil)
	return buf.String()
}
