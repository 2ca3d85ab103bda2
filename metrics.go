// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import "github.com/prometheus/client_golang/prometheus"

// IteratorMetrics holds prometheus counters accumulated across all iterators
// that share it through IterOptions.Metrics. An iterator adds its counts when
// it is closed.
type IteratorMetrics struct {
	// ReadSamples counts calls to ReadSampler.RecordReadSample.
	ReadSamples prometheus.Counter
	// CorruptKeys counts internal keys that failed to decode.
	CorruptKeys prometheus.Counter
	// InternalSteps counts single-step movements of the internal iterator,
	// labelled by direction ("forward" or "reverse").
	InternalSteps *prometheus.CounterVec
}

// NewIteratorMetrics constructs the iterator counters and registers them with
// reg. A nil reg leaves the counters unregistered.
func NewIteratorMetrics(reg prometheus.Registerer) *IteratorMetrics {
	m := &IteratorMetrics{
		ReadSamples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinder",
			Subsystem: "iterator",
			Name:      "read_samples_total",
			Help:      "Number of read samples recorded by iterators.",
		}),
		CorruptKeys: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "cinder",
			Subsystem: "iterator",
			Name:      "corrupt_keys_total",
			Help:      "Number of undecodable internal keys encountered by iterators.",
		}),
		InternalSteps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cinder",
			Subsystem: "iterator",
			Name:      "internal_steps_total",
			Help:      "Number of internal iterator steps taken by iterators.",
		}, []string{"direction"}),
	}
	if reg != nil {
		reg.MustRegister(m.ReadSamples, m.CorruptKeys, m.InternalSteps)
	}
	return m
}

func (m *IteratorMetrics) add(stats *IteratorStats) {
	if m == nil {
		return
	}
	m.ReadSamples.Add(float64(stats.ReadSampleCount))
	m.CorruptKeys.Add(float64(stats.CorruptKeyCount))
	m.InternalSteps.WithLabelValues("forward").Add(float64(stats.ForwardStepCount[InternalIterCall]))
	m.InternalSteps.WithLabelValues("reverse").Add(float64(stats.ReverseStepCount[InternalIterCall]))
}
