// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package cinder

import (
	"testing"

	"github.com/cinderkv/cinder/internal/base"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	metric := &dto.Metric{}
	require.NoError(t, c.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestIteratorMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics := NewIteratorMetrics(reg)

	keys := [][]byte{
		base.ParseInternalKey("a#2,SET").AppendEncoded(nil),
		[]byte("bad"),
		base.ParseInternalKey("b#1,SET").AppendEncoded(nil),
	}
	vals := [][]byte{[]byte("a"), nil, []byte("b")}

	var samples int
	for i := 0; i < 2; i++ {
		iter := NewIterator(base.NewFakeIterRaw(nil, keys, vals), SeqNumMax, &IterOptions{
			Logger:             base.NoopLogger{},
			Metrics:            metrics,
			ReadSampler:        ReadSamplerFunc(func([]byte) { samples++ }),
			ReadSamplingPeriod: 1,
			ReadSamplingSeed:   uint64(i + 1),
		})
		for valid := iter.First(); valid; valid = iter.Next() {
		}
		// Metrics are only published on Close.
		require.Equal(t, float64(i), counterValue(t, metrics.CorruptKeys))
		_ = iter.Close()
	}

	require.Equal(t, float64(2), counterValue(t, metrics.CorruptKeys))
	require.Equal(t, float64(samples), counterValue(t, metrics.ReadSamples))
	// Per iterator: two steps to reach b and one more to exhaust.
	require.Equal(t, float64(6), counterValue(t, metrics.InternalSteps.WithLabelValues("forward")))
	require.Equal(t, float64(0), counterValue(t, metrics.InternalSteps.WithLabelValues("reverse")))

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.ElementsMatch(t, []string{
		"cinder_iterator_read_samples_total",
		"cinder_iterator_corrupt_keys_total",
		"cinder_iterator_internal_steps_total",
	}, names)
}

func TestIteratorMetricsUnregistered(t *testing.T) {
	metrics := NewIteratorMetrics(nil)
	iter := NewIterator(base.NewFakeIter(nil, base.FakeKVs("a#1,SET:a")), SeqNumMax, &IterOptions{Metrics: metrics})
	require.True(t, iter.First())
	require.NoError(t, iter.Close())
	require.Equal(t, float64(0), counterValue(t, metrics.ReadSamples))
	require.Equal(t, float64(0), counterValue(t, metrics.InternalSteps.WithLabelValues("forward")))
}
