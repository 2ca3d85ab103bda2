// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"os"
	"strconv"

	"github.com/cinderkv/cinder"
	"github.com/cinderkv/cinder/internal/base"
	"github.com/cockroachdb/errors"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
)

// config is the contents of the --config file.
//
//	seq: 42
//	read_sampling_period: 4096
//	seed: 7
type config struct {
	SeqNum             *uint64 `yaml:"seq"`
	ReadSamplingPeriod int64   `yaml:"read_sampling_period"`
	Seed               uint64  `yaml:"seed"`
}

// loadConfig reads the config file at path. An empty path yields the zero
// config.
func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %s", path)
	}
	if cfg.SeqNum != nil && base.SeqNum(*cfg.SeqNum) > base.SeqNumMax {
		return cfg, errors.Newf("config %s: seq %d out of range", path, *cfg.SeqNum)
	}
	return cfg, nil
}

// iterOptions returns the iterator options described by the config.
func (c config) iterOptions(sampler cinder.ReadSampler) *cinder.IterOptions {
	return &cinder.IterOptions{
		ReadSampler:        sampler,
		ReadSamplingPeriod: c.ReadSamplingPeriod,
		ReadSamplingSeed:   c.Seed,
	}
}

// snapshot returns the snapshot sequence number: the --seq flag when given,
// otherwise the config's seq, otherwise the latest.
func (c config) snapshot(cmd *cobra.Command, f *flags) (cinder.SeqNum, error) {
	if !cmd.Flags().Changed("seq") && c.SeqNum != nil {
		return cinder.SeqNum(*c.SeqNum), nil
	}
	return parseSeqNum(f.seqNum)
}

func parseSeqNum(s string) (cinder.SeqNum, error) {
	if s == "" || s == "inf" {
		return cinder.SeqNumMax, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid sequence number %q", s)
	}
	if cinder.SeqNum(n) > cinder.SeqNumMax {
		return 0, errors.Newf("sequence number %d out of range", n)
	}
	return cinder.SeqNum(n), nil
}
