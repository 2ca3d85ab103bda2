// Copyright 2025 The Cinder Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInMemLogger(t *testing.T) {
	var l InMemLogger
	l.Infof("hello %d", 1)
	l.Errorf("oops\n")
	require.Equal(t, "hello 1\noops\n", l.String())

	l.Reset()
	require.Equal(t, "", l.String())

	// Fatalf stops the calling goroutine after logging.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		l.Fatalf("fatal")
		t.Error("Fatalf returned")
	}()
	wg.Wait()
	require.Equal(t, "fatal\n", l.String())
}

func TestNoopLogger(t *testing.T) {
	var l NoopLogger
	l.Infof("ignored")
	l.Errorf("ignored")
	require.PanicsWithValue(t, "fatal 2", func() { l.Fatalf("fatal %d", 2) })
}
