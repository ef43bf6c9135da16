// © 2025 Ieclang Contributors
//
// SPDX-License-Identifier: Apache-2.0

package plc

import "sync/atomic"

// IdProvider hands out monotonically increasing node ids. Copies share the
// same counter, so one provider can be handed to parses running in parallel.
type IdProvider struct {
	counter *atomic.Int64
}

func NewIdProvider() IdProvider {
	return IdProvider{counter: &atomic.Int64{}}
}

func (p IdProvider) Next() int64 {
	return p.counter.Add(1)
}
