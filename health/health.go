// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"sync"
	"time"

	"github.com/manaproject/mana/builtin/settlement"
)

// LastOperation describes the newest settled operation.
type LastOperation struct {
	Seq       uint64     `json:"seq"`
	Op        string     `json:"op"`
	Timestamp *time.Time `json:"timestamp"`
}

type Status struct {
	Healthy       bool           `json:"healthy"`
	Ready         bool           `json:"ready"`
	StoreError    string         `json:"storeError,omitempty"`
	LastOperation *LastOperation `json:"lastOperation"`
}

// Health reports the liveness of the node. It subscribes to engine receipts
// and probes the store on every status request.
type Health struct {
	lock  sync.RWMutex
	probe func() error
	last  *LastOperation
	ready bool
}

// New creates a Health. probe should read from the store.
func New(probe func() error) *Health {
	return &Health{probe: probe}
}

// Publish records r as the newest operation.
func (h *Health) Publish(r *settlement.Receipt) error {
	h.lock.Lock()
	defer h.lock.Unlock()

	ts := time.Unix(int64(r.Timestamp), 0)
	h.last = &LastOperation{Seq: r.Seq, Op: r.Op, Timestamp: &ts}
	return nil
}

// Ready marks the end of startup.
func (h *Health) Ready(ready bool) {
	h.lock.Lock()
	defer h.lock.Unlock()

	h.ready = ready
}

func (h *Health) Status() *Status {
	h.lock.RLock()
	defer h.lock.RUnlock()

	status := &Status{Ready: h.ready, LastOperation: h.last}
	if h.probe != nil {
		if err := h.probe(); err != nil {
			status.StoreError = err.Error()
		}
	}
	status.Healthy = h.ready && status.StoreError == ""
	return status
}
