// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package health

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/manaproject/mana/builtin/settlement"
)

func TestHealthReady(t *testing.T) {
	h := New(func() error { return nil })

	assert.False(t, h.Status().Healthy)
	h.Ready(true)
	status := h.Status()
	assert.True(t, status.Healthy)
	assert.Nil(t, status.LastOperation)
}

func TestHealthProbe(t *testing.T) {
	h := New(func() error { return errors.New("closed") })
	h.Ready(true)

	status := h.Status()
	assert.False(t, status.Healthy)
	assert.Equal(t, "closed", status.StoreError)
}

func TestHealthLastOperation(t *testing.T) {
	h := New(nil)
	h.Ready(true)

	var sink settlement.EventSink = h
	assert.NoError(t, sink.Publish(&settlement.Receipt{Seq: 7, Op: "stake", Timestamp: 1_700_000_000}))

	status := h.Status()
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(7), status.LastOperation.Seq)
	assert.Equal(t, "stake", status.LastOperation.Op)
	assert.Equal(t, int64(1_700_000_000), status.LastOperation.Timestamp.Unix())
}
