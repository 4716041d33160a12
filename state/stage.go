// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"

	"github.com/ethereum/go-ethereum/rlp"
	"golang.org/x/crypto/blake2b"

	"github.com/manaproject/mana/mana"
)

type stageEntry struct {
	key storageKey
	val rlp.RawValue
}

// Stage abstracts the pending changes of a state.
type Stage struct {
	stater  *Stater
	entries []stageEntry
}

// Len returns count of changed slots.
func (s *Stage) Len() int {
	return len(s.entries)
}

// Hash computes a digest over the changed slots in key order.
func (s *Stage) Hash() mana.Bytes32 {
	hasher, _ := blake2b.New256(nil)
	for _, e := range s.entries {
		hasher.Write(e.key.addr[:])
		hasher.Write(e.key.key[:])
		hasher.Write(e.val)
	}
	var h mana.Bytes32
	hasher.Sum(h[:0])
	return h
}

// Commit writes all changes into the store atomically.
func (s *Stage) Commit() error {
	if len(s.entries) == 0 {
		return nil
	}
	s.stater.mu.Lock()
	defer s.stater.mu.Unlock()

	bulk := s.stater.store.Bulk()
	for _, e := range s.entries {
		var err error
		if len(e.val) == 0 {
			err = bulk.Delete(e.key.dbKey())
		} else {
			err = bulk.Put(e.key.dbKey(), e.val)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for _, e := range s.entries {
		s.stater.cache.Add(e.key, rlp.RawValue(bytes.Clone(e.val)))
	}
	return nil
}

// Undo builds the stage restoring the currently committed values of every
// slot this stage changes. It must be built before Commit.
func (s *Stage) Undo() (*Stage, error) {
	entries := make([]stageEntry, 0, len(s.entries))
	for _, e := range s.entries {
		val, _, err := s.stater.load(e.key)
		if err != nil {
			return nil, &Error{err}
		}
		entries = append(entries, stageEntry{e.key, val})
	}
	return &Stage{stater: s.stater, entries: entries}, nil
}
