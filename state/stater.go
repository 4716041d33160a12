// Copyright (c) 2026 The MANA developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/manaproject/mana/cache"
	"github.com/manaproject/mana/kv"
)

const storageCacheSize = 8192

// Stater is the state creator.
// States created by the same stater share a cache of committed storage values,
// so stages must be committed through the stater's states only.
type Stater struct {
	store kv.Store
	cache *cache.LRU
	mu    sync.RWMutex // guards store writes against cache fills
}

// NewStater create a new stater.
func NewStater(store kv.Store) *Stater {
	c, _ := cache.NewLRU(storageCacheSize)
	return &Stater{
		store: StorageBucket.NewStore(store),
		cache: c,
	}
}

// NewState create a new state object.
func (s *Stater) NewState() *State {
	return newState(s)
}

// CacheStats returns hit/miss stats of the storage cache.
func (s *Stater) CacheStats() *cache.Stats {
	return s.cache.Stats()
}

func (s *Stater) load(key storageKey) (rlp.RawValue, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.cache.GetOrLoad(key, func(any) (any, error) {
		val, err := s.store.Get(key.dbKey())
		if err != nil {
			if s.store.IsNotFound(err) {
				return rlp.RawValue(nil), nil
			}
			return nil, err
		}
		return rlp.RawValue(val), nil
	})
	if err != nil {
		return nil, false, err
	}
	return v.(rlp.RawValue), true, nil
}
