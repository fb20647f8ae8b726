// internal/app/system/ledger/cache.go
package ledger

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

type bindingKey struct {
	address    common.Address
	credential string
}

// Cache holds one contract binding and rebuilds it only when the contract
// address or the credential identity changes. It is safe for concurrent use.
type Cache[T any] struct {
	mu    sync.Mutex
	key   bindingKey
	value T
	ok    bool
}

// Get returns the cached binding for (addr, credential), calling build when
// the key differs from the cached one.
func (c *Cache[T]) Get(addr common.Address, credential string, build func() (T, error)) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := bindingKey{address: addr, credential: credential}
	if c.ok && c.key == key {
		return c.value, nil
	}

	v, err := build()
	if err != nil {
		var zero T
		return zero, err
	}
	c.key, c.value, c.ok = key, v, true
	return v, nil
}

