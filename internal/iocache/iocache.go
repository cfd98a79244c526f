package iocache

import (
	"sync"

	"github.com/seeyebe/gmap/internal/contract"
)

// CacheStoreManager owns the commit store of the running command.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointer during initialization
	commits      contract.CommitStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetCommitStore returns the commit store, or nil before InitStores succeeds.
func (mgr *CacheStoreManager) GetCommitStore() contract.CommitStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.commits
}
