// Package iocache persists build runs and their handed-off yields.
package iocache

import (
	"sync"

	"github.com/hfconf/hfconf/internal/contract"
)

// StoreManager manages the store instances of a process.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	runs         contract.RunStore
}

var _ contract.StoreManager = &StoreManager{} // Compile-time check

// GetRunStore returns the RunStore, or nil when run tracking is not initialized.
func (mgr *StoreManager) GetRunStore() contract.RunStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.runs
}
