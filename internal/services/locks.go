package services

import "sync"

// userLocks serializes mutating operations per user inside one process.
type userLocks struct {
	locks sync.Map
}

func (registry *userLocks) lock(userID uint) func() {
	value, _ := registry.locks.LoadOrStore(userID, &sync.Mutex{})
	mutex := value.(*sync.Mutex)
	mutex.Lock()
	return mutex.Unlock
}
