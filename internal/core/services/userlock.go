package services

import "sync"

// UserLocks serializes operations per user. Calculations, progress
// mutations and materializations all read-then-write the same debt
// record, so the same instance must be shared by every service touching
// it. Different users never contend.
type UserLocks struct {
	locks sync.Map // userID -> *sync.Mutex
}

func NewUserLocks() *UserLocks {
	return &UserLocks{}
}

// Lock acquires the user's mutex and returns the unlock func.
func (l *UserLocks) Lock(userID string) func() {
	v, _ := l.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
