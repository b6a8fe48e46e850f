package fakestore

import (
	"sync"

	"github.com/aikuplatform/authbridge/authstate"
)

var _ authstate.Store = (*FakeStore)(nil)

// FakeStore is an in-memory Store with injectable failures, for exercising
// the StorageError paths of the coordinator.
type FakeStore struct {
	lock    sync.RWMutex
	pending *authstate.PendingState

	SaveErr  error
	LoadErr  error
	ClearErr error

	SaveCalls  int
	LoadCalls  int
	ClearCalls int
}

func NewFakeStore() *FakeStore {
	return &FakeStore{}
}

func (fs *FakeStore) Save(state authstate.PendingState) error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.SaveCalls++
	if fs.SaveErr != nil {
		return fs.SaveErr
	}
	stored := state
	fs.pending = &stored
	return nil
}

func (fs *FakeStore) Load() (*authstate.PendingState, error) {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.LoadCalls++
	if fs.LoadErr != nil {
		return nil, fs.LoadErr
	}
	if fs.pending == nil {
		return nil, nil
	}
	loaded := *fs.pending
	return &loaded, nil
}

func (fs *FakeStore) Clear() error {
	fs.lock.Lock()
	defer fs.lock.Unlock()
	fs.ClearCalls++
	if fs.ClearErr != nil {
		return fs.ClearErr
	}
	fs.pending = nil
	return nil
}
