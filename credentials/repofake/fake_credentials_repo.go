package repofake

import (
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
)

var _ credentials.Repo = (*FakeCredentialsRepo)(nil)

// FakeCredentialsRepo is an in-memory credential store for tests.
type FakeCredentialsRepo struct {
	lock sync.RWMutex
	pair *credentials.Pair

	SetCalls   int
	ClearCalls int
}

func NewFakeCredentialsRepo() *FakeCredentialsRepo {
	return &FakeCredentialsRepo{}
}

func (cr *FakeCredentialsRepo) Get() (*credentials.Pair, error) {
	cr.lock.RLock()
	defer cr.lock.RUnlock()

	if cr.pair == nil || cr.pair.AccessToken == "" {
		return nil, credentials.NotFoundErr
	}
	pair := *cr.pair
	return &pair, nil
}

func (cr *FakeCredentialsRepo) Set(pair *credentials.Pair) error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	copied := *pair
	cr.pair = &copied
	cr.SetCalls++
	return nil
}

func (cr *FakeCredentialsRepo) Clear() error {
	cr.lock.Lock()
	defer cr.lock.Unlock()

	cr.pair = nil
	cr.ClearCalls++
	return nil
}
