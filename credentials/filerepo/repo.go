// Package filerepo persists the credential pair as a JSON document on disk so
// that a session survives client restarts. The file is created with mode 0600
// and its parent directory with 0700.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-auth-client/credentials"
	"github.com/pkg/errors"
)

var _ credentials.Repo = (*Repo)(nil)

// Repo is a file-backed credential store.
type Repo struct {
	path string
	lock sync.Mutex
}

func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Get() (*credentials.Pair, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	blob, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, credentials.NotFoundErr
	}
	if err != nil {
		return nil, errors.Wrap(err, "[Repo.Get] read credentials file")
	}

	var pair credentials.Pair
	if err := json.Unmarshal(blob, &pair); err != nil {
		return nil, errors.Wrap(err, "[Repo.Get] decode credentials file")
	}
	if pair.AccessToken == "" {
		return nil, credentials.NotFoundErr
	}
	return &pair, nil
}

func (r *Repo) Set(pair *credentials.Pair) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	blob, err := json.MarshalIndent(pair, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[Repo.Set] encode credentials")
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0700); err != nil {
		return errors.Wrap(err, "[Repo.Set] create credentials directory")
	}
	if err := os.WriteFile(r.path, blob, 0600); err != nil {
		return errors.Wrap(err, "[Repo.Set] write credentials file")
	}
	return nil
}

func (r *Repo) Clear() error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "[Repo.Clear] remove credentials file")
	}
	return nil
}
