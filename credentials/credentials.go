// Package credentials defines the durable token pair issued by the remote
// authentication API and the store that owns it. The store is the only
// component with access to persisted tokens; everything else borrows a Pair
// for the duration of a single operation.
package credentials

import "errors"

var (
	NotFoundErr = errors.New("credentials not found")
)

// Pair holds the opaque access and refresh tokens. The access token is
// replaced on every successful refresh; both are deleted on logout or on an
// irrecoverable authentication failure.
type Pair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Repo is the process-wide credential store. Implementations must be safe for
// concurrent use and idempotent: Set overwrites, Clear on an empty store is a
// no-op. Get returns NotFoundErr when no access token is stored - the absence
// of an access token is the sole unauthenticated signal.
type Repo interface {
	Get() (*Pair, error)
	Set(pair *Pair) error
	Clear() error
}
