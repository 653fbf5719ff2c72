package profilestore

import "github.com/attuneweb/attune/internal/profile"

// Store defines the interface for profile persistence. Consumers should
// depend on this interface rather than the concrete *DB type to facilitate
// testing with mocks.
type Store interface {
	Get(userID string) (*profile.Profile, error)
	Create(userID string, p *profile.Profile) (*profile.Profile, error)
	Update(userID string, p *profile.Profile) (*profile.Profile, error)
	Delete(userID string) error
	List(limit, offset int) ([]Record, int, error)
	Close() error
}

// Verify *DB satisfies Store at compile time.
var _ Store = (*DB)(nil)
