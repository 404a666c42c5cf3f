// Package identity owns account records and the friend graph. All other
// components reference accounts only through normalized usernames.
package identity

import "context"

// Store is the contract every account store implements. Mutating calls mark
// the store dirty so the persistence gateway knows a snapshot is due.
type Store interface {
	// Ensure returns the account for username, creating an empty one if it
	// does not exist yet. Never fails on a well-formed username.
	Ensure(ctx context.Context, username string) (Account, error)

	// Register creates an account with a verifier-hashed credential.
	Register(ctx context.Context, username, password string) (Account, error)

	// Verify checks a credential and returns the account on success.
	Verify(ctx context.Context, username, password string) (Account, error)

	// Find returns a copy of the account or ErrUserNotFound.
	Find(ctx context.Context, username string) (Account, error)

	// ExecutePair runs validate then mutate on two accounts as one atomic
	// step under the store's write lock. No concurrent reader can observe a
	// half-applied transition.
	ExecutePair(ctx context.Context, a, b string,
		validate func(a, b *Account) error,
		mutate func(a, b *Account)) (Account, Account, error)

	// Export returns a deep copy of every account for snapshotting.
	Export(ctx context.Context) (map[string]Account, error)

	// Import replaces the store contents, used on startup restore.
	Import(ctx context.Context, accounts map[string]Account) error

	// Dirty reports whether a mutation happened since the last MarkClean.
	Dirty() bool
	MarkClean()
}
