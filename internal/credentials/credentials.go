// Package credentials isolates password handling behind a small verifier
// interface so the identity store only ever sees opaque credential strings.
package credentials

import (
	"golang.org/x/crypto/bcrypt"

	pkgerrors "huddle/pkg/errors"
)

// Verifier hashes plaintext credentials and checks them later.
type Verifier interface {
	Hash(plain string) (string, error)
	Compare(stored, plain string) error
}

// BcryptVerifier is the default Verifier.
type BcryptVerifier struct {
	cost int
}

func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{cost: bcrypt.DefaultCost}
}

func (v *BcryptVerifier) Hash(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), v.cost)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, "failed to hash credential", err)
	}
	return string(hash), nil
}

func (v *BcryptVerifier) Compare(stored, plain string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(plain)); err != nil {
		return pkgerrors.ErrBadCredential
	}
	return nil
}
