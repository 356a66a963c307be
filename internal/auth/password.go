package auth

import "golang.org/x/crypto/bcrypt"

// Cost is the bcrypt work factor used for every stored hash. 12 keeps
// interactive login under ~300ms on current server hardware while
// staying expensive enough for offline attacks.
const Cost = 12

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword reports whether pw matches the stored hash. A malformed
// or empty hash is a non-match, never an error.
func VerifyPassword(encoded, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(encoded), []byte(pw)) == nil
}

// burnHash is a throwaway hash generated at the same cost as stored
// ones, so BurnVerify performs the full key derivation rather than
// bailing out on a malformed input.
var burnHash = func() []byte {
	b, err := bcrypt.GenerateFromPassword([]byte("burn"), Cost)
	if err != nil {
		panic(err)
	}
	return b
}()

// BurnVerify runs a full-cost comparison against a hash that matches
// nothing, and always reports false. Login calls it when no account
// matches the submitted email, so an unknown address takes as long to
// reject as a wrong password.
func BurnVerify(pw string) bool {
	_ = bcrypt.CompareHashAndPassword(burnHash, []byte(pw))
	return false
}
