package users

// Repo is the credential-store contract. The shipped implementation is a
// static in-memory store seeded at startup, but the interface allows
// swapping in a dynamic backend.
type Repo interface {
	Upsert(user *User) error
	Delete(identity string) error
	GetByIdentity(identity string) (*User, error)
	List() ([]*User, error)
}
