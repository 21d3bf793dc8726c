package users

import (
	"golang.org/x/crypto/bcrypt"
)

// Capability represents a named permission category a user account may hold.
type Capability string

const (
	CapabilityRead   Capability = "read"
	CapabilityWrite  Capability = "write"
	CapabilityCreate Capability = "create"
	CapabilityDelete Capability = "delete"

	// CapabilityAdmin satisfies a check for any other capability.
	CapabilityAdmin Capability = "admin"
)

// AllCapabilities lists every member of the closed enumeration.
var AllCapabilities = []Capability{
	CapabilityRead,
	CapabilityWrite,
	CapabilityCreate,
	CapabilityDelete,
	CapabilityAdmin,
}

// ParseCapability maps a capability name onto the enumeration.
func ParseCapability(name string) (Capability, bool) {
	for _, c := range AllCapabilities {
		if string(c) == name {
			return c, true
		}
	}
	return "", false
}

// User is a credential-store record. Records are immutable after process
// start; there are no user-management operations in this service.
type User struct {
	Identity     string       `json:"identity,omitempty"`     // Unique identifier for the user
	PasswordHash string       `json:"-"`                      // Hashed version of the user's password - never serialize
	Capabilities []Capability `json:"capabilities,omitempty"` // Capabilities granted to this user
}

// HasCapability reports whether the user holds the capability, either
// directly or through CapabilityAdmin. Pure function of the capability set.
func (u *User) HasCapability(required Capability) bool {
	for _, c := range u.Capabilities {
		if c == required || c == CapabilityAdmin {
			return true
		}
	}
	return false
}

// bcryptCost is the fixed work factor for password hashing. bcrypt embeds a
// random per-hash salt, so two hashes of the same password always differ.
const bcryptCost = bcrypt.DefaultCost

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a password against a stored hash using a
// constant-time comparison. A malformed stored hash fails closed.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
