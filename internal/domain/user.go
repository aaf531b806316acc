package domain

type ContextKey string

const UserContextKey ContextKey = "user"

// User is the authenticated back-office operator, reconstructed from token
// claims. Token issuance lives in the identity service, not here.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
