package user

// Role distinguishes storefront customers from catalog administrators.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// User is the session identity. The engine only ever inspects ID and Role;
// the remaining fields pass through to the UI untouched.
type User struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

// Session exposes the current session identity. A nil user means nobody is
// logged in.
type Session interface {
	CurrentUser() *User
}
