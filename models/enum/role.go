package enum

// Role is the account role reported by the backend at sign-in.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)
