package users

// User roles as the upstream reports them.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type User struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone,omitempty"`
	Role  string `json:"role"`
}

// NewUser is the registration payload.
type NewUser struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// LoginResult carries the upstream login outcome. RequiresOTP is set
// when the account needs a one-time code before a token is issued.
type LoginResult struct {
	Success     bool   `json:"success"`
	RequiresOTP bool   `json:"requiresOTP,omitempty"`
	Message     string `json:"message,omitempty"`
}

// RegisterResult carries the upstream registration outcome.
type RegisterResult struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Message string `json:"message,omitempty"`
}
