package auth

// LoginRequest is the request body for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" example:"admin"`
	Password string `json:"password" example:"securepassword123"`
}

// RefreshRequest is the request body for POST /auth/refresh.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" example:"dGhpcyBpcyBhIHJlZnJl..."`
}

// LogoutRequest is the request body for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" example:"dGhpcyBpcyBhIHJlZnJl..."`
}

// SetupRequest is the request body for POST /auth/setup.
type SetupRequest struct {
	Username string `json:"username" example:"admin"`
	Email    string `json:"email" example:"admin@theboolean.in"`
	Password string `json:"password" example:"securepassword123"`
}

// CreateUserRequest is the request body for POST /users.
type CreateUserRequest struct {
	Username string `json:"username" example:"priya"`
	Email    string `json:"email" example:"priya@theboolean.in"`
	Password string `json:"password" example:"securepassword123"`
	Role     string `json:"role" example:"editor"`
}

// UpdateUserRequest is the request body for PUT /users/{id}.
type UpdateUserRequest struct {
	Email    string `json:"email" example:"editor@theboolean.in"`
	Role     string `json:"role" example:"editor"`
	Disabled bool   `json:"disabled" example:"false"`
}
