package auth

import "time"

// DefaultOperator is assumed when a login request names no operator.
const DefaultOperator = "admin"

// Config drives operator authentication.
type Config struct {
	Secret    string
	TokenTTL  time.Duration
	Operators []Operator
}

// Operator is an account allowed to use the admin endpoints.
type Operator struct {
	Username     string
	PasswordHash string
}

// LoginRequest captures login details.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse returns the signed token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Operator  string    `json:"operator"`
}

// Claims are extracted from the JWT token.
type Claims struct {
	Operator  string
	TokenType string
	ExpiresAt time.Time
}
