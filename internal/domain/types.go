package domain

// ID is used across domain entities.
type ID = int64

// Pagination carries paging params and totals.
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"pageSize"`
	Total    int `json:"total,omitempty"`
}

// Caller carries authenticated user info resolved from the request.
type Caller struct {
	UserID int64  `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

// IsAdmin reports whether the caller may reach back-office endpoints.
func (c Caller) IsAdmin() bool {
	return c.Role == "admin"
}
