package directory

import "time"

// Company is the minimal company shape needed by scope-aware listings.
type Company struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Portfolio groups properties under a company.
type Portfolio struct {
	ID        int64     `json:"id"`
	CompanyID int64     `json:"company_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Property belongs to exactly one company and optionally one portfolio.
// CompanyID is denormalized so scope checks avoid the portfolio join.
type Property struct {
	ID          int64     `json:"id"`
	CompanyID   int64     `json:"company_id"`
	PortfolioID int64     `json:"portfolio_id,omitempty"`
	Name        string    `json:"name"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
