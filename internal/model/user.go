package model

import "time"

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	OrganizationID string    `json:"organization_id,omitempty"`
	IsAdmin        bool      `json:"is_admin"`
	CreatedAt      time.Time `json:"created_at"`
}

type Organization struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StorageUsed int64     `json:"storage_used"`
	Plan        *Plan     `json:"plan,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
}

type Plan struct {
	ID        string  `json:"id,omitempty"`
	Gigabytes int     `json:"gigabytes"`
	Price     float64 `json:"price"`
}

// StorageLimit : лимит плана в байтах, 0 если план не задан
func (o *Organization) StorageLimit() int64 {
	if o.Plan == nil {
		return 0
	}
	return int64(o.Plan.Gigabytes) << 30
}

type Payment struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Amount         float64   `json:"amount"`
	PaidAt         time.Time `json:"paid_at"`
	Plan           *Plan     `json:"plan,omitempty"`
}

// OrganizationOverview : всё, что страница организации загружает параллельно
type OrganizationOverview struct {
	Organization *Organization `json:"organization"`
	Users        []User        `json:"users"`
	Payments     []Payment     `json:"payments"`
	StorageLimit int64         `json:"storage_limit"`
	StorageUsage float64       `json:"storage_usage_percent"`
}
