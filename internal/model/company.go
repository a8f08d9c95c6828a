package model

import "time"

// CompanyMeta is the lightweight metadata record kept both in a
// company's own meta collection and in the global company index. The
// index copy must stay consistent with the per-company copy; the store
// resync operation rebuilds the index from the per-company records.
type CompanyMeta struct {
	Name       string    `json:"company_name"`
	Type       string    `json:"company_type,omitempty"`
	Currency   string    `json:"currency,omitempty"`
	City       string    `json:"city,omitempty"`
	State      string    `json:"state,omitempty"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	ModifiedAt time.Time `json:"modified_at"`
}
