// internal/models/application.go
package models

import "time"

// Application statuses, in pipeline order.
const (
	StatusApplied      = "applied"
	StatusScreening    = "screening"
	StatusInterviewing = "interviewing"
	StatusOffer        = "offer"
	StatusRejected     = "rejected"
	StatusWithdrawn    = "withdrawn"
)

// ValidStatuses lists every recognized application status.
var ValidStatuses = []string{
	StatusApplied,
	StatusScreening,
	StatusInterviewing,
	StatusOffer,
	StatusRejected,
	StatusWithdrawn,
}

// IsValidStatus reports whether s is a recognized application status.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// SalaryRange is a structured salary band; either bound may be absent.
type SalaryRange struct {
	Min *int `json:"min"`
	Max *int `json:"max"`
}

// Equal compares two salary ranges by value.
func (r SalaryRange) Equal(other SalaryRange) bool {
	return intPtrEqual(r.Min, other.Min) && intPtrEqual(r.Max, other.Max)
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Application is one tracked job application. (UserID, Company, Role,
// DateApplied) is unique per user; duplicate submissions are rejected.
type Application struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Company     string      `json:"company"`
	Role        string      `json:"role"`
	Status      string      `json:"status"`
	Source      string      `json:"source"`
	DateApplied time.Time   `json:"dateApplied"`
	LastUpdated time.Time   `json:"lastUpdated"`
	SalaryRange SalaryRange `json:"salaryRange"`
	Contacts    []string    `json:"contacts"`
	Notes       string      `json:"notes"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// DisplayName is the human-readable identity used in activity summaries.
func (a *Application) DisplayName() string {
	return a.Company + " - " + a.Role
}

// Snapshot returns the application's tracked state as a plain attribute
// mapping for change detection.
func (a *Application) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"status":      a.Status,
		"company":     a.Company,
		"role":        a.Role,
		"notes":       a.Notes,
		"source":      a.Source,
		"salaryRange": a.SalaryRange,
	}
}
