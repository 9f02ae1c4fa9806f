// internal/models/network.go
package models

import "time"

// Sources where a contact was met.
const (
	MetAtLinkedIn     = "linkedin"
	MetAtCareerFair   = "career_fair"
	MetAtMeetup       = "meetup"
	MetAtReferral     = "referral"
	MetAtColdOutreach = "cold_outreach"
	MetAtOther        = "other"
)

// ValidMetAt lists every recognized contact source.
var ValidMetAt = []string{
	MetAtLinkedIn,
	MetAtCareerFair,
	MetAtMeetup,
	MetAtReferral,
	MetAtColdOutreach,
	MetAtOther,
}

// IsValidMetAt reports whether s is a recognized contact source.
func IsValidMetAt(s string) bool {
	for _, v := range ValidMetAt {
		if s == v {
			return true
		}
	}
	return false
}

// NetworkContact is one networking contact owned by a user.
type NetworkContact struct {
	ID                string     `json:"id"`
	UserID            string     `json:"userId"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	Company           string     `json:"company"`
	Role              string     `json:"role"`
	MetAt             string     `json:"metAt"`
	MetDate           time.Time  `json:"metDate"`
	FollowUpDate      *time.Time `json:"followUpDate"`
	LastContactedDate *time.Time `json:"lastContactedDate"`
	Notes             string     `json:"notes"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// DisplayName is "{name}" suffixed with " ({company})" when the company
// is known.
func (c *NetworkContact) DisplayName() string {
	if c.Company != "" {
		return c.Name + " (" + c.Company + ")"
	}
	return c.Name
}

// Snapshot returns the contact's tracked state as a plain attribute
// mapping for change detection.
func (c *NetworkContact) Snapshot() map[string]interface{} {
	return map[string]interface{}{
		"name":              c.Name,
		"email":             c.Email,
		"company":           c.Company,
		"role":              c.Role,
		"metAt":             c.MetAt,
		"notes":             c.Notes,
		"metDate":           c.MetDate,
		"followUpDate":      c.FollowUpDate,
		"lastContactedDate": c.LastContactedDate,
	}
}
