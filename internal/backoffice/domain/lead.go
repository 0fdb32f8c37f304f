package domain

import "time"

type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadQualified LeadStatus = "qualified"
	LeadConverted LeadStatus = "converted"
	LeadLost      LeadStatus = "lost"
)

func (s LeadStatus) Valid() bool {
	switch s {
	case LeadNew, LeadContacted, LeadQualified, LeadConverted, LeadLost:
		return true
	}
	return false
}

// Closed reports whether the lead has reached a terminal status.
func (s LeadStatus) Closed() bool {
	return s == LeadConverted || s == LeadLost
}

type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Source    string     `json:"source,omitempty"`
	Status    LeadStatus `json:"status"`
	Notes     string     `json:"notes,omitempty"`
	ClientID  string     `json:"client_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (l Lead) Validate() error {
	v := &ValidationError{}
	v.Require("name", l.Name)
	if l.Email == "" && l.Phone == "" {
		v.Add("email", "email or phone is required")
	}
	if l.Email != "" && !ValidEmail(l.Email) {
		v.Add("email", "must be a valid email address")
	}
	if l.Phone != "" && !ValidPhone(l.Phone) {
		v.Add("phone", "must have 10 or 11 digits")
	}
	if !l.Status.Valid() {
		v.Add("status", "must be one of new, contacted, qualified, converted, lost")
	}
	return v.Err()
}
