package domain

import "time"

type LicenseStatus string

const (
	LicenseValid    LicenseStatus = "valid"
	LicenseExpiring LicenseStatus = "expiring"
	LicenseExpired  LicenseStatus = "expired"
)

// License is an operating permit or certificate held by a client, such as an
// alvará, a digital certificate or a fire department clearance.
type License struct {
	ID        string        `json:"id"`
	ClientID  string        `json:"client_id"`
	Kind      string        `json:"kind"`
	Number    string        `json:"number,omitempty"`
	Issuer    string        `json:"issuer,omitempty"`
	IssuedAt  Date          `json:"issued_at"`
	ExpiresAt Date          `json:"expires_at"`
	Status    LicenseStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// LicenseStatusOn computes the status on day. A license expiring today is
// still usable, so it counts as expiring.
func LicenseStatusOn(expiresAt, day Date, warning time.Duration) LicenseStatus {
	switch {
	case expiresAt.Before(day):
		return LicenseExpired
	case !expiresAt.After(NewDate(day.Add(warning))):
		return LicenseExpiring
	}
	return LicenseValid
}

func (l License) Validate() error {
	v := &ValidationError{}
	v.Require("client_id", l.ClientID)
	v.Require("kind", l.Kind)
	if l.ExpiresAt.IsZero() {
		v.Add("expires_at", "is required")
	}
	if !l.IssuedAt.IsZero() && !l.ExpiresAt.IsZero() && l.ExpiresAt.Before(l.IssuedAt) {
		v.Add("expires_at", "must not be before issued_at")
	}
	return v.Err()
}
