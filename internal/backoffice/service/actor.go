package service

import "github.com/aussiebroadwan/escritorio/internal/backoffice/domain"

// Actor is the authenticated caller. Portal users carry a ClientID and only
// ever see records of that client.
type Actor struct {
	UserID   string
	Name     string
	Role     domain.Role
	ClientID string
}

func (a Actor) IsPortal() bool { return a.ClientID != "" }

// sees reports whether a may read a record owned by clientID.
func (a Actor) sees(clientID string) bool {
	return !a.IsPortal() || a.ClientID == clientID
}

// scope narrows a list filter to the portal client.
func (a Actor) scope(clientID string) string {
	if a.IsPortal() {
		return a.ClientID
	}
	return clientID
}
