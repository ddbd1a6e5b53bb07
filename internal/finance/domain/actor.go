package domain

// Actor is the authenticated user on whose behalf a ledger operation runs.
type Actor struct {
	UserID     string
	CanViewAll bool
}

// CanAccess reports whether the actor may read or modify a transaction owned by ownerID.
func (a Actor) CanAccess(ownerID string) bool {
	return a.CanViewAll || a.UserID == ownerID
}
