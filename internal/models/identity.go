package models

// Identity is the authenticated caller of a service operation.
type Identity struct {
	UserID      string
	IsSuperuser bool
}
