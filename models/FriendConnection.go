package models

import "gorm.io/gorm"

const (
	FriendStatusPending  = "pending"
	FriendStatusAccepted = "accepted"
)

// FriendConnection is a directed request that becomes a mutual friendship
// once accepted.
type FriendConnection struct {
	gorm.Model
	RequesterID uint   `gorm:"not null;index" json:"requester_id"`
	AddresseeID uint   `gorm:"not null;index" json:"addressee_id"`
	Status      string `gorm:"type:varchar(16);not null;default:pending" json:"status"`
}

// Other returns the id of the party that is not userID.
func (c FriendConnection) Other(userID uint) uint {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// Involves reports whether userID is either party.
func (c FriendConnection) Involves(userID uint) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}
