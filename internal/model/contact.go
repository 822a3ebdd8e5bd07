package model

import (
	"strings"
	"time"
)

// Contact mirrors the `contacts` table. Photo holds the public URL path of
// the uploaded image, empty when the contact has none.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Photo     string    `json:"photo,omitempty"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ContactWithOwner annotates a contact with its owner's account. Both
// fields are nil when the owner row no longer exists.
type ContactWithOwner struct {
	Contact
	OwnerEmail *string `json:"ownerEmail"`
	OwnerName  *string `json:"ownerName"`
}

// DisplayName derives a short display name from an email address: the part
// before '@'.
func DisplayName(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
