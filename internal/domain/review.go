package domain

import "time"

// Status is the moderation state of a review.
type Status string

const (
	// StatusPending is the state of every newly submitted review. Reviews
	// stay pending until a moderator approves or rejects them.
	StatusPending Status = "pending"

	// StatusApproved reviews are the only ones shown on the storefront.
	StatusApproved Status = "approved"

	// StatusRejected reviews are kept for audit but never displayed.
	StatusRejected Status = "rejected"
)

// MaxListSize caps how many reviews a single listing request returns.
const MaxListSize = 50

// ParseStatus maps a raw status string to a known Status. Unrecognized or
// empty values fall back to StatusApproved, which is the only state the
// storefront is allowed to display.
func ParseStatus(raw string) Status {
	switch Status(raw) {
	case StatusPending:
		return StatusPending
	case StatusApproved:
		return StatusApproved
	case StatusRejected:
		return StatusRejected
	default:
		return StatusApproved
	}
}

// Review is a customer product review scoped to a single shop.
type Review struct {
	ID            string    `json:"id"`
	ShopDomain    string    `json:"shopDomain"`
	ProductID     int64     `json:"productId,string"`
	Rating        int       `json:"rating"`
	Title         *string   `json:"title"`
	Body          string    `json:"body"`
	AuthorName    string    `json:"authorName"`
	AuthorEmail   *string   `json:"authorEmail"`
	ProductHandle *string   `json:"productHandle"`
	Status        Status    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
