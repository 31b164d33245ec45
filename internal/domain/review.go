package domain

import (
	"time"
)

// Review represents a product review submitted by a user. A user may review
// the same product more than once.
type Review struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	UserID    string    `json:"userId"`
	Comment   string    `json:"comment"`
	Rating    float64   `json:"rating"`
	Author    *Author   `json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewPatch holds the fields a review update may change.
type ReviewPatch struct {
	Comment *string
	Rating  *float64
}

// Apply copies the set fields of the patch onto review.
func (p ReviewPatch) Apply(review *Review) {
	if p.Comment != nil {
		review.Comment = *p.Comment
	}
	if p.Rating != nil {
		review.Rating = *p.Rating
	}
}
