package dto

import (
	"time"

	domainreviews "gearshare/internal/domain/reviews"
)

type Review struct {
	ID          string    `json:"id"`
	BookingID   string    `json:"booking_id"`
	ItemID      string    `json:"item_id"`
	AuthorEmail string    `json:"author_email"`
	Rating      int       `json:"rating"`
	Text        string    `json:"text"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReviewCollection wraps list results.
type ReviewCollection struct {
	Items []Review `json:"items"`
}

func MapReview(review *domainreviews.Review) Review {
	if review == nil {
		return Review{}
	}
	return Review{
		ID:          string(review.ID),
		BookingID:   string(review.BookingID),
		ItemID:      string(review.ItemID),
		AuthorEmail: review.AuthorEmail,
		Rating:      review.Rating,
		Text:        review.Text,
		CreatedAt:   review.CreatedAt,
	}
}
