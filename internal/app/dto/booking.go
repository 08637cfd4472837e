package dto

import (
	"time"

	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
)

// Booking is the outward representation of a booking aggregate.
type Booking struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	RenterEmail string    `json:"renter_email"`
	OwnerEmail  string    `json:"owner_email"`
	StartDate   string    `json:"start_date"`
	EndDate     string    `json:"end_date"`
	TotalDays   int       `json:"total_days"`
	TotalAmount int64     `json:"total_amount"`
	Currency    string    `json:"currency"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func MapBooking(b *domainbooking.Booking) Booking {
	if b == nil {
		return Booking{}
	}
	return Booking{
		ID:          string(b.ID),
		ItemID:      string(b.ItemID),
		RenterEmail: b.RenterEmail,
		OwnerEmail:  b.OwnerEmail,
		StartDate:   b.StartDate.String(),
		EndDate:     b.EndDate.String(),
		TotalDays:   b.TotalDays,
		TotalAmount: b.TotalAmount.Amount,
		Currency:    b.TotalAmount.Currency,
		Status:      string(b.State),
		CreatedAt:   b.CreatedAt,
		UpdatedAt:   b.UpdatedAt,
	}
}

// BookingSummary augments a booking with the item facts list views need.
type BookingSummary struct {
	Booking
	ItemTitle string `json:"item_title"`
}

func MapBookingSummary(b *domainbooking.Booking, item *domainitems.Item) BookingSummary {
	summary := BookingSummary{Booking: MapBooking(b)}
	if item != nil {
		summary.ItemTitle = item.Title
	}
	return summary
}

// BookingCollection wraps list results.
type BookingCollection struct {
	Items []BookingSummary `json:"items"`
}
