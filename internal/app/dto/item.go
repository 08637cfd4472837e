package dto

import (
	"time"

	domainitems "gearshare/internal/domain/items"
)

type Item struct {
	ID          string    `json:"id"`
	OwnerEmail  string    `json:"owner_email"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	PricePerDay int64     `json:"price_per_day"`
	Currency    string    `json:"currency"`
	State       string    `json:"state"`
	Photos      []string  `json:"photos"`
	CreatedAt   time.Time `json:"created_at"`
}

// ItemCollection wraps list results.
type ItemCollection struct {
	Items []Item `json:"items"`
}

func MapItem(item *domainitems.Item) Item {
	if item == nil {
		return Item{}
	}
	return Item{
		ID:          string(item.ID),
		OwnerEmail:  item.OwnerEmail,
		Title:       item.Title,
		Description: item.Description,
		Category:    item.Category,
		PricePerDay: item.PricePerDay.Amount,
		Currency:    item.PricePerDay.Currency,
		State:       string(item.State),
		Photos:      append([]string(nil), item.Photos...),
		CreatedAt:   item.CreatedAt,
	}
}
