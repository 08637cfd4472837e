package dto

import (
	domainavailability "gearshare/internal/domain/availability"
)

// UnavailableDate is one blocked calendar day with its display reason.
type UnavailableDate struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// Calendar is the item's unavailable-dates view, ascending by date.
type Calendar struct {
	ItemID string            `json:"item_id"`
	Dates  []UnavailableDate `json:"dates"`
}

func MapCalendar(cal *domainavailability.Calendar) Calendar {
	if cal == nil {
		return Calendar{}
	}
	entries := cal.Entries()
	dates := make([]UnavailableDate, 0, len(entries))
	for _, entry := range entries {
		dates = append(dates, UnavailableDate{
			Date:   entry.Date.String(),
			Reason: string(entry.Reason),
		})
	}
	return Calendar{ItemID: string(cal.ItemID), Dates: dates}
}
