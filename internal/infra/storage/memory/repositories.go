package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
)

// ItemRepository is an in-memory implementation for demos and tests.
type ItemRepository struct {
	mu    sync.RWMutex
	items map[domainitems.ItemID]*domainitems.Item
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[domainitems.ItemID]*domainitems.Item)}
}

func (r *ItemRepository) ByID(ctx context.Context, id domainitems.ItemID) (*domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, domainitems.ErrNotFound
	}
	clone := *item
	return &clone, nil
}

func (r *ItemRepository) Save(ctx context.Context, item *domainitems.Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	item.Version++
	clone := *item
	r.items[item.ID] = &clone
	return nil
}

func (r *ItemRepository) ListByOwner(ctx context.Context, ownerEmail string) ([]*domainitems.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	owner := strings.ToLower(strings.TrimSpace(ownerEmail))
	matches := make([]*domainitems.Item, 0)
	for _, item := range r.items {
		if item.OwnerEmail != owner {
			continue
		}
		clone := *item
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})
	return matches, nil
}

// BookingRepository stores bookings in memory.
type BookingRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainbooking.Booking
}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{items: make(map[domainbooking.BookingID]*domainbooking.Booking)}
}

func (r *BookingRepository) ByID(ctx context.Context, id domainbooking.BookingID) (*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	booking, ok := r.items[id]
	if !ok {
		return nil, domainbooking.ErrNotFound
	}
	clone := *booking
	return &clone, nil
}

// Save applies a version check so two writers cannot overwrite each other's
// state transitions.
func (r *BookingRepository) Save(ctx context.Context, booking *domainbooking.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.items[booking.ID]; ok && stored.Version != booking.Version {
		return uow.ErrConcurrentUpdate
	}
	booking.Version++
	clone := *booking
	r.items[booking.ID] = &clone
	return nil
}

func (r *BookingRepository) ListByItem(ctx context.Context, itemID domainitems.ItemID) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.ItemID != itemID {
			continue
		}
		clone := *booking
		matches = append(matches, &clone)
	}
	sortByCreated(matches)
	return matches, nil
}

func (r *BookingRepository) ListByRenter(ctx context.Context, renterEmail string) ([]*domainbooking.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renter := strings.ToLower(strings.TrimSpace(renterEmail))
	matches := make([]*domainbooking.Booking, 0)
	for _, booking := range r.items {
		if booking.RenterEmail != renter {
			continue
		}
		clone := *booking
		matches = append(matches, &clone)
	}
	sortByCreated(matches)
	return matches, nil
}

func sortByCreated(bookings []*domainbooking.Booking) {
	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].CreatedAt.After(bookings[j].CreatedAt)
	})
}

// AvailabilityRepository keeps calendars in memory. Reads hand out snapshots
// and Save rejects stale versions, so a lost projector update surfaces as
// uow.ErrConcurrentUpdate instead of silently dropping dates.
type AvailabilityRepository struct {
	mu        sync.Mutex
	calendars map[domainitems.ItemID]*domainavailability.Calendar
}

func NewAvailabilityRepository() *AvailabilityRepository {
	return &AvailabilityRepository{
		calendars: make(map[domainitems.ItemID]*domainavailability.Calendar),
	}
}

// Calendar retrieves an item's calendar snapshot, lazily creating it.
func (r *AvailabilityRepository) Calendar(ctx context.Context, id domainitems.ItemID) (*domainavailability.Calendar, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.calendars[id]
	if !ok {
		stored = domainavailability.NewCalendar(id)
		r.calendars[id] = stored
	}
	return cloneCalendar(stored), nil
}

func (r *AvailabilityRepository) Save(ctx context.Context, calendar *domainavailability.Calendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.calendars[calendar.ItemID]; ok && stored.Version != calendar.Version {
		return uow.ErrConcurrentUpdate
	}
	calendar.Version++
	r.calendars[calendar.ItemID] = cloneCalendar(calendar)
	return nil
}

func cloneCalendar(cal *domainavailability.Calendar) *domainavailability.Calendar {
	return &domainavailability.Calendar{
		ItemID:    cal.ItemID,
		Booked:    cal.Booked.Clone(),
		Blocked:   cal.Blocked.Clone(),
		Version:   cal.Version,
		UpdatedAt: cal.UpdatedAt,
	}
}

// ReviewRepository is a lightweight in-memory review store.
type ReviewRepository struct {
	mu    sync.RWMutex
	items map[domainbooking.BookingID]*domainreviews.Review
}

func NewReviewRepository() *ReviewRepository {
	return &ReviewRepository{items: make(map[domainbooking.BookingID]*domainreviews.Review)}
}

func (r *ReviewRepository) ByBooking(ctx context.Context, bookingID domainbooking.BookingID) (*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	review, ok := r.items[bookingID]
	if !ok {
		return nil, domainreviews.ErrNotFound
	}
	clone := *review
	return &clone, nil
}

func (r *ReviewRepository) ListByItem(ctx context.Context, itemID domainitems.ItemID, limit, offset int) ([]*domainreviews.Review, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	matches := make([]*domainreviews.Review, 0)
	for _, review := range r.items {
		if review.ItemID != itemID {
			continue
		}
		clone := *review
		matches = append(matches, &clone)
	}
	sort.Slice(matches, func(i, j int) bool {
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	total := len(matches)
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := total
	if limit > 0 && offset+limit < total {
		end = offset + limit
	}
	return matches[offset:end], nil
}

func (r *ReviewRepository) Save(ctx context.Context, review *domainreviews.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *review
	r.items[review.BookingID] = &clone
	return nil
}

var (
	_ domainitems.Repository        = (*ItemRepository)(nil)
	_ domainbooking.Repository      = (*BookingRepository)(nil)
	_ domainavailability.Repository = (*AvailabilityRepository)(nil)
	_ domainreviews.Repository      = (*ReviewRepository)(nil)
)
