package ginserver

import (
	"errors"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"

	bookingapp "gearshare/internal/app/handlers/booking"
	reviewsapp "gearshare/internal/app/handlers/reviews"
	"gearshare/internal/app/uow"
	domainavailability "gearshare/internal/domain/availability"
	domainbooking "gearshare/internal/domain/booking"
	domainitems "gearshare/internal/domain/items"
	domainreviews "gearshare/internal/domain/reviews"
	"gearshare/internal/domain/shared/dateset"
)

// respondError translates domain errors into HTTP statuses. A date conflict
// carries the conflicting dates so clients can show them.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var conflict *domainbooking.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{
			"error":             err.Error(),
			"conflicting_dates": conflict.Dates.Strings(),
		})
		return
	}

	status := statusFor(err)
	if logger != nil && status >= http.StatusInternalServerError {
		logger.Error("request failed", "status", status, "error", err, "path", c.FullPath())
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, dateset.ErrInvalidRange),
		errors.Is(err, domainavailability.ErrNoDates),
		errors.Is(err, domainbooking.ErrRenterRequired),
		errors.Is(err, domainbooking.ErrSelfBooking),
		errors.Is(err, domainreviews.ErrInvalidRating),
		errors.Is(err, bookingapp.ErrInvalidOutcome):
		return http.StatusBadRequest
	case errors.Is(err, domainbooking.ErrNotOwner),
		errors.Is(err, domainbooking.ErrNotParticipant),
		errors.Is(err, domainavailability.ErrNotOwner),
		errors.Is(err, reviewsapp.ErrBookingOwnership):
		return http.StatusForbidden
	case errors.Is(err, domainitems.ErrNotFound),
		errors.Is(err, domainbooking.ErrNotFound),
		errors.Is(err, domainreviews.ErrNotFound),
		errors.Is(err, mongo.ErrNoDocuments):
		return http.StatusNotFound
	case errors.Is(err, domainbooking.ErrInvalidState),
		errors.Is(err, reviewsapp.ErrDuplicateReview),
		errors.Is(err, uow.ErrConcurrentUpdate):
		return http.StatusConflict
	case errors.Is(err, bookingapp.ErrItemNotBookable),
		errors.Is(err, reviewsapp.ErrRentalNotCompleted):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
