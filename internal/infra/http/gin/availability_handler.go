package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/commands"
	"gearshare/internal/app/dto"
	availabilityapp "gearshare/internal/app/handlers/availability"
	"gearshare/internal/app/queries"
	"gearshare/internal/domain/shared/dateset"
)

type AvailabilityHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
	Logger   *slog.Logger
}

// blockRequest accepts explicit dates, an inclusive range, or both.
type blockRequest struct {
	Dates     []string `json:"dates"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date"`
}

func (r blockRequest) dates() ([]dateset.Date, error) {
	out := make([]dateset.Date, 0, len(r.Dates))
	for _, raw := range r.Dates {
		d, err := dateset.Parse(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	if r.StartDate != "" || r.EndDate != "" {
		start, err := dateset.Parse(r.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := dateset.Parse(r.EndDate)
		if err != nil {
			return nil, err
		}
		expanded, err := dateset.Expand(start, end)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded...)
	}
	return out, nil
}

func (h AvailabilityHandler) Calendar(c *gin.Context) {
	query := availabilityapp.GetCalendarQuery{ItemID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[availabilityapp.GetCalendarQuery, dto.Calendar](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) AddBlock(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dates, err := req.dates()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := availabilityapp.AddManualBlockCommand{
		ItemID:     strings.TrimSpace(c.Param("id")),
		OwnerEmail: owner,
		Dates:      dates,
	}
	result, err := commands.Dispatch[availabilityapp.AddManualBlockCommand, dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) RemoveBlock(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	var req blockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	dates, err := req.dates()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cmd := availabilityapp.RemoveBlockCommand{
		ItemID:     strings.TrimSpace(c.Param("id")),
		OwnerEmail: owner,
		Dates:      dates,
	}
	result, err := commands.Dispatch[availabilityapp.RemoveBlockCommand, dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h AvailabilityHandler) Recompute(c *gin.Context) {
	if _, ok := requireUser(c); !ok {
		return
	}
	cmd := availabilityapp.RecomputeCalendarCommand{ItemID: strings.TrimSpace(c.Param("id"))}
	result, err := commands.Dispatch[availabilityapp.RecomputeCalendarCommand, dto.Calendar](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ AvailabilityHTTP = AvailabilityHandler{}
