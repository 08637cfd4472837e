package ginserver

import (
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"gearshare/internal/app/dto"
	listingsapp "gearshare/internal/app/handlers/listings"
	"gearshare/internal/app/queries"
)

type ListingHandler struct {
	Queries queries.Bus
	Logger  *slog.Logger
}

func (h ListingHandler) Get(c *gin.Context) {
	query := listingsapp.GetItemQuery{ItemID: strings.TrimSpace(c.Param("id"))}
	result, err := queries.Ask[listingsapp.GetItemQuery, dto.Item](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h ListingHandler) ListMine(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}
	query := listingsapp.ListOwnerItemsQuery{OwnerEmail: owner}
	result, err := queries.Ask[listingsapp.ListOwnerItemsQuery, dto.ItemCollection](c.Request.Context(), h.Queries, query)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

var _ ListingHTTP = ListingHandler{}
