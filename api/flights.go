package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightdata/internal/domain"
	"github.com/Domenick1991/flightdata/internal/service/flights"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type FlightHandler struct {
	service flights.FlightUseCase
	logger  *zap.Logger
}

type flightRequest struct {
	Origin      string    `json:"origin" binding:"required"`
	Destination string    `json:"destination" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func (r flightRequest) toDomain(id int64) domain.Flight {
	return domain.Flight{
		ID:          id,
		Origin:      r.Origin,
		Destination: r.Destination,
		ScheduledAt: r.ScheduledAt.UTC(),
	}
}

type countResponse struct {
	Count int64 `json:"count"`
}

func NewFlightHandler(service flights.FlightUseCase, logger *zap.Logger) *FlightHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightHandler{service: service, logger: logger}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/count", h.count)
	router.GET("/search", h.search)
	router.GET("/:id", h.get)
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
	router.DELETE("", h.deleteBulk)
}

func (h *FlightHandler) list(c *gin.Context) {
	req, paged, err := parsePageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()

	switch {
	case paged:
		page, err := h.service.ListPage(ctx, req)
		h.respond(c, page, err)
	case !req.Sort.IsUnsorted():
		list, err := h.service.ListSorted(ctx, req.Sort)
		h.respond(c, list, err)
	default:
		list, err := h.service.List(ctx)
		h.respond(c, list, err)
	}
}

func (h *FlightHandler) count(c *gin.Context) {
	n, err := h.service.Count(c.Request.Context())
	h.respond(c, countResponse{Count: n}, err)
}

// search picks the query from the parameters given: several origins select
// a membership query, a destination the route query, ignore_case the
// case-insensitive one, and page/size a paged origin query.
func (h *FlightHandler) search(c *gin.Context) {
	origins := c.QueryArray("origin")
	if len(origins) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin is required"})
		return
	}
	req, paged, err := parsePageRequest(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ignoreCase, err := parseBool(c.Query("ignore_case"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ignore_case"})
		return
	}
	destination := c.Query("destination")
	ctx := c.Request.Context()

	if (len(origins) > 1 || destination != "" || ignoreCase) && (paged || !req.Sort.IsUnsorted()) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paging and sorting are only supported for a single exact origin"})
		return
	}

	switch {
	case len(origins) > 1:
		list, err := h.service.FindByOrigins(ctx, origins)
		h.respond(c, list, err)
	case destination != "":
		list, err := h.service.FindByRoute(ctx, origins[0], destination)
		h.respond(c, list, err)
	case ignoreCase:
		list, err := h.service.FindByOriginIgnoreCase(ctx, origins[0])
		h.respond(c, list, err)
	case paged || !req.Sort.IsUnsorted():
		page, err := h.service.FindByOriginPage(ctx, origins[0], req)
		h.respond(c, page, err)
	default:
		list, err := h.service.FindByOrigin(ctx, origins[0])
		h.respond(c, list, err)
	}
}

func (h *FlightHandler) get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	flight, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if flight == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": domain.ErrFlightNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, flight)
}

func (h *FlightHandler) create(c *gin.Context) {
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.Save(c.Request.Context(), req.toDomain(0))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, flight)
}

func (h *FlightHandler) update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req flightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	flight, err := h.service.Save(c.Request.Context(), req.toDomain(id))
	h.respond(c, flight, err)
}

func (h *FlightHandler) delete(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteBulk requires either an origin or an explicit all=true.
func (h *FlightHandler) deleteBulk(c *gin.Context) {
	ctx := c.Request.Context()
	if origin := c.Query("origin"); origin != "" {
		if err := h.service.DeleteByOrigin(ctx, origin); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}

	all, err := parseBool(c.Query("all"))
	if err != nil || !all {
		c.JSON(http.StatusBadRequest, gin.H{"error": "origin or all=true is required"})
		return
	}
	if err := h.service.DeleteAll(ctx); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *FlightHandler) respond(c *gin.Context, body any, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (h *FlightHandler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPageRequest), errors.Is(err, domain.ErrUnknownSortField):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrFlightNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		h.logger.Error("flight request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
