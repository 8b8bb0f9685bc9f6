package web

import (
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/hpungsan/mapjournal/internal/config"
	"github.com/hpungsan/mapjournal/internal/dao"
	"github.com/hpungsan/mapjournal/internal/errors"
	"github.com/hpungsan/mapjournal/internal/ops"
)

// Handlers contains HTTP route handlers for the journal viewer.
type Handlers struct {
	dao      *dao.DAO
	cfg      *config.Config
	log      zerolog.Logger
	renderer *Renderer
}

// HandleTrips handles GET /trips.
func (h *Handlers) HandleTrips(w http.ResponseWriter, r *http.Request) {
	trips, err := h.dao.GetAllTrips(r.Context())
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "trips", TripsPageData{
		PageData: h.renderer.page("Trips"),
		Trips:    trips,
	})
}

// HandleTrip handles GET /trips/{id}: the trip and its points in time order.
func (h *Handlers) HandleTrip(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	trip, err := h.dao.GetTrip(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}
	points, err := h.dao.GetPointsByTrip(r.Context(), id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	h.renderer.renderPage(w, r, "trip", TripPageData{
		PageData: h.renderer.page(displayName(trip.Name, "Trip", trip.ID)),
		Trip:     trip,
		Points:   points,
	})
}

// HandlePoint handles GET /points/{id}.
func (h *Handlers) HandlePoint(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	point, err := ops.LoadPoint(r.Context(), h.dao, id)
	if err != nil {
		h.renderer.renderError(w, r, err)
		return
	}

	// The parent may be gone: trip deletes do not remove points.
	trip, err := h.dao.GetTrip(r.Context(), point.TripID)
	if err != nil && !errors.Is(err, errors.ErrNotFound) {
		h.renderer.renderError(w, r, err)
		return
	}

	data := PointPageData{
		PageData: h.renderer.page(displayName(point.Title, "Point", point.ID)),
		Point:    point,
		Trip:     trip,
		Media:    point.Media(),
	}
	if point.Journal != nil {
		data.JournalHTML = renderMarkdown(*point.Journal)
	}
	h.renderer.renderPage(w, r, "point", data)
}

// pathID parses the {id} path segment as a positive row id.
func pathID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewInvalidRequest("id must be a positive integer, got " + strconv.Quote(raw))
	}
	return id, nil
}

// displayName returns name if set, otherwise "<fallback> #<id>".
func displayName(name *string, fallback string, id int64) string {
	if name != nil && *name != "" {
		return *name
	}
	return fallback + " #" + strconv.FormatInt(id, 10)
}
