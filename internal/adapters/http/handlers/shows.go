package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/domain"
)

// ShowsHandler exposes the per-show screens over HTTP.
type ShowsHandler struct {
	screens *app.Screens
}

// NewShowsHandler creates a handler over the configured screens.
func NewShowsHandler(screens *app.Screens) *ShowsHandler {
	if screens == nil {
		panic("handlers: screens are required")
	}

	return &ShowsHandler{screens: screens}
}

// ListShows handles GET /api/v1/shows.
//
// @Summary List configured shows with their current status
// @Tags shows
// @Produce json
// @Success 200 {array} dto.ShowResponse
// @Router /api/v1/shows [get]
func (h *ShowsHandler) ListShows(c *gin.Context) {
	all := h.screens.All()

	resp := make([]dto.ShowResponse, 0, len(all))
	for _, screen := range all {
		show := screen.Show()
		resp = append(resp, dto.ShowResponse{
			Slug:  show.Slug,
			Name:  show.Name,
			Key:   domain.ShowKey(show.Name),
			State: screen.State().Status().String(),
		})
	}

	c.JSON(http.StatusOK, resp)
}

// TriggerFetch handles POST /api/v1/shows/:slug/fetch.
// The fetch runs detached from the request. The response is 202 with the
// fetching state, or with ?wait=true the terminal state once it is reached.
//
// @Summary Trigger a quote fetch for a show
// @Tags shows
// @Produce json
// @Param slug path string true "Show slug"
// @Param wait query bool false "Wait for the fetch to finish"
// @Success 202 {object} dto.ViewStateResponse
// @Success 200 {object} dto.ViewStateResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/shows/{slug}/fetch [post]
func (h *ShowsHandler) TriggerFetch(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}

	wait, err := parseWait(c)
	if err != nil {
		dto.RespondWithValidationErrors(c, map[string]string{"wait": "must be a boolean"})
		return
	}

	fetch := screen.Trigger(c.Request.Context())

	if !wait {
		c.JSON(http.StatusAccepted, dto.FromViewState(screen.Show().Name, fetch.Generation, domain.Fetching{}))
		return
	}

	select {
	case <-fetch.Done:
		gen, state := screen.Snapshot()
		c.JSON(http.StatusOK, dto.FromViewState(screen.Show().Name, gen, state))
	case <-c.Request.Context().Done():
		gen, state := screen.Snapshot()
		c.JSON(http.StatusAccepted, dto.FromViewState(screen.Show().Name, gen, state))
	}
}

// GetState handles GET /api/v1/shows/:slug/state.
//
// @Summary Current view state of a show screen
// @Tags shows
// @Produce json
// @Param slug path string true "Show slug"
// @Success 200 {object} dto.ViewStateResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /api/v1/shows/{slug}/state [get]
func (h *ShowsHandler) GetState(c *gin.Context) {
	screen, ok := h.screen(c)
	if !ok {
		return
	}

	gen, state := screen.Snapshot()
	c.JSON(http.StatusOK, dto.FromViewState(screen.Show().Name, gen, state))
}

// RegisterRoutes registers the show routes on rg.
func (h *ShowsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/shows", h.ListShows)
	rg.POST("/shows/:slug/fetch", h.TriggerFetch)
	rg.GET("/shows/:slug/state", h.GetState)
}

func (h *ShowsHandler) screen(c *gin.Context) (*app.Screen, bool) {
	slug := c.Param("slug")

	screen, ok := h.screens.Get(slug)
	if !ok {
		dto.HandleError(c, domain.NewNotFoundError("show", slug))
		return nil, false
	}

	return screen, true
}

func parseWait(c *gin.Context) (bool, error) {
	raw := c.Query("wait")
	if raw == "" {
		return false, nil
	}

	return strconv.ParseBool(raw)
}
