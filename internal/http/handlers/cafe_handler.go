// Cafe HTTP handlers.
//
// This file exposes the catalog endpoints:
//   - GET    /                          (home page)
//   - GET    /random                    (one random cafe)
//   - GET    /all                       (every cafe)
//   - GET    /search?loc=               (cafes at a location)
//   - POST   /add                       (create, api-key gated)
//   - PATCH  /update-price/{cafe_id}    (set coffee price)
//   - DELETE /report-closed/{cafe_id}   (remove, api-key gated)
//
// Handlers are transport-thin: they extract parameters, call application
// services, and translate results into HTTP responses. API key checks run in
// middleware before these handlers.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-cafe-api/internal/domain"
	"github.com/tbourn/go-cafe-api/internal/http/middleware"
	"github.com/tbourn/go-cafe-api/internal/services"
	"github.com/tbourn/go-cafe-api/internal/utils"
)

// HomeTemplate is the template name rendered by Home.
const HomeTemplate = "index.html"

//
// Service contracts (context-aware)
//

// QueryService defines the read operations consumed by HTTP handlers.
type QueryService interface {
	All(ctx context.Context) ([]domain.Cafe, error)
	Random(ctx context.Context) (*domain.Cafe, error)
	Search(ctx context.Context, loc string) ([]domain.Cafe, error)
}

// MutationService defines the write operations consumed by HTTP handlers.
type MutationService interface {
	Add(ctx context.Context, in services.NewCafe) (*domain.Cafe, error)
	UpdatePrice(ctx context.Context, id int, price *string) (*domain.Cafe, error)
	Delete(ctx context.Context, id int) (*domain.Cafe, error)
}

//
// Handler wiring
//

// Handlers groups the catalog HTTP endpoints.
type Handlers struct {
	query QueryService
	mut   MutationService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(q QueryService, m MutationService) *Handlers {
	return &Handlers{query: q, mut: m}
}

//
// Helpers
//

// param reads a request value from the form body first, then the query
// string. The second result reports presence.
func param(c *gin.Context, name string) (string, bool) {
	if v, ok := c.GetPostForm(name); ok {
		return v, true
	}
	return c.GetQuery(name)
}

// flag applies the presence rule: any non-empty value is true.
func flag(c *gin.Context, name string) bool {
	return utils.Presence(param(c, name))
}

// cafeID parses the :cafe_id segment. Non-integers do not name a cafe route,
// so they are answered like an unknown path.
func cafeID(c *gin.Context) (int, bool) {
	id, ok := utils.ParseID(c.Param("cafe_id"))
	if !ok {
		fail(c, http.StatusNotFound, MsgRouteNotFound)
	}
	return id, ok
}

// serverError records err on the context and answers 500.
func serverError(c *gin.Context, err error) {
	_ = c.Error(err)
	fail(c, http.StatusInternalServerError, middleware.MsgInternal)
}

//
// Handlers
//

// Home godoc
// @ID          home
// @Summary     Home page
// @Description Renders the static landing page.
// @Tags        Pages
// @Produce     html
// @Success     200  {string} string "HTML page"
// @Router      / [get]
func (h *Handlers) Home(c *gin.Context) {
	c.HTML(http.StatusOK, HomeTemplate, nil)
}

// Random godoc
// @ID          randomCafe
// @Summary     Random cafe
// @Description Returns one cafe chosen uniformly at random.
// @Tags        Cafes
// @Produce     json
// @Success     200  {object} domain.CafeJSON
// @Failure     404  {object} handlers.ErrorResponse "Catalog is empty"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /random [get]
func (h *Handlers) Random(c *gin.Context) {
	cafe, err := h.query.Random(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrNoCafes) {
			fail(c, http.StatusNotFound, MsgNoCafes)
			return
		}
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, cafe.JSON())
}

// All godoc
// @ID          allCafes
// @Summary     List all cafes
// @Description Returns every cafe in store order.
// @Tags        Cafes
// @Produce     json
// @Success     200  {object} domain.CafeList
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /all [get]
func (h *Handlers) All(c *gin.Context) {
	cafes, err := h.query.All(c.Request.Context())
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, domain.CafeList{Cafe: domain.SerializeAll(cafes)})
}

// Search godoc
// @ID          searchCafes
// @Summary     Search cafes by location
// @Description Title-cases loc and returns every cafe whose location equals it exactly.
// @Tags        Cafes
// @Produce     json
// @Param       loc  query  string  true  "Location"  example(peckham)
// @Success     200  {array}  domain.CafeJSON
// @Failure     400  {object} handlers.ErrorResponse "Missing loc"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /search [get]
func (h *Handlers) Search(c *gin.Context) {
	loc, present := c.GetQuery("loc")
	if !present {
		fail(c, http.StatusBadRequest, MsgMissingLocation)
		return
	}
	cafes, err := h.query.Search(c.Request.Context(), loc)
	if err != nil {
		serverError(c, err)
		return
	}
	ok(c, http.StatusOK, domain.SerializeAll(cafes))
}

// Add godoc
// @ID          addCafe
// @Summary     Add a cafe
// @Description Creates a cafe from form (or query) values. Boolean fields are true when present and non-empty.
// @Tags        Cafes
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       api-key          header    string  true   "Shared API key"
// @Param       Idempotency-Key  header    string  false  "Replay key for safe retries"
// @Param       name             formData  string  true   "Name"
// @Param       map_url          formData  string  true   "Map URL"
// @Param       img_url          formData  string  true   "Image URL"
// @Param       location         formData  string  true   "Location"
// @Param       seats            formData  string  true   "Seats"          example(20-30)
// @Param       coffee_price     formData  string  false  "Coffee price"   example(£2.40)
// @Param       has_toilet       formData  string  false  "Any non-empty value means true"
// @Param       has_wifi         formData  string  false  "Any non-empty value means true"
// @Param       has_sockets      formData  string  false  "Any non-empty value means true"
// @Param       can_take_calls   formData  string  false  "Any non-empty value means true"
// @Success     200  {object} handlers.SuccessResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing field"
// @Failure     403  {object} handlers.ErrorResponse "Bad api key"
// @Failure     409  {object} handlers.ErrorResponse "Duplicate name"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /add [post]
func (h *Handlers) Add(c *gin.Context) {
	in := services.NewCafe{
		Name:         utils.Optional(param(c, "name")),
		MapURL:       utils.Optional(param(c, "map_url")),
		ImgURL:       utils.Optional(param(c, "img_url")),
		Location:     utils.Optional(param(c, "location")),
		Seats:        utils.Optional(param(c, "seats")),
		HasToilet:    flag(c, "has_toilet"),
		HasWifi:      flag(c, "has_wifi"),
		HasSockets:   flag(c, "has_sockets"),
		CanTakeCalls: flag(c, "can_take_calls"),
		CoffeePrice:  utils.Optional(param(c, "coffee_price")),
	}

	cafe, err := h.mut.Add(c.Request.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingField):
			field := strings.TrimPrefix(err.Error(), services.ErrMissingField.Error()+": ")
			fail(c, http.StatusBadRequest, fmt.Sprintf("Missing required field: %s.", field))
		case errors.Is(err, services.ErrDuplicateName):
			fail(c, http.StatusConflict, fmt.Sprintf("A cafe named %s already exists.", *in.Name))
		default:
			serverError(c, err)
		}
		return
	}
	success(c, fmt.Sprintf("Successfully added %s.", cafe.Name))
}

// UpdatePrice godoc
// @ID          updatePrice
// @Summary     Update coffee price
// @Description Overwrites the coffee price of a cafe.
// @Tags        Cafes
// @Produce     json
// @Param       cafe_id    path   int     true  "Cafe ID"    example(1)
// @Param       new_price  query  string  true  "New price"  example(£3.10)
// @Success     200  {object} handlers.SuccessResponse
// @Failure     400  {object} handlers.ErrorResponse "Missing new_price"
// @Failure     404  {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /update-price/{cafe_id} [patch]
func (h *Handlers) UpdatePrice(c *gin.Context) {
	id, valid := cafeID(c)
	if !valid {
		return
	}
	price := utils.Optional(c.GetQuery("new_price"))

	if _, err := h.mut.UpdatePrice(c.Request.Context(), id, price); err != nil {
		switch {
		case errors.Is(err, services.ErrCafeNotFound):
			fail(c, http.StatusNotFound, MsgCafeNotFound)
		case errors.Is(err, services.ErrMissingPrice):
			fail(c, http.StatusBadRequest, MsgMissingNewPrice)
		default:
			serverError(c, err)
		}
		return
	}
	success(c, fmt.Sprintf("Successfully updated the price to %s.", *price))
}

// ReportClosed godoc
// @ID          reportClosed
// @Summary     Delete a closed cafe
// @Description Removes a cafe from the catalog.
// @Tags        Cafes
// @Produce     json
// @Param       api-key  header  string  true  "Shared API key"
// @Param       cafe_id  path    int     true  "Cafe ID"  example(1)
// @Success     200  {object} handlers.SuccessResponse
// @Failure     403  {object} handlers.ErrorResponse "Bad api key"
// @Failure     404  {object} handlers.ErrorResponse "Cafe not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /report-closed/{cafe_id} [delete]
func (h *Handlers) ReportClosed(c *gin.Context) {
	id, valid := cafeID(c)
	if !valid {
		return
	}
	cafe, err := h.mut.Delete(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrCafeNotFound) {
			fail(c, http.StatusNotFound, MsgCafeNotFound)
			return
		}
		serverError(c, err)
		return
	}
	success(c, fmt.Sprintf("Successfully deleted %s.", cafe.Name))
}
