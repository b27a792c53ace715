package handler

import (
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/auth"
	"github.com/fekuna/omnipos-availability-service/internal/availability"
	"github.com/fekuna/omnipos-availability-service/internal/availability/dto"
	"github.com/fekuna/omnipos-availability-service/internal/day"
	"github.com/fekuna/omnipos-availability-service/internal/httpx"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type AvailabilityHandler struct {
	uc     availability.UseCase
	shops  auth.ShopLookup
	logger logger.ZapLogger
}

func NewAvailabilityHandler(uc availability.UseCase, shops auth.ShopLookup, log logger.ZapLogger) *AvailabilityHandler {
	return &AvailabilityHandler{
		uc:     uc,
		shops:  shops,
		logger: log,
	}
}

func (h *AvailabilityHandler) CalendarPage(w http.ResponseWriter, r *http.Request) {
	shop := auth.GetShop(r.Context())

	v := &apperr.ValidationError{}
	from, err := day.Parse(r.URL.Query().Get("from"))
	if err != nil {
		v.Add("from", "must be a YYYY-MM-DD date")
	}
	to, err := day.Parse(r.URL.Query().Get("to"))
	if err != nil {
		v.Add("to", "must be a YYYY-MM-DD date")
	}
	if err := v.OrNil(); err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}

	page, err := h.uc.CalendarPage(r.Context(), shop.ID, chi.URLParam(r, "id"), from, to)
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, page)
}

// AvailableDates lists every future date of a resource, sold out dates included.
func (h *AvailabilityHandler) AvailableDates(w http.ResponseWriter, r *http.Request) {
	shop := auth.GetShop(r.Context())

	dates, err := h.uc.ComputeAvailableDates(r.Context(), shop.ID, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"availableDates": dates})
}

type createPeriodRequest struct {
	Dates            []day.Date `json:"dates"`
	Quantity         *int       `json:"quantity"`
	QuantityIsShared bool       `json:"quantityIsShared"`
}

func (h *AvailabilityHandler) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	shop := auth.GetShop(r.Context())

	var req createPeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}

	p, err := h.uc.CreatePeriod(r.Context(), &dto.CreatePeriodInput{
		ShopID:           shop.ID,
		ShopResourceID:   chi.URLParam(r, "id"),
		Dates:            req.Dates,
		Quantity:         req.Quantity,
		QuantityIsShared: req.QuantityIsShared,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, p)
}

type updatePeriodRequest struct {
	NewDates         []day.Date `json:"newDates"`
	DeletedDates     []day.Date `json:"deletedDates"`
	PausedDates      []day.Date `json:"pausedDates"`
	Quantity         *int       `json:"quantity"`
	QuantityIsShared *bool      `json:"quantityIsShared"`
}

func (h *AvailabilityHandler) UpdatePeriod(w http.ResponseWriter, r *http.Request) {
	shop := auth.GetShop(r.Context())

	var req updatePeriodRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}

	p, err := h.uc.UpdatePeriod(r.Context(), &dto.UpdatePeriodInput{
		ShopID:           shop.ID,
		PeriodID:         chi.URLParam(r, "id"),
		NewDates:         req.NewDates,
		DeletedDates:     req.DeletedDates,
		PausedDates:      req.PausedDates,
		Quantity:         req.Quantity,
		QuantityIsShared: req.QuantityIsShared,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, p)
}

func (h *AvailabilityHandler) DeletePeriod(w http.ResponseWriter, r *http.Request) {
	shop := auth.GetShop(r.Context())

	if err := h.uc.DeletePeriod(r.Context(), shop.ID, chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ProductAvailability serves the storefront widget. The shop comes from the
// ?shop= query parameter Shopify adds to storefront requests.
func (h *AvailabilityHandler) ProductAvailability(w http.ResponseWriter, r *http.Request) {
	domain := strings.TrimSpace(r.URL.Query().Get("shop"))
	if domain == "" {
		httpx.WriteError(w, h.logger, r, apperr.NewValidation("shop", "is required"))
		return
	}
	shop, err := h.shops.ShopByDomain(r.Context(), domain)
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}

	out, err := h.uc.FindFutureAvailableDates(r.Context(), shop.ID, chi.URLParam(r, "productId"))
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=60")
	httpx.WriteJSON(w, http.StatusOK, out)
}
