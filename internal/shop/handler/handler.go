package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-availability-service/internal/auth"
	"github.com/fekuna/omnipos-availability-service/internal/httpx"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/internal/shop"
	"github.com/fekuna/omnipos-availability-service/internal/shop/dto"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

type ShopHandler struct {
	uc     shop.UseCase
	logger logger.ZapLogger
}

func NewShopHandler(uc shop.UseCase, log logger.ZapLogger) *ShopHandler {
	return &ShopHandler{
		uc:     uc,
		logger: log,
	}
}

type listResourcesResponse struct {
	Items []model.ResourceAvailability `json:"items"`
	Total int                          `json:"total"`
}

func (h *ShopHandler) ListResources(w http.ResponseWriter, r *http.Request) {
	s := auth.GetShop(r.Context())
	q := r.URL.Query()

	items, total, err := h.uc.ListResources(r.Context(), &dto.ResourceFilters{
		ShopID:      s.ID,
		SearchQuery: q.Get("q"),
		SortBy:      q.Get("sort"),
		SortOrder:   q.Get("order"),
		Page:        httpx.QueryInt(r, "page", 1),
		PageSize:    httpx.QueryInt(r, "page_size", 50),
	})
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	if items == nil {
		items = []model.ResourceAvailability{}
	}
	httpx.WriteJSON(w, http.StatusOK, listResourcesResponse{Items: items, Total: total})
}

type registerResourceRequest struct {
	ResourceID string `json:"resourceId"`
	Title      string `json:"title"`
}

func (h *ShopHandler) RegisterResource(w http.ResponseWriter, r *http.Request) {
	s := auth.GetShop(r.Context())

	var req registerResourceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}

	res, err := h.uc.RegisterResource(r.Context(), &dto.RegisterResourceInput{
		ShopID:     s.ID,
		ResourceID: req.ResourceID,
		Title:      req.Title,
	})
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, res)
}

func (h *ShopHandler) Settings(w http.ResponseWriter, r *http.Request) {
	s := auth.GetShop(r.Context())

	settings, err := h.uc.Settings(r.Context(), s.ID)
	if err != nil {
		httpx.WriteError(w, h.logger, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, settings)
}
