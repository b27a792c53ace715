package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/fekuna/omnipos-availability-service/internal/apperr"
	"github.com/fekuna/omnipos-availability-service/internal/httpx"
	"github.com/fekuna/omnipos-availability-service/internal/model"
	"github.com/fekuna/omnipos-availability-service/pkg/logger"
)

// HeaderShopDomain is set by the session layer in front of the admin API.
const HeaderShopDomain = "X-Shop-Domain"

type ctxKey struct{}

func WithShop(ctx context.Context, s *model.Shop) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// GetShop returns the authenticated shop, or nil outside RequireShop.
func GetShop(ctx context.Context) *model.Shop {
	if s, ok := ctx.Value(ctxKey{}).(*model.Shop); ok {
		return s
	}
	return nil
}

// ShopLookup resolves an installed shop by its myshopify domain.
type ShopLookup interface {
	ShopByDomain(ctx context.Context, domain string) (*model.Shop, error)
}

// RequireShop resolves the shop named by X-Shop-Domain and stores it in the request context.
func RequireShop(shops ShopLookup, log logger.ZapLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			domain := strings.TrimSpace(r.Header.Get(HeaderShopDomain))
			if domain == "" {
				httpx.WriteError(w, log, r, apperr.ErrUnauthenticated)
				return
			}
			s, err := shops.ShopByDomain(r.Context(), domain)
			if err != nil {
				httpx.WriteError(w, log, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithShop(r.Context(), s)))
		})
	}
}
