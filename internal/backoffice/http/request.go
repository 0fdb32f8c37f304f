package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/service"
	"github.com/aussiebroadwan/escritorio/pkg/httpx"
	"github.com/shopspring/decimal"
)

// actorFrom builds the service actor from the principal stored by
// AuthnMiddleware.
func actorFrom(r *http.Request) service.Actor {
	p, _ := httpx.PrincipalFromContext(r.Context())
	return service.Actor{
		UserID:   p.UserID,
		Name:     p.Name,
		Role:     domain.Role(p.Role),
		ClientID: p.ClientID,
	}
}

func query(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

// decimalQuery parses a money query parameter. An absent value is zero.
func decimalQuery(r *http.Request, key string) (decimal.Decimal, error) {
	v := query(r, key)
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := service.ParseAmount(v)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(key, "must be a number")
	}
	return d, nil
}

// listResponse wraps a list so the payload stays an object.
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Count: len(items)}
}
