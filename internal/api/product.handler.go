package api

import (
	"net/http"
	"strings"

	"bestea-be/internal/product"
	"bestea-be/internal/transport"
	"bestea-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := product.ListOptions{
		Page:  utils.ParsePositiveInt(q.Get("page"), 1),
		Limit: utils.ParsePositiveInt(q.Get("limit"), 0),
		// inactive products are only listed for admins
		IncludeInactive: utils.IsAdmin(r.Context()) && q.Get("includeInactive") == "true",
		Search:          strings.TrimSpace(q.Get("search")),
	}

	res, err := h.ProductSvc.List(r.Context(), opts)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.ProductSvc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, p)
}
