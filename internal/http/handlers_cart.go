package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"cassa/internal/core"
	"cassa/internal/pos"
)

type cartView struct {
	Terminal string          `json:"terminal"`
	Lines    []core.CartLine `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Items    int             `json:"items"`
}

func newCartView(terminal string, c pos.Cart) cartView {
	lines := c.Lines()
	if lines == nil {
		lines = []core.CartLine{}
	}
	items := 0
	for _, l := range lines {
		items += l.Quantity
	}
	return cartView{Terminal: terminal, Lines: lines, Total: c.Total(), Items: items}
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	writeJSON(w, http.StatusOK, newCartView(terminal, s.svc.Checkout.Cart(terminal)))
}

func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	var in cartItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	cart, err := s.svc.Checkout.AddItem(r.Context(), terminal, in.ProductID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newCartView(terminal, cart))
}

func (s *Server) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	var in quantityInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if in.Delta == nil {
		writeError(w, r, badRequest("missing delta"))
		return
	}
	cart := s.svc.Checkout.UpdateQuantity(terminal, chi.URLParam(r, "productId"), *in.Delta)
	writeJSON(w, http.StatusOK, newCartView(terminal, cart))
}

func (s *Server) handleRemoveCartItem(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	cart := s.svc.Checkout.RemoveItem(terminal, chi.URLParam(r, "productId"))
	writeJSON(w, http.StatusOK, newCartView(terminal, cart))
}

func (s *Server) handleClearCart(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	s.svc.Checkout.ClearCart(terminal)
	writeJSON(w, http.StatusOK, newCartView(terminal, pos.NewCart()))
}

type declinedResponse struct {
	Declined bool   `json:"declined"`
	Reason   string `json:"reason"`
}

// handleCheckout answers 201 with the sale, or 200 with declined=true when
// the cart is empty.
func (s *Server) handleCheckout(w http.ResponseWriter, r *http.Request) {
	terminal := chi.URLParam(r, "terminal")
	var in checkoutInput
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}
	}
	method, err := in.paymentMethod()
	if err != nil {
		writeError(w, r, err)
		return
	}

	sale, ok, err := s.svc.Checkout.Checkout(r.Context(), terminal, method, optionalText(in.CustomerName))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeJSON(w, http.StatusOK, declinedResponse{Declined: true, Reason: "cart is empty"})
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}
