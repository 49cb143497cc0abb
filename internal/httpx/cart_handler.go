package httpx

import (
	"github.com/ariefcatur/go-marketplace/internal/cart"
	"github.com/shopspring/decimal"
	"net/http"
)

// cartView adds the computed total to the cart body.
type cartView struct {
	*cart.Cart
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

func (a *API) writeCart(w http.ResponseWriter, r *http.Request, c *cart.Cart, err error) {
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, cartView{Cart: c, TotalAmount: c.Total()})
}

func (a *API) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := a.Cart.Get(r.Context(), principal(r.Context()))
	a.writeCart(w, r, c, err)
}

func (a *API) addCartItem(w http.ResponseWriter, r *http.Request) {
	var in cart.AddItemInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	c, err := a.Cart.AddItem(r.Context(), principal(r.Context()), in)
	a.writeCart(w, r, c, err)
}

func (a *API) updateCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in cart.UpdateItemInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	c, err := a.Cart.UpdateItem(r.Context(), principal(r.Context()), productID, in)
	a.writeCart(w, r, c, err)
}

func (a *API) removeCartItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	c, err := a.Cart.RemoveItem(r.Context(), principal(r.Context()), productID)
	a.writeCart(w, r, c, err)
}

func (a *API) getWishlist(w http.ResponseWriter, r *http.Request) {
	items, err := a.Wishlist.List(r.Context(), principal(r.Context()))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, items)
}

func (a *API) addWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	it, err := a.Wishlist.Add(r.Context(), principal(r.Context()), productID)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, it)
}

func (a *API) removeWishlistItem(w http.ResponseWriter, r *http.Request) {
	productID, err := pathID(r, "productId")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	if err := a.Wishlist.Remove(r.Context(), principal(r.Context()), productID); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
