package httpx

import (
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/reviews"
	"net/http"
)

func (a *API) listSellers(w http.ResponseWriter, r *http.Request) {
	ss, err := a.Catalog.Sellers(r.Context())
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, ss)
}

func (a *API) getSeller(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	s, err := a.Catalog.Seller(r.Context(), id)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, s)
}

func (a *API) createSeller(w http.ResponseWriter, r *http.Request) {
	var in catalog.SellerInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	s, err := a.Catalog.CreateSeller(r.Context(), principal(r.Context()), in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, s)
}

func (a *API) updateSeller(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in catalog.SellerInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	s, err := a.Catalog.UpdateSeller(r.Context(), principal(r.Context()), id, in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, s)
}

func (a *API) approveSeller(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	s, err := a.Catalog.ApproveSeller(r.Context(), principal(r.Context()), id)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, s)
}

func (a *API) myProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := a.Catalog.MyProducts(r.Context(), principal(r.Context()))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, ps)
}

func (a *API) myStats(w http.ResponseWriter, r *http.Request) {
	st, err := a.Catalog.MyStats(r.Context(), principal(r.Context()))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, st)
}

func (a *API) sellerReport(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	from, to := q.date("startDate"), q.date("endDate")
	if err := q.err(); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	rep, err := a.Reports.SellerReport(r.Context(), principal(r.Context()), from, to)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, rep)
}

func (a *API) bulkCreateProducts(w http.ResponseWriter, r *http.Request) {
	in, err := decodeList[catalog.ProductInput](r)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ps, err := a.Catalog.BulkCreateProducts(r.Context(), principal(r.Context()), in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, ps)
}

func (a *API) bulkUpdateStock(w http.ResponseWriter, r *http.Request) {
	in, err := decodeList[catalog.StockUpdate](r)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	if err := a.Catalog.BulkUpdateStock(r.Context(), principal(r.Context()), in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) createReview(w http.ResponseWriter, r *http.Request) {
	sellerID, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in reviews.CreateInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	rv, err := a.Reviews.Create(r.Context(), principal(r.Context()), sellerID, in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, rv)
}

func (a *API) listReviews(w http.ResponseWriter, r *http.Request) {
	sellerID, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	rs, err := a.Reviews.List(r.Context(), sellerID)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, rs)
}

func (a *API) getReview(w http.ResponseWriter, r *http.Request) {
	sellerID, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	reviewID, err := pathID(r, "reviewId")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	rv, err := a.Reviews.Get(r.Context(), sellerID, reviewID)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, rv)
}
