package httpx

import (
	"encoding/json"
	"errors"
	"github.com/ariefcatur/go-marketplace/internal/apperr"
	"io"
	"net/http"
)

// approveReviewReq defaults to approving when the body is empty.
type approveReviewReq struct {
	IsApproved *bool `json:"isApproved"`
}

func (a *API) pendingSellers(w http.ResponseWriter, r *http.Request) {
	ss, err := a.Catalog.PendingSellers(r.Context())
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, ss)
}

func (a *API) pendingReviews(w http.ResponseWriter, r *http.Request) {
	rs, err := a.Reviews.Pending(r.Context(), principal(r.Context()))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, rs)
}

func (a *API) approveReview(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in approveReviewReq
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil && !errors.Is(err, io.EOF) {
		fail(w, r, a.Log, apperr.Validation("invalid json", err.Error()))
		return
	}
	approved := in.IsApproved == nil || *in.IsApproved
	rv, err := a.Reviews.Approve(r.Context(), principal(r.Context()), id, approved)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, rv)
}

func (a *API) dashboard(w http.ResponseWriter, r *http.Request) {
	d, err := a.Reports.Dashboard(r.Context(), principal(r.Context()))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, d)
}
