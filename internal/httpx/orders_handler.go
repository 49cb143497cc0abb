package httpx

import (
	"context"
	"github.com/ariefcatur/go-marketplace/internal/orders"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"github.com/ariefcatur/go-marketplace/internal/reports"
	"net/http"
	"strings"
	"time"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type placeOrderMeta struct {
	Replayed bool `json:"replayed"`
}

type itemStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (a *API) placeOrder(w http.ResponseWriter, r *http.Request) {
	var in orders.PlaceOrderInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	key := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
	o, replayed, err := a.Orders.PlaceOrder(ctx, principal(ctx), key, in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	code := http.StatusCreated
	if replayed {
		code = http.StatusOK
	}
	okMeta(w, code, o, placeOrderMeta{Replayed: replayed})
}

func (a *API) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := a.Orders.Order(ctx, principal(ctx), id)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, o)
}

func (a *API) sellerOrders(w http.ResponseWriter, r *http.Request) {
	list, err := a.Orders.SellerOrders(r.Context(), principal(r.Context()), r.URL.Query().Get("status"))
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, list)
}

func (a *API) updateItemStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in itemStatusReq
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	to, err := orders.ParseItemStatus(in.Status)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	change, err := a.Orders.UpdateItemStatus(ctx, principal(ctx), id, to)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, change)
}

func (a *API) orderStats(w http.ResponseWriter, r *http.Request) {
	q := &query{r: r}
	from, to := q.date("startDate"), q.date("endDate")
	if err := q.err(); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	st, err := a.Reports.OrderStats(r.Context(), principal(r.Context()), from, to)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, st)
}

func (a *API) searchOrders(w http.ResponseWriter, r *http.Request) {
	oq, err := parseOrderQuery(r)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	page, err := a.Reports.SearchOrders(r.Context(), principal(r.Context()), oq)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	okMeta(w, http.StatusOK, page.Items, page.Meta)
}

func parseOrderQuery(r *http.Request) (reports.OrderQuery, error) {
	q := &query{r: r}
	oq := reports.OrderQuery{
		MinAmount: q.dec("minAmount"),
		MaxAmount: q.dec("maxAmount"),
		From:      q.date("startDate"),
		To:        q.date("endDate"),
		Page:      paging.Normalize(q.num("page"), q.num("pageSize")),
	}
	if err := q.err(); err != nil {
		return oq, err
	}
	if s := q.str("status"); s != "" {
		st, err := orders.ParseStatus(s)
		if err != nil {
			return oq, err
		}
		oq.Status = &st
	}
	if s := q.str("paymentStatus"); s != "" {
		ps, err := orders.ParsePaymentStatus(s)
		if err != nil {
			return oq, err
		}
		oq.PaymentStatus = &ps
	}
	sort, err := reports.ParseOrderSort(q.str("sortBy"))
	if err != nil {
		return oq, err
	}
	oq.Sort = sort
	return oq, nil
}
