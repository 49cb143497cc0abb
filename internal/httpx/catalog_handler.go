package httpx

import (
	"github.com/ariefcatur/go-marketplace/internal/catalog"
	"github.com/ariefcatur/go-marketplace/internal/paging"
	"net/http"
)

func parseProductFilter(r *http.Request) (catalog.ProductFilter, error) {
	q := &query{r: r}
	f := catalog.ProductFilter{
		SearchTerm: q.str("searchTerm"),
		MinPrice:   q.dec("minPrice"),
		MaxPrice:   q.dec("maxPrice"),
		CategoryID: q.optID("categoryId"),
		Page:       paging.Normalize(q.num("pageNumber"), q.num("pageSize")),
	}
	if err := q.err(); err != nil {
		return f, err
	}
	key, err := catalog.ParseSortKey(q.str("sortBy"))
	if err != nil {
		return f, err
	}
	desc, err := catalog.ParseDirection(q.str("sortDirection"))
	if err != nil {
		return f, err
	}
	f.SortBy, f.Desc = key, desc
	return f, nil
}

func (a *API) listProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseProductFilter(r)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	page, err := a.Catalog.Products(r.Context(), f)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	okMeta(w, http.StatusOK, page.Items, page.Meta)
}

func (a *API) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	p, err := a.Catalog.Product(r.Context(), id)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (a *API) createProduct(w http.ResponseWriter, r *http.Request) {
	var in catalog.ProductInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	p, err := a.Catalog.CreateProduct(r.Context(), principal(r.Context()), in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, p)
}

func (a *API) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	var in catalog.ProductInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	p, err := a.Catalog.UpdateProduct(r.Context(), principal(r.Context()), id, in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, p)
}

func (a *API) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	if err := a.Catalog.DeleteProduct(r.Context(), principal(r.Context()), id); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) listCategories(w http.ResponseWriter, r *http.Request) {
	cs, err := a.Catalog.Categories(r.Context())
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusOK, cs)
}

func (a *API) createCategory(w http.ResponseWriter, r *http.Request) {
	var in catalog.CategoryInput
	if err := decode(r, &in); err != nil {
		fail(w, r, a.Log, err)
		return
	}
	c, err := a.Catalog.CreateCategory(r.Context(), principal(r.Context()), in)
	if err != nil {
		fail(w, r, a.Log, err)
		return
	}
	ok(w, http.StatusCreated, c)
}
