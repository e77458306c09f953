package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/smartinventory/pos/internal/domain/catalog"
)

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(p.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("category_id", func(e *jx.Encoder) { e.Int64(p.CategoryID) })
		e.Field("category", func(e *jx.Encoder) { e.Str(p.CategoryName) })
		e.Field("selling_price", func(e *jx.Encoder) { e.Float64(p.SellingPrice.InexactFloat64()) })
		e.Field("cost_price", func(e *jx.Encoder) { e.Float64(p.CostPrice.InexactFloat64()) })
		e.Field("tax_rate", func(e *jx.Encoder) { e.Float64(p.TaxRate.InexactFloat64()) })
		e.Field("stock", func(e *jx.Encoder) { e.Int(p.Stock) })
		e.Field("sales_count", func(e *jx.Encoder) { e.Int(p.SalesCount) })
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

func (h *Handler) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		respondError(w, r, badRequestf("missing query parameter q"))
		return
	}

	products, err := h.products.SearchByPrefix(r.Context(), q)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, p := range products {
				encodeProduct(e, p)
			}
		})
	})
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, r, badRequestf("invalid product id"))
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req catalog.NewProduct
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "name":
			v, err := d.Str()
			req.Name = v
			return err
		case "category_id":
			v, err := d.Int64()
			req.CategoryID = v
			return err
		case "selling_price":
			return decodeDecimal(d, &req.SellingPrice)
		case "cost_price":
			return decodeDecimal(d, &req.CostPrice)
		case "tax_rate":
			return decodeDecimal(d, &req.TaxRate)
		case "stock":
			v, err := d.Int()
			req.Stock = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid product payload: %s", err))
		return
	}

	p, err := h.products.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) restockProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, r, badRequestf("invalid product id"))
		return
	}

	var qty int
	err = decodeBody(r, func(d *jx.Decoder, key string) error {
		if key == "quantity" {
			v, err := d.Int()
			qty = v
			return err
		}
		return d.Skip()
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid restock payload: %s", err))
		return
	}

	if err := h.products.Restock(r.Context(), id, qty); err != nil {
		respondError(w, r, err)
		return
	}

	p, err := h.products.GetByID(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeProduct(e, *p) })
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categories.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range categories {
				encodeCategory(e, c)
			}
		})
	})
}

func encodeCategory(e *jx.Encoder, c catalog.Category) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(c.ID) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
	})
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	name, err := decodeNameField(r)
	if err != nil {
		respondError(w, r, badRequestf("invalid category payload: %s", err))
		return
	}

	c, err := h.categories.Create(r.Context(), name)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeCategory(e, *c) })
}

func (h *Handler) renameCategory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, r, badRequestf("invalid category id"))
		return
	}

	name, err := decodeNameField(r)
	if err != nil {
		respondError(w, r, badRequestf("invalid category payload: %s", err))
		return
	}

	if err := h.categories.Rename(r.Context(), id, name); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCategory(e, catalog.Category{ID: id, Name: name})
	})
}

func decodeNameField(r *http.Request) (string, error) {
	var name string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		if key == "name" {
			v, err := d.Str()
			name = v
			return err
		}
		return d.Skip()
	})
	return name, err
}

// decodeDecimal accepts both JSON numbers and strings for money fields.
func decodeDecimal(d *jx.Decoder, out *decimal.Decimal) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		*out = v
		return nil
	default:
		raw, err := d.Num()
		if err != nil {
			return err
		}
		v, err := decimal.NewFromString(raw.String())
		if err != nil {
			return err
		}
		*out = v
		return nil
	}
}
