package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/smartinventory/pos/internal/domain/customer"
)

func encodeCustomer(e *jx.Encoder, c customer.Customer) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("mobile", func(e *jx.Encoder) { e.Str(c.Mobile) })
		e.Field("name", func(e *jx.Encoder) { e.Str(c.Name) })
		e.Field("email", func(e *jx.Encoder) { e.Str(c.Email) })
		e.Field("total_spent", func(e *jx.Encoder) { e.Float64(c.TotalSpent.InexactFloat64()) })
		e.Field("total_visits", func(e *jx.Encoder) { e.Int(c.TotalVisits) })
		e.Field("joined_at", func(e *jx.Encoder) { e.Str(c.JoinedAt.Format(time.RFC3339)) })
	})
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for _, c := range customers {
				encodeCustomer(e, c)
			}
		})
	})
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.GetByMobile(r.Context(), r.PathValue("mobile"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeCustomer(e, *c) })
}
