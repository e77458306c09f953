package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-faster/jx"

	"github.com/smartinventory/pos/internal/domain/billing"
	"github.com/smartinventory/pos/internal/domain/settings"
	"github.com/smartinventory/pos/internal/printing"
)

const (
	// defaultInvoiceLimit bounds the invoice listing when no limit is given.
	defaultInvoiceLimit = 50
	maxInvoiceLimit     = 500
)

func (h *Handler) doCheckout(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCheckoutRequest(r)
	if err != nil {
		respondError(w, r, badRequestf("invalid checkout payload: %s", err))
		return
	}

	operator := ""
	if u, ok := userFromContext(r.Context()); ok {
		operator = u.Username
	}

	res, err := h.checkout.Checkout(r.Context(), req, operator)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("invoice", func(e *jx.Encoder) { encodeInvoice(e, res.Invoice, true) })
			if res.PaymentURI != "" {
				e.Field("payment_uri", func(e *jx.Encoder) { e.Str(res.PaymentURI) })
			}
		})
	})
}

func decodeCheckoutRequest(r *http.Request) (billing.CheckoutRequest, error) {
	var req billing.CheckoutRequest
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "customer_mobile":
			v, err := d.Str()
			req.CustomerMobile = v
			return err
		case "customer_name":
			v, err := d.Str()
			req.CustomerName = v
			return err
		case "payment_mode":
			v, err := d.Str()
			if err != nil {
				return err
			}
			mode, err := billing.ParsePaymentMode(v)
			req.PaymentMode = mode
			return err
		case "card":
			card := &billing.CardDetails{}
			err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				switch string(key) {
				case "holder_name":
					v, err := d.Str()
					card.HolderName = v
					return err
				case "number":
					v, err := d.Str()
					card.Number = v
					return err
				case "expiry":
					v, err := d.Str()
					card.Expiry = v
					return err
				case "cvv":
					v, err := d.Str()
					card.CVV = v
					return err
				default:
					return d.Skip()
				}
			})
			req.Card = card
			return err
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				var item billing.CartItem
				err := d.ObjBytes(func(d *jx.Decoder, key []byte) error {
					switch string(key) {
					case "product_id":
						v, err := d.Int64()
						item.ProductID = v
						return err
					case "quantity":
						v, err := d.Int()
						item.Quantity = v
						return err
					default:
						return d.Skip()
					}
				})
				req.Items = append(req.Items, item)
				return err
			})
		default:
			return d.Skip()
		}
	})
	return req, err
}

func encodeInvoice(e *jx.Encoder, inv *billing.Invoice, withItems bool) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Str(inv.ID) })
		e.Field("customer_mobile", func(e *jx.Encoder) { e.Str(inv.CustomerMobile) })
		e.Field("customer_name", func(e *jx.Encoder) { e.Str(inv.CustomerName) })
		e.Field("operator", func(e *jx.Encoder) { e.Str(inv.Operator) })
		e.Field("subtotal", func(e *jx.Encoder) { e.Float64(inv.Subtotal.InexactFloat64()) })
		e.Field("gst_amount", func(e *jx.Encoder) { e.Float64(inv.GSTAmount.InexactFloat64()) })
		e.Field("total", func(e *jx.Encoder) { e.Float64(inv.Total.InexactFloat64()) })
		e.Field("payment_mode", func(e *jx.Encoder) { e.Str(string(inv.PaymentMode)) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(inv.CreatedAt.Format(time.RFC3339)) })
		if withItems {
			e.Field("items", func(e *jx.Encoder) {
				e.Arr(func(e *jx.Encoder) {
					for _, item := range inv.Items {
						e.Obj(func(e *jx.Encoder) {
							e.Field("product_id", func(e *jx.Encoder) { e.Int64(item.ProductID) })
							e.Field("name", func(e *jx.Encoder) { e.Str(item.ProductName) })
							e.Field("quantity", func(e *jx.Encoder) { e.Int(item.Quantity) })
							e.Field("unit_price", func(e *jx.Encoder) { e.Float64(item.UnitPrice.InexactFloat64()) })
						})
					}
				})
			})
		}
	})
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	limit := defaultInvoiceLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 || v > maxInvoiceLimit {
			respondError(w, r, badRequestf("invalid limit"))
			return
		}
		limit = v
	}

	invoices, err := h.invoices.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Arr(func(e *jx.Encoder) {
			for i := range invoices {
				encodeInvoice(e, &invoices[i], false)
			}
		})
	})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) { encodeInvoice(e, inv, true) })
}

func (h *Handler) invoicePDF(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	raw, err := h.settings.All(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	cfg := settings.FromMap(raw)

	pdf, err := printing.RenderInvoice(inv, cfg.StoreName)
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+printing.InvoiceFilename(inv)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(pdf)
}
