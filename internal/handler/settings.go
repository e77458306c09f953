package handler

import (
	"net/http"
	"sort"

	"github.com/go-faster/jx"
)

func (h *Handler) listSettings(w http.ResponseWriter, r *http.Request) {
	m, err := h.settings.All(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			for _, k := range keys {
				e.Field(k, func(e *jx.Encoder) { e.Str(m[k]) })
			}
		})
	})
}

func (h *Handler) updateSetting(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var value string
	err := decodeBody(r, func(d *jx.Decoder, field string) error {
		if field == "value" {
			v, err := d.Str()
			value = v
			return err
		}
		return d.Skip()
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid setting payload: %s", err))
		return
	}

	if err := h.settings.Set(r.Context(), key, value); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("key", func(e *jx.Encoder) { e.Str(key) })
			e.Field("value", func(e *jx.Encoder) { e.Str(value) })
		})
	})
}
