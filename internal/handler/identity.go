package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/smartinventory/pos/internal/domain/identity"
)

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var username, password string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "username":
			v, err := d.Str()
			username = v
			return err
		case "password":
			v, err := d.Str()
			password = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid login payload: %s", err))
		return
	}

	u, err := h.identity.Login(r.Context(), username, password)
	if err != nil {
		respondError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("token", func(e *jx.Encoder) { e.Str(token) })
			e.Field("user", func(e *jx.Encoder) { encodeUser(e, u) })
		})
	})
}

func encodeUser(e *jx.Encoder, u *identity.User) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("id", func(e *jx.Encoder) { e.Int64(u.ID) })
		e.Field("full_name", func(e *jx.Encoder) { e.Str(u.FullName) })
		e.Field("username", func(e *jx.Encoder) { e.Str(u.Username) })
		e.Field("role", func(e *jx.Encoder) { e.Str(string(u.Role)) })
		e.Field("created_at", func(e *jx.Encoder) { e.Str(u.CreatedAt.Format(time.RFC3339)) })
	})
}

func (h *Handler) changePassword(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}

	var oldPassword, newPassword string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "old_password":
			v, err := d.Str()
			oldPassword = v
			return err
		case "new_password":
			v, err := d.Str()
			newPassword = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid password payload: %s", err))
		return
	}

	if err := h.identity.ChangePassword(r.Context(), u.Username, oldPassword, newPassword); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("status", func(e *jx.Encoder) { e.Str("password changed") })
		})
	})
}

func (h *Handler) createOperator(w http.ResponseWriter, r *http.Request) {
	var fullName, username, password string
	err := decodeBody(r, func(d *jx.Decoder, key string) error {
		switch key {
		case "full_name":
			v, err := d.Str()
			fullName = v
			return err
		case "username":
			v, err := d.Str()
			username = v
			return err
		case "password":
			v, err := d.Str()
			password = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		respondError(w, r, badRequestf("invalid operator payload: %s", err))
		return
	}

	u, err := h.identity.CreateOperator(r.Context(), fullName, username, password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) { encodeUser(e, u) })
}
