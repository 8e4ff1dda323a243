package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/alfagnish/simple-crud/internal/middleware"
	"github.com/alfagnish/simple-crud/internal/users"
	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

// UsersHandler provides the user CRUD endpoints.
type UsersHandler struct {
	store  *users.Store
	logger *slog.Logger
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(store *users.Store, logger *slog.Logger) *UsersHandler {
	return &UsersHandler{store: store, logger: logger}
}

// Routes registers user routes on the given chi router.
func (h *UsersHandler) Routes(r chi.Router) {
	r.Get("/", h.ListUsers)
	r.Post("/", h.CreateUser)
	r.Get("/{id}", h.GetUser)
	r.Put("/{id}", h.UpdateUser)
	r.Delete("/{id}", h.DeleteUser)
}

// userPayload is the request body for create and update. Every field is
// optional at the decoding stage; the store decides what is required.
type userPayload struct {
	Name  *string         `json:"name"`
	Email *string         `json:"email"`
	Age   json.RawMessage `json:"age"`
}

func (p userPayload) input() (users.Input, error) {
	age, err := users.ParseAge(p.Age)
	if err != nil {
		return users.Input{}, err
	}
	return users.Input{Name: p.Name, Email: p.Email, Age: age}, nil
}

// ListUsers returns all users in insertion order.
func (h *UsersHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	list := h.store.List(r.Context())
	count := len(list)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: list, Count: &count})
}

// GetUser returns a single user.
func (h *UsersHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusNotFound, users.MsgNotFound)
		return
	}

	u, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: u})
}

// CreateUser creates a new user from name, email and age.
func (h *UsersHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	u, err := h.store.Create(r.Context(), in)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, envelope{Success: true, Data: u, Message: "User created successfully"})
}

// UpdateUser overwrites the provided fields of an existing user.
func (h *UsersHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusNotFound, users.MsgNotFound)
		return
	}

	// A missing record wins over a bad body.
	if _, err := h.store.Get(r.Context(), id); err != nil {
		h.writeStoreError(w, r, err)
		return
	}

	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	u, err := h.store.Update(r.Context(), id, in)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: u, Message: "User updated successfully"})
}

// DeleteUser removes a user and returns the removed record.
func (h *UsersHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userID(r)
	if !ok {
		writeError(w, http.StatusNotFound, users.MsgNotFound)
		return
	}

	u, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: u, Message: "User deleted successfully"})
}

// userID parses the {id} segment. A non-integer segment can never match a
// record, so callers treat !ok as not found.
func userID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeInput reads the JSON body into a users.Input. An empty body is an
// empty object; anything after the first JSON value is malformed. On failure
// the response has already been written.
func (h *UsersHandler) decodeInput(w http.ResponseWriter, r *http.Request) (users.Input, bool) {
	var p userPayload
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	err := dec.Decode(&p)
	if err == nil {
		if dec.Decode(&struct{}{}) != io.EOF {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return users.Input{}, false
		}
	} else if !errors.Is(err, io.EOF) {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value for field %s", typeErr.Field))
			return users.Input{}, false
		}
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return users.Input{}, false
	}

	in, err := p.input()
	if err != nil {
		h.writeStoreError(w, r, err)
		return users.Input{}, false
	}
	return in, true
}

// writeStoreError maps store failures to status codes. Unknown errors are
// logged and reported without detail.
func (h *UsersHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *users.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Message)
	case errors.Is(err, users.ErrDuplicateEmail):
		writeError(w, http.StatusBadRequest, users.MsgDuplicateEmail)
	case errors.Is(err, users.ErrNotFound):
		writeError(w, http.StatusNotFound, users.MsgNotFound)
	default:
		h.logger.ErrorContext(r.Context(), "store operation failed",
			"error", err,
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.RequestIDFromContext(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, MsgInternalError)
	}
}
