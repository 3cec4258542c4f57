package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/restoka/closing/recordapi"
)

// GET /api/stores
func (h *Handler) listStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.DirectoryService.Stores(r.Context(), currentSession(r))
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, stores)
}

// GET /api/users
func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.DirectoryService.Users(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, users)
}

// POST /api/users
//
// The PIN is hashed here; the record service only ever sees the hash.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		Name        string   `json:"name" validate:"required"`
		Role        string   `json:"role" validate:"required,oneof=cashier manager admin"`
		PIN         string   `json:"pin" validate:"required,len=4,number"`
		StoreID     string   `json:"storeId"`
		StoreAccess []string `json:"storeAccess"`
	}](w, r)
	if !ok {
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(body.PIN), bcrypt.DefaultCost)
	if err != nil {
		serverError(w, err)
		return
	}
	user, err := h.DirectoryService.CreateUser(r.Context(), recordapi.NewUser{
		Name:        body.Name,
		Role:        body.Role,
		PINHash:     string(hash),
		StoreID:     body.StoreID,
		StoreAccess: body.StoreAccess,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusCreated, user)
}

// PATCH /api/users/{id}
func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	body, ok := decodeAndValidateBody[struct {
		Name        *string   `json:"name" validate:"omitempty,min=1"`
		Role        *string   `json:"role" validate:"omitempty,oneof=cashier manager admin"`
		PIN         *string   `json:"pin" validate:"omitempty,len=4,number"`
		StoreID     *string   `json:"storeId"`
		StoreAccess *[]string `json:"storeAccess"`
		Active      *bool     `json:"active"`
	}](w, r)
	if !ok {
		return
	}
	changes := recordapi.UserChanges{
		Name:        body.Name,
		Role:        body.Role,
		StoreID:     body.StoreID,
		StoreAccess: body.StoreAccess,
		Active:      body.Active,
	}
	if body.PIN != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*body.PIN), bcrypt.DefaultCost)
		if err != nil {
			serverError(w, err)
			return
		}
		hashStr := string(hash)
		changes.PINHash = &hashStr
	}
	user, err := h.DirectoryService.UpdateUser(r.Context(), chi.URLParam(r, "id"), changes)
	if err != nil {
		serviceError(w, err)
		return
	}
	respond(w, http.StatusOK, user)
}
