package http

import (
	"net/http"

	"frogbudget/internal/core"
)

func (s *Server) handleListWishlist(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	items, err := s.budget.Storage().ListWishlist(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	resp := make([]wishlistResponse, 0, len(items))
	for _, item := range items {
		resp = append(resp, toWishlistResponse(item))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleCreateWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	item, errResp := wishlistFromBody(w, r, userID)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.budget.CreateWishlistItem(r.Context(), item)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Status(http.StatusCreated).Body(toWishlistResponse(created)).Write(w)
}

func (s *Server) handleUpdateWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	item, errResp := wishlistFromBody(w, r, userID)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	item.ID = r.PathValue("id")

	if err := s.budget.UpdateWishlistItem(r.Context(), item); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Body(toWishlistResponse(item)).Write(w)
}

func (s *Server) handleDeleteWishlistItem(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	if err := s.budget.DeleteWishlistItem(r.Context(), userID, r.PathValue("id")); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	w.WriteHeader(http.StatusNoContent)
}

func wishlistFromBody(w http.ResponseWriter, r *http.Request, userID string) (core.WishlistItem, *JSONResponseBuilder) {
	var payload wishlistPayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		return core.WishlistItem{}, errResp
	}

	amount, errResp := parseAmount(payload.Amount)
	if errResp != nil {
		return core.WishlistItem{}, errResp
	}

	priority := core.Priority(sanitizeInput(payload.Priority))
	if priority == "" {
		priority = core.PriorityMedium
	}

	return core.WishlistItem{
		UserID:     userID,
		CategoryID: sanitizeInput(payload.CategoryID),
		Name:       sanitizeInput(payload.Name),
		Amount:     amount,
		Priority:   priority,
		Notes:      sanitizeInput(payload.Notes),
	}, nil
}
