package http

import (
	"net/http"

	"frogbudget/internal/core"
)

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	categories, err := s.budget.Storage().ListCategories(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	resp := categoryListResponse{
		Categories:    make([]categoryResponse, 0, len(categories)),
		PercentageSum: core.PercentageSum(categories),
	}
	for _, c := range categories {
		resp.Categories = append(resp.Categories, toCategoryResponse(c))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	var payload categoryPayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.budget.CreateCategory(r.Context(), core.Category{
		UserID:     userID,
		Name:       sanitizeInput(payload.Name),
		Percentage: payload.Percentage,
		Color:      sanitizeInput(payload.Color),
	})
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Status(http.StatusCreated).Body(toCategoryResponse(created)).Write(w)
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	var payload categoryPayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		errResp.Write(w)
		return
	}

	// Reload first so the stored position survives the update.
	categories, err := s.budget.Storage().ListCategories(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	id := r.PathValue("id")
	var updated core.Category
	found := false
	for _, c := range categories {
		if c.ID == id {
			updated = c
			found = true
			break
		}
	}
	if !found {
		NotFoundError("record not found").Write(w)
		return
	}

	updated.Name = sanitizeInput(payload.Name)
	updated.Percentage = payload.Percentage
	updated.Color = sanitizeInput(payload.Color)
	if err := s.budget.UpdateCategory(r.Context(), updated); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Body(toCategoryResponse(updated)).Write(w)
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	if err := s.budget.DeleteCategory(r.Context(), userID, r.PathValue("id")); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReorderCategories(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	var payload reorderPayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		errResp.Write(w)
		return
	}
	if len(payload.OrderedIDs) == 0 {
		BadRequestError("orderedIds must not be empty").Write(w)
		return
	}

	if err := s.budget.ReorderCategories(r.Context(), userID, payload.OrderedIDs); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	w.WriteHeader(http.StatusNoContent)
}

// handleSeedCategories creates the default category set for a fresh
// account. Conflicts once any category exists, soft-deleted ones included.
func (s *Server) handleSeedCategories(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	seeded, err := s.budget.SeedDefaultCategories(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	resp := make([]categoryResponse, 0, len(seeded))
	for _, c := range seeded {
		resp = append(resp, toCategoryResponse(c))
	}
	s.invalidateResults(userID)
	NewJSONResponse().Status(http.StatusCreated).Body(resp).Write(w)
}
