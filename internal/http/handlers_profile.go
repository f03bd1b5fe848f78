package http

import (
	"net/http"

	"frogbudget/internal/core"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	profile, err := s.budget.Storage().GetProfile(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	NewJSONResponse().Body(toProfileResponse(*profile)).Write(w)
}

func (s *Server) handlePutProfile(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	var payload profilePayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		errResp.Write(w)
		return
	}

	amount, errResp := parseAmount(payload.IncomeAmount)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	currency := sanitizeInput(payload.Currency)
	if currency == "" {
		currency = "USD"
	}
	profile := core.Profile{
		UserID:          userID,
		IncomeAmount:    amount,
		IncomeFrequency: core.IncomeFrequency(sanitizeInput(payload.IncomeFrequency)),
		Currency:        currency,
	}

	if err := s.budget.SaveProfile(r.Context(), profile); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Body(toProfileResponse(profile)).Write(w)
}
