package http

import (
	"fmt"
	"net/http"

	"frogbudget/internal/core"
	"frogbudget/internal/csvio"
	applog "frogbudget/internal/log"
	"frogbudget/internal/storage"
)

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	filter := storage.PurchaseFilter{
		CategoryID: sanitizeInput(r.URL.Query().Get("category")),
	}
	var err2 *JSONResponseBuilder
	if filter.From, err2 = parseDateParam(r, "from"); err2 != nil {
		err2.Write(w)
		return
	}
	if filter.To, err2 = parseDateParam(r, "to"); err2 != nil {
		err2.Write(w)
		return
	}

	purchases, err := s.budget.Storage().ListPurchases(r.Context(), userID, filter)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	resp := make([]purchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		resp = append(resp, toPurchaseResponse(p))
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	purchase, errResp := s.purchaseFromBody(w, r, userID)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	created, err := s.budget.CreatePurchase(r.Context(), purchase)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Status(http.StatusCreated).Body(toPurchaseResponse(created)).Write(w)
}

func (s *Server) handleUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	purchase, errResp := s.purchaseFromBody(w, r, userID)
	if errResp != nil {
		errResp.Write(w)
		return
	}
	purchase.ID = r.PathValue("id")

	if err := s.budget.UpdatePurchase(r.Context(), purchase); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	NewJSONResponse().Body(toPurchaseResponse(purchase)).Write(w)
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	if err := s.budget.DeletePurchase(r.Context(), userID, r.PathValue("id")); err != nil {
		mapServiceError(err).Write(w)
		return
	}
	s.invalidateResults(userID)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) purchaseFromBody(w http.ResponseWriter, r *http.Request, userID string) (core.Purchase, *JSONResponseBuilder) {
	var payload purchasePayload
	if errResp := decodeJSONBody(w, r, &payload); errResp != nil {
		return core.Purchase{}, errResp
	}

	amount, errResp := parseAmount(payload.Amount)
	if errResp != nil {
		return core.Purchase{}, errResp
	}
	date, err := core.ParseDate(payload.Date)
	if err != nil {
		return core.Purchase{}, UnprocessableEntityError(fmt.Sprintf("invalid date %q: expected YYYY-MM-DD", payload.Date))
	}

	return core.Purchase{
		UserID:     userID,
		CategoryID: sanitizeInput(payload.CategoryID),
		Name:       sanitizeInput(payload.Name),
		Amount:     amount,
		Date:       date,
		Notes:      sanitizeInput(payload.Notes),
	}, nil
}

// handleExportPurchases streams the user's purchases as a CSV download.
func (s *Server) handleExportPurchases(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	store := s.budget.Storage()
	purchases, err := store.ListPurchases(r.Context(), userID, storage.PurchaseFilter{})
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}
	categories, err := store.ListCategories(r.Context(), userID)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="purchases.csv"`)
	if err := csvio.Export(w, purchases, categories); err != nil {
		s.logger.ErrorContext(r.Context(), "csv export failed",
			applog.FieldUserID, userID, applog.FieldError, err)
	}
}

// handleImportPurchases ingests a bank statement CSV. The format and target
// category come from query parameters; the body is the raw CSV.
func (s *Server) handleImportPurchases(w http.ResponseWriter, r *http.Request) {
	userID, errResp := requireUserID(r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	format := csvio.Format(sanitizeInput(r.URL.Query().Get("format")))
	categoryID := sanitizeInput(r.URL.Query().Get("category"))
	if categoryID == "" {
		BadRequestError("missing category parameter").Write(w)
		return
	}

	existing, err := s.budget.Storage().ListPurchases(r.Context(), userID, storage.PurchaseFilter{})
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	result, err := csvio.Import(r.Body, format, existing)
	if err != nil {
		BadRequestError("cannot parse statement: " + err.Error()).Write(w)
		return
	}

	imported, err := s.budget.ImportPurchases(r.Context(), userID, categoryID, result.Rows)
	if err != nil {
		mapServiceError(err).Write(w)
		return
	}

	s.invalidateResults(userID)
	NewJSONResponse().Body(importResponse{
		Imported: len(imported),
		Skipped:  result.Skipped,
		Dupes:    result.Dupes,
	}).Write(w)
}
