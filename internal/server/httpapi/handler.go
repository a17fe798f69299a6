package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"expenses/internal/common"
	"expenses/internal/server/models"
	"expenses/internal/server/policy"
)

// expenseRequest is the client-supplied payload for submit and update. Any
// id, creator or date fields a client sends are ignored; the server owns
// those.
type expenseRequest struct {
	Purpose string `json:"purpose"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type expenseResponse struct {
	ID                     string    `json:"id"`
	Purpose                string    `json:"purpose"`
	Amount                 int64     `json:"amount"`
	Status                 string    `json:"status"`
	CreatedUserID          string    `json:"createdUserId"`
	CreatedUserDisplayName string    `json:"createdUserDisplayName"`
	CreatedDate            time.Time `json:"createdDate"`
	HasReceipt             bool      `json:"hasReceipt"`
}

type identityResponse struct {
	UserID      string   `json:"userId"`
	DisplayName string   `json:"displayName"`
	Scopes      []string `json:"scopes"`
	Roles       []string `json:"roles"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type receiptURLResponse struct {
	URL string `json:"url"`
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:                     e.ID,
		Purpose:                e.Purpose,
		Amount:                 e.Amount,
		Status:                 string(e.Status),
		CreatedUserID:          e.CreatedUserID,
		CreatedUserDisplayName: e.CreatedUserDisplayName,
		CreatedDate:            e.CreatedDate,
		HasReceipt:             e.ReceiptKey != "",
	}
}

func toExpenseResponses(list []*models.Expense) []expenseResponse {
	result := make([]expenseResponse, 0, len(list))
	for _, e := range list {
		result = append(result, toExpenseResponse(e))
	}
	return result
}

func (s *Server) handleIdentity(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())
	if err := policy.Require(caller, policy.ReadOwnIdentity); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, identityResponse{
		UserID:      caller.UserID,
		DisplayName: caller.DisplayName,
		Scopes:      caller.Scopes,
		Roles:       caller.Roles,
	})
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "The request body is not valid JSON.")
		return
	}

	e, err := s.expenses.Submit(r.Context(), caller, req.Purpose, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(e))
}

func (s *Server) handleGetOne(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	e, err := s.expenses.GetOne(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleListMine(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	list, err := s.expenses.ListMine(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(list))
}

func (s *Server) handleListAll(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	list, err := s.expenses.ListAll(r.Context(), caller)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponses(list))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "The request body is not valid JSON.")
		return
	}

	e, err := s.expenses.Update(r.Context(), caller, r.PathValue("id"), req.Purpose, req.Amount, models.ExpenseStatus(req.Status))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(e))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	if err := s.expenses.Delete(r.Context(), caller, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleReceiptUpload(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	url, err := s.receipts.RequestUpload(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptURLResponse{URL: url})
}

func (s *Server) handleReceiptDownload(w http.ResponseWriter, r *http.Request) {
	caller := callerFromContext(r.Context())

	url, err := s.receipts.DownloadURL(r.Context(), caller, r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, receiptURLResponse{URL: url})
}

// writeError maps the workflow error kinds to transport status codes. The
// reason string is passed through verbatim; it is written for API callers.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrUnauthenticated):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrForbidden):
		writeMessage(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrInvalidTransition):
		writeMessage(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error(r.Context(), err.Error())
		writeMessage(w, http.StatusInternalServerError, "internal error")
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
