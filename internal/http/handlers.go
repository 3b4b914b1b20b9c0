package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/aggregate"
	"fintrack/internal/command"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	applog "fintrack/internal/log"
	"fintrack/internal/settings"
	"fintrack/internal/store"
)

type (
	transactionJSON struct {
		ID          string `json:"id"`
		Text        string `json:"text"`
		AmountCents int64  `json:"amount_cents"`
		Amount      string `json:"amount"`
		Type        string `json:"type"`
		Category    string `json:"category"`
		Date        string `json:"date"`
	}

	summaryJSON struct {
		TotalBalance string `json:"total_balance"`
		TotalIncome  string `json:"total_income"`
		TotalExpense string `json:"total_expense"`
		BalanceCents int64  `json:"balance_cents"`
		IncomeCents  int64  `json:"income_cents"`
		ExpenseCents int64  `json:"expense_cents"`
	}

	categoryJSON struct {
		Category string `json:"category"`
		Amount   string `json:"amount"`
		Cents    int64  `json:"cents"`
	}

	ledgerJSON struct {
		Year       int               `json:"year"`
		Month      int               `json:"month"`
		Filter     string            `json:"filter"`
		Summary    summaryJSON       `json:"summary"`
		Records    []transactionJSON `json:"records"`
		ByCategory []categoryJSON    `json:"by_category"`
	}

	draftJSON struct {
		Text     string `json:"text"`
		Amount   string `json:"amount"`
		Type     string `json:"type"`
		Category string `json:"category"`
		Date     string `json:"date"`
	}

	editStateJSON struct {
		Editing bool   `json:"editing"`
		ID      string `json:"id,omitempty"`
	}

	errorJSON struct {
		Kind    string `json:"kind"`
		Field   string `json:"field,omitempty"`
		Message string `json:"message"`
	}
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, field, message string) {
	writeJSON(w, status, map[string]errorJSON{"error": {Kind: kind, Field: field, Message: message}})
}

// writeDomainError maps validation and store failures onto status codes.
func writeDomainError(w http.ResponseWriter, err error) {
	var verr *command.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusUnprocessableEntity, string(verr.Kind), verr.Field, verr.Message())
		return
	}
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "", "Record not found")
		return
	}
	writeError(w, http.StatusInternalServerError, "internal", "", "Something went wrong")
}

// handleLedgerView answers GET /api/ledger?year=&month=&filter= from the
// in-memory snapshot, caching each (year, month, filter) view until the
// next snapshot arrives.
func (s *Server) handleLedgerView(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := now.Year()
	month := now.Month()
	filter := ledger.FilterAll

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "year", "year must be a number")
			return
		}
		year = y
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			writeError(w, http.StatusBadRequest, "bad_request", "month", "month must be between 1 and 12")
			return
		}
		month = time.Month(m)
	}
	if v := strings.TrimSpace(r.URL.Query().Get("filter")); v != "" {
		f := ledger.Filter(v)
		if !f.Valid() {
			writeError(w, http.StatusBadRequest, "bad_request", "filter", "filter must be one of all, income, expense")
			return
		}
		filter = f
	}

	key := viewCacheKey(year, month, filter)
	view, cached := s.viewCache.Get(key)
	if !cached {
		view = aggregate.Build(s.ledger.Records(), year, month, filter)
		s.viewCache.Set(key, view)
	} else {
		applog.FromContext(r.Context()).DebugContext(r.Context(), "View cache hit",
			applog.FieldYear, year, applog.FieldMonth, int(month), applog.FieldFilter, string(filter))
	}

	writeJSON(w, http.StatusOK, s.renderView(view))
}

func (s *Server) renderView(view aggregate.View) ledgerJSON {
	symbol := s.settings.Get().Symbol()

	out := ledgerJSON{
		Year:   view.Year,
		Month:  int(view.Month),
		Filter: string(view.Filter),
		Summary: summaryJSON{
			TotalBalance: view.Summary.TotalBalance.Format(symbol),
			TotalIncome:  view.Summary.TotalIncome.Format(symbol),
			TotalExpense: view.Summary.TotalExpense.Format(symbol),
			BalanceCents: view.Summary.TotalBalance.Cents,
			IncomeCents:  view.Summary.TotalIncome.Cents,
			ExpenseCents: view.Summary.TotalExpense.Cents,
		},
		Records:    make([]transactionJSON, 0, len(view.Records)),
		ByCategory: make([]categoryJSON, 0, len(view.ByCategory)),
	}
	for _, tx := range view.Records {
		out.Records = append(out.Records, transactionJSON{
			ID:          tx.ID,
			Text:        tx.Text,
			AmountCents: tx.Amount.Cents,
			Amount:      tx.Amount.Format(symbol),
			Type:        string(tx.Type),
			Category:    string(tx.Category),
			Date:        tx.Date.String(),
		})
	}
	for _, row := range view.ByCategory {
		out.ByCategory = append(out.ByCategory, categoryJSON{
			Category: string(row.Category),
			Amount:   row.Amount.Format(symbol),
			Cents:    row.Amount.Cents,
		})
	}
	return out
}

// handleCategories answers GET /api/categories?type= with the category
// enumeration for one transaction type.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t := core.Type(strings.TrimSpace(r.URL.Query().Get("type")))
	cats := core.Categories(t)
	if cats == nil {
		writeError(w, http.StatusBadRequest, "bad_request", "type", "type must be expense or income")
		return
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		names = append(names, string(c))
	}
	writeJSON(w, http.StatusOK, map[string][]string{"categories": names})
}

func decodeDraft(r *http.Request) (command.Draft, bool) {
	var in draftJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		return command.Draft{}, false
	}
	return command.Draft{
		Text:     in.Text,
		Amount:   in.Amount,
		Type:     core.Type(in.Type),
		Category: core.Category(in.Category),
		Date:     in.Date,
	}, true
}

// handleSubmit runs a draft through the edit session: an update for the
// current edit target when one is set, a create otherwise.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	draft, ok := decodeDraft(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "", "Request body must be valid JSON")
		return
	}

	s.sessionMu.Lock()
	_, wasEditing := s.session.Editing()
	id, err := s.service.Submit(r.Context(), s.userID, &s.session, draft)
	s.sessionMu.Unlock()

	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if wasEditing {
		status = http.StatusOK
	}
	writeJSON(w, status, map[string]string{"id": id})
}

// handleUpdate is the direct, session-free update path.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	draft, ok := decodeDraft(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", "", "Request body must be valid JSON")
		return
	}

	tx, err := command.Validate(draft)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := s.service.Update(r.Context(), s.userID, id, tx); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.Delete(r.Context(), s.userID, id); err != nil {
		writeDomainError(w, err)
		return
	}

	// Deleting the record under edit leaves a dangling target.
	s.sessionMu.Lock()
	if editing, ok := s.session.Editing(); ok && editing == id {
		s.session.Cancel()
	}
	s.sessionMu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditState(w http.ResponseWriter, r *http.Request) {
	s.sessionMu.Lock()
	id, ok := s.session.Editing()
	s.sessionMu.Unlock()
	writeJSON(w, http.StatusOK, editStateJSON{Editing: ok, ID: id})
}

func (s *Server) handleEditBegin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	// Only existing records can be edit targets.
	found := false
	for _, tx := range s.ledger.Records() {
		if tx.ID == id {
			found = true
			break
		}
	}
	if !found {
		writeError(w, http.StatusNotFound, "not_found", "", "Record not found")
		return
	}

	s.sessionMu.Lock()
	s.session.Begin(id)
	s.sessionMu.Unlock()
	writeJSON(w, http.StatusOK, editStateJSON{Editing: true, ID: id})
}

func (s *Server) handleEditCancel(w http.ResponseWriter, r *http.Request) {
	s.sessionMu.Lock()
	s.session.Cancel()
	s.sessionMu.Unlock()
	writeJSON(w, http.StatusOK, editStateJSON{Editing: false})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var in settings.Settings
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "", "Request body must be valid JSON")
		return
	}
	if err := s.settings.Update(in); err != nil {
		if errors.Is(err, settings.ErrUnknownTheme) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_setting", "theme", "Unknown theme")
			return
		}
		if errors.Is(err, settings.ErrUnknownCurrency) {
			writeError(w, http.StatusUnprocessableEntity, "invalid_setting", "currency", "Unknown currency code")
			return
		}
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Settings update failed", applog.FieldError, err.Error())
		writeError(w, http.StatusInternalServerError, "internal", "", "Failed to save settings")
		return
	}

	// Currency changes reformat every cached view.
	s.viewCache.Clear()
	writeJSON(w, http.StatusOK, s.settings.Get())
}
