package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"caixa/internal/core"
	"caixa/internal/log"
)

// transactionRequest is the write-side JSON shape. Amount is a decimal
// string so callers never deal in cents.
type transactionRequest struct {
	Date               string `json:"date"`
	Description        string `json:"description"`
	Type               string `json:"type"`
	Category           string `json:"category"`
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account"`
	Amount             string `json:"amount"`
}

type transactionResponse struct {
	ID                 string `json:"id"`
	Date               string `json:"date"`
	DateKnown          bool   `json:"date_known"`
	Description        string `json:"description"`
	Type               string `json:"type"`
	Category           string `json:"category"`
	SourceAccount      string `json:"source_account"`
	DestinationAccount string `json:"destination_account,omitempty"`
	Amount             string `json:"amount"`
	AmountCents        int64  `json:"amount_cents"`
}

type amountByName struct {
	Name        string `json:"name"`
	Amount      string `json:"amount"`
	AmountCents int64  `json:"amount_cents"`
}

type ledgerViewResponse struct {
	Year              int                   `json:"year"`
	Month             int                   `json:"month"`
	Category          string                `json:"category"`
	Transactions      []transactionResponse `json:"transactions"`
	Balance           string                `json:"balance"`
	BalanceCents      int64                 `json:"balance_cents"`
	TypeTotals        []amountByName        `json:"type_totals"`
	ExpenseByCategory []amountByName        `json:"expense_by_category"`
	AccountBalances   []amountByName        `json:"account_balances"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:                 t.ID,
		Date:               t.DateText(),
		DateKnown:          t.Date.IsKnown(),
		Description:        t.Description,
		Type:               string(t.Type),
		Category:           t.Category,
		SourceAccount:      t.SourceAccount,
		DestinationAccount: t.DestinationAccount,
		Amount:             t.Amount.Decimal(),
		AmountCents:        t.Amount.Cents,
	}
}

func toLedgerViewResponse(view core.LedgerView) ledgerViewResponse {
	resp := ledgerViewResponse{
		Year:              view.Year,
		Month:             view.Month,
		Category:          view.Category,
		Transactions:      make([]transactionResponse, 0, len(view.Transactions)),
		Balance:           view.Balance.Decimal(),
		BalanceCents:      view.Balance.Cents,
		TypeTotals:        make([]amountByName, 0, len(view.TypeTotals)),
		ExpenseByCategory: make([]amountByName, 0, len(view.ExpenseByCategory)),
		AccountBalances:   make([]amountByName, 0, len(view.AccountBalances)),
	}
	for _, t := range view.Transactions {
		resp.Transactions = append(resp.Transactions, toTransactionResponse(t))
	}
	for _, tt := range view.TypeTotals {
		resp.TypeTotals = append(resp.TypeTotals, amountByName{
			Name:        string(tt.Type),
			Amount:      tt.Amount.Decimal(),
			AmountCents: tt.Amount.Cents,
		})
	}
	for _, ca := range view.ExpenseByCategory {
		resp.ExpenseByCategory = append(resp.ExpenseByCategory, amountByName{
			Name:        ca.Name,
			Amount:      ca.Amount.Decimal(),
			AmountCents: ca.Amount.Cents,
		})
	}
	for _, ab := range view.AccountBalances {
		resp.AccountBalances = append(resp.AccountBalances, amountByName{
			Name:        ab.Account,
			Amount:      ab.Amount.Decimal(),
			AmountCents: ab.Amount.Cents,
		})
	}
	return resp
}

// parseTransaction decodes and converts a request body. Validation of
// the assembled transaction is the service's job.
func parseTransaction(r *http.Request) (core.Transaction, error) {
	var req transactionRequest
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return core.Transaction{}, fmt.Errorf("decode request body: %w", err)
	}

	t := core.Transaction{
		Description:        sanitizeInput(req.Description),
		Type:               core.TransactionType(req.Type),
		Category:           sanitizeInput(req.Category),
		SourceAccount:      sanitizeInput(req.SourceAccount),
		DestinationAccount: sanitizeInput(req.DestinationAccount),
	}

	if req.Date != "" {
		d, err := core.ParseDate(req.Date)
		if err != nil {
			return core.Transaction{}, err
		}
		t.Date = d
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	t.Amount = core.Money{Cents: cents}

	return t, nil
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	t, err := parseTransaction(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.ledger.Submit(r.Context(), t)
	if err != nil {
		if core.IsValidation(err) {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		logger.ErrorContext(r.Context(), "Transaction create failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to save transaction")
		return
	}

	s.invalidateCaches()
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Transaction list failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := r.PathValue("id")

	txs, err := s.ledger.Transactions(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Transaction get failed", log.FieldError, err, log.FieldTxID, id)
		writeError(w, http.StatusInternalServerError, "failed to load transactions")
		return
	}

	for _, t := range txs {
		if t.ID == id {
			writeJSON(w, http.StatusOK, toTransactionResponse(t))
			return
		}
	}
	writeError(w, http.StatusNotFound, "transaction not found")
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := r.PathValue("id")

	t, err := parseTransaction(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.ledger.Edit(r.Context(), id, t); err != nil {
		switch {
		case errors.Is(err, core.ErrNotFound):
			writeError(w, http.StatusNotFound, "transaction not found")
		case core.IsValidation(err):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			logger.ErrorContext(r.Context(), "Transaction update failed", log.FieldError, err, log.FieldTxID, id)
			writeError(w, http.StatusInternalServerError, "failed to update transaction")
		}
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())
	id := r.PathValue("id")

	if err := s.ledger.Remove(r.Context(), id); err != nil {
		logger.ErrorContext(r.Context(), "Transaction delete failed", log.FieldError, err, log.FieldTxID, id)
		writeError(w, http.StatusInternalServerError, "failed to delete transaction")
		return
	}

	s.invalidateCaches()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleLedgerView(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	year, month := parseYearMonth(r)
	category := sanitizeInput(r.URL.Query().Get("category"))
	if category == "" {
		category = core.CategoryAll
	}

	cacheKey := fmt.Sprintf("%d-%02d-%s", year, month, category)
	if view, ok := s.viewCache.Get(cacheKey); ok {
		writeJSON(w, http.StatusOK, toLedgerViewResponse(view))
		return
	}

	view, err := s.ledger.Query(r.Context(), year, month, category)
	if err != nil {
		logger.ErrorContext(r.Context(), "Ledger query failed",
			log.FieldError, err,
			log.FieldYear, year,
			log.FieldMonth, month,
			log.FieldCategory, category)
		writeError(w, http.StatusInternalServerError, "failed to build ledger view")
		return
	}

	s.viewCache.Set(cacheKey, view)
	writeJSON(w, http.StatusOK, toLedgerViewResponse(view))
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	logger := log.FromContext(r.Context())

	if accounts, ok := s.accountsCache.Get("accounts"); ok {
		writeJSON(w, http.StatusOK, map[string][]string{"accounts": accounts})
		return
	}

	accounts, err := s.ledger.Accounts(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "Accounts list failed", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "failed to load accounts")
		return
	}

	s.accountsCache.Set("accounts", accounts)
	writeJSON(w, http.StatusOK, map[string][]string{"accounts": accounts})
}
