package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/escritorio/internal/backoffice/domain"
	"github.com/aussiebroadwan/escritorio/internal/backoffice/store"
	"github.com/aussiebroadwan/escritorio/pkg/idx"
	"github.com/aussiebroadwan/escritorio/pkg/slogx"
)

type ReconciliationService struct {
	Store store.Store
}

// TransactionUpdate edits a statement line. Nil fields are left alone; an
// empty ContaContabilID unlinks the ledger account and the line becomes
// pending again.
type TransactionUpdate struct {
	Description     *string `json:"description,omitempty"`
	ContaContabilID *string `json:"contaContabilId,omitempty"`
}

func (s *ReconciliationService) Create(ctx context.Context, r domain.Reconciliation) (domain.Reconciliation, error) {
	r.ClientID = strings.TrimSpace(r.ClientID)
	r.Period = strings.TrimSpace(r.Period)
	r.Bank = strings.TrimSpace(r.Bank)
	r.Account = strings.TrimSpace(r.Account)
	if err := r.Validate(); err != nil {
		return domain.Reconciliation{}, err
	}
	if err := clientMustExist(ctx, s.Store, r.ClientID); err != nil {
		return domain.Reconciliation{}, err
	}

	r.ID = idx.New().String()
	r.Status = domain.ReconciliationOpen
	r.CreatedAt = time.Now().UTC()
	r.FinalizedAt = nil

	if err := s.Store.Reconciliations().CreateReconciliation(ctx, r); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Reconciliation{}, ErrReconciliationExists
		}
		return domain.Reconciliation{}, err
	}
	slogx.FromContext(ctx).Info("reconciliation created",
		slog.String("reconciliation_id", r.ID), slog.String("period", r.Period))
	return r, nil
}

func (s *ReconciliationService) List(ctx context.Context, actor Actor, f store.ReconciliationFilter) ([]domain.Reconciliation, error) {
	f.ClientID = actor.scope(f.ClientID)
	return s.Store.Reconciliations().ListReconciliations(ctx, f)
}

func (s *ReconciliationService) get(ctx context.Context, st store.Store, actor Actor, id string) (domain.Reconciliation, error) {
	r, err := st.Reconciliations().GetReconciliation(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Reconciliation{}, ErrReconciliationNotFound
		}
		return domain.Reconciliation{}, err
	}
	if !actor.sees(r.ClientID) {
		return domain.Reconciliation{}, ErrReconciliationNotFound
	}
	return r, nil
}

// Detail returns the reconciliation with every line tagged and summarised.
func (s *ReconciliationService) Detail(ctx context.Context, actor Actor, id string) (domain.ReconciliationDetail, error) {
	r, err := s.get(ctx, s.Store, actor, id)
	if err != nil {
		return domain.ReconciliationDetail{}, err
	}
	txs, err := s.Store.Reconciliations().ListTransactions(ctx, id)
	if err != nil {
		return domain.ReconciliationDetail{}, err
	}
	return domain.NewReconciliationDetail(r, txs), nil
}

func (s *ReconciliationService) Transactions(ctx context.Context, actor Actor, id string) ([]domain.Transaction, error) {
	if _, err := s.get(ctx, s.Store, actor, id); err != nil {
		return nil, err
	}
	return s.Store.Reconciliations().ListTransactions(ctx, id)
}

// Import appends statement lines to an open reconciliation. Every line must
// be valid and dated inside the period, otherwise nothing is stored.
func (s *ReconciliationService) Import(ctx context.Context, id string, lines []domain.Transaction) (domain.ReconciliationDetail, error) {
	if len(lines) == 0 {
		return domain.ReconciliationDetail{}, domain.NewValidationError("transactions", "at least one transaction is required")
	}

	var detail domain.ReconciliationDetail
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := s.get(ctx, tx, Actor{}, id)
		if err != nil {
			return err
		}
		if r.Finalized() {
			return ErrReconciliationFinalized
		}
		start, end, err := domain.PeriodBounds(r.Period)
		if err != nil {
			return err
		}

		v := &domain.ValidationError{}
		accounts := map[string]bool{}
		for i := range lines {
			line := &lines[i]
			line.ID = idx.New().String()
			line.ReconciliationID = r.ID
			line.Description = strings.TrimSpace(line.Description)
			line.ContaContabilID = strings.TrimSpace(line.ContaContabilID)
			line.Tag()

			prefix := fmt.Sprintf("transactions[%d].", i)
			if err := line.Validate(); err != nil {
				var ve *domain.ValidationError
				if errors.As(err, &ve) {
					for field, msg := range ve.Fields {
						v.Add(prefix+field, msg)
					}
				}
				continue
			}
			if line.Date.Before(start) || line.Date.After(end) {
				v.Add(prefix+"date", "must fall inside "+r.Period)
			}
			if acc := line.ContaContabilID; acc != "" && !accounts[acc] {
				if err := ledgerAccountMustExist(ctx, tx, acc); err != nil {
					if errors.Is(err, ErrLedgerAccountNotFound) {
						v.Add(prefix+"contaContabilId", "does not exist")
						continue
					}
					return err
				}
				accounts[acc] = true
			}
		}
		if err := v.Err(); err != nil {
			return err
		}

		if err := tx.Reconciliations().CreateTransactions(ctx, lines); err != nil {
			return err
		}
		txs, err := tx.Reconciliations().ListTransactions(ctx, r.ID)
		if err != nil {
			return err
		}
		detail = domain.NewReconciliationDetail(r, txs)
		return nil
	})
	if err != nil {
		return domain.ReconciliationDetail{}, err
	}

	slogx.FromContext(ctx).Info("transactions imported",
		slog.String("reconciliation_id", id), slog.Int("count", len(lines)))
	return detail, nil
}

// Confirm links a line to a ledger account.
func (s *ReconciliationService) Confirm(ctx context.Context, transactionID, accountID string) (domain.Transaction, error) {
	accountID = strings.TrimSpace(accountID)
	if accountID == "" {
		return domain.Transaction{}, domain.NewValidationError("contaContabilId", "is required")
	}
	return s.UpdateTransaction(ctx, transactionID, TransactionUpdate{ContaContabilID: &accountID})
}

// UpdateTransaction edits a line of an open reconciliation.
func (s *ReconciliationService) UpdateTransaction(ctx context.Context, transactionID string, u TransactionUpdate) (domain.Transaction, error) {
	var out domain.Transaction
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		t, err := tx.Reconciliations().GetTransaction(ctx, transactionID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrTransactionNotFound
			}
			return err
		}
		r, err := s.get(ctx, tx, Actor{}, t.ReconciliationID)
		if err != nil {
			return err
		}
		if r.Finalized() {
			return ErrReconciliationFinalized
		}

		if u.Description != nil {
			d := strings.TrimSpace(*u.Description)
			if d == "" {
				return domain.NewValidationError("description", "is required")
			}
			t.Description = d
		}
		if u.ContaContabilID != nil {
			acc := strings.TrimSpace(*u.ContaContabilID)
			if acc != "" {
				if err := ledgerAccountMustExist(ctx, tx, acc); err != nil {
					return err
				}
			}
			t.ContaContabilID = acc
		}

		if err := tx.Reconciliations().UpdateTransaction(ctx, t.ID, t.Description, t.ContaContabilID); err != nil {
			return err
		}
		t.Tag()
		out = t
		return nil
	})
	return out, err
}

// Finalize closes an open reconciliation once no line is pending.
func (s *ReconciliationService) Finalize(ctx context.Context, id string) (domain.ReconciliationDetail, error) {
	var detail domain.ReconciliationDetail
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := s.get(ctx, tx, Actor{}, id)
		if err != nil {
			return err
		}
		if r.Finalized() {
			return ErrReconciliationFinalized
		}
		txs, err := tx.Reconciliations().ListTransactions(ctx, id)
		if err != nil {
			return err
		}
		resumo, _ := domain.SummarizeTransactions(txs)
		if resumo.Pendentes > 0 {
			return &PendingTransactionsError{Count: resumo.Pendentes}
		}

		now := time.Now().UTC()
		if err := tx.Reconciliations().SetReconciliationStatus(ctx, id, domain.ReconciliationFinalized, &now); err != nil {
			return err
		}
		r.Status, r.FinalizedAt = domain.ReconciliationFinalized, &now
		detail = domain.NewReconciliationDetail(r, txs)
		return nil
	})
	if err != nil {
		return domain.ReconciliationDetail{}, err
	}
	slogx.FromContext(ctx).Info("reconciliation finalized", slog.String("reconciliation_id", id))
	return detail, nil
}

// Reopen returns a finalized reconciliation to open.
func (s *ReconciliationService) Reopen(ctx context.Context, id string) (domain.Reconciliation, error) {
	var out domain.Reconciliation
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		r, err := s.get(ctx, tx, Actor{}, id)
		if err != nil {
			return err
		}
		if !r.Finalized() {
			return ErrReconciliationNotFinalized
		}
		if err := tx.Reconciliations().SetReconciliationStatus(ctx, id, domain.ReconciliationOpen, nil); err != nil {
			return err
		}
		r.Status, r.FinalizedAt = domain.ReconciliationOpen, nil
		out = r
		return nil
	})
	if err != nil {
		return domain.Reconciliation{}, err
	}
	slogx.FromContext(ctx).Warn("reconciliation reopened", slog.String("reconciliation_id", id))
	return out, nil
}

func (s *ReconciliationService) CreateLedgerAccount(ctx context.Context, a domain.LedgerAccount) (domain.LedgerAccount, error) {
	a.Code = strings.TrimSpace(a.Code)
	a.Name = strings.TrimSpace(a.Name)
	a.Kind = strings.ToLower(strings.TrimSpace(a.Kind))
	if err := a.Validate(); err != nil {
		return domain.LedgerAccount{}, err
	}
	a.ID = idx.New().String()
	if err := s.Store.LedgerAccounts().CreateLedgerAccount(ctx, a); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.LedgerAccount{}, ErrDuplicateLedgerCode
		}
		return domain.LedgerAccount{}, err
	}
	return a, nil
}

func (s *ReconciliationService) LedgerAccounts(ctx context.Context) ([]domain.LedgerAccount, error) {
	return s.Store.LedgerAccounts().ListLedgerAccounts(ctx)
}

func ledgerAccountMustExist(ctx context.Context, st store.Store, id string) error {
	_, err := st.LedgerAccounts().GetLedgerAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrLedgerAccountNotFound
	}
	return err
}
