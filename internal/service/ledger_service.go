package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
	"github.com/mmynk/splitledger/internal/api/apiconnect"
	"github.com/mmynk/splitledger/internal/document"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/rational"
	"github.com/mmynk/splitledger/internal/storage"
)

// defaultDecimals is the number of decimals shown in balances, as for money.
const defaultDecimals = 2

// Ensure LedgerService implements the Connect handler interface
var _ apiconnect.LedgerServiceHandler = (*LedgerService)(nil)

// LedgerService implements the Connect LedgerService.
//
// Every mutation loads the saved document, rebuilds the ledger, applies one
// ledger operation and saves the result. A single mutex serializes these
// cycles: adding or removing a user re-indexes every purchase and must not
// interleave with another edit.
type LedgerService struct {
	store   storage.Store
	metrics *metrics.Metrics
	mu      sync.Mutex
}

// NewLedgerService creates a new LedgerService with the given storage backend.
// m may be nil when metrics are not collected.
func NewLedgerService(store storage.Store, m *metrics.Metrics) *LedgerService {
	return &LedgerService{store: store, metrics: m}
}

// toAPI converts a stored ledger to its message form.
func toAPI(rec *models.Ledger) *api.Ledger {
	return &api.Ledger{
		ID:        rec.ID,
		Title:     rec.Title,
		Accounts:  rec.Accounts,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
	}
}

// codeOf maps ledger and storage failures to Connect codes.
func codeOf(err error) connect.Code {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrUnknownUser),
		errors.Is(err, ledger.ErrInvalidPurchaseIndex):
		return connect.CodeNotFound
	case errors.Is(err, storage.ErrAlreadyExists),
		errors.Is(err, ledger.ErrDuplicateUser):
		return connect.CodeAlreadyExists
	case errors.Is(err, ledger.ErrUserHasData):
		return connect.CodeFailedPrecondition
	case errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrEmptyDescription),
		errors.Is(err, ledger.ErrRationalParseFailed):
		return connect.CodeInvalidArgument
	}
	return connect.CodeInternal
}

// load fetches a saved ledger and rebuilds it.
func (s *LedgerService) load(ctx context.Context, title string) (*models.Ledger, *ledger.Ledger, error) {
	rec, err := s.store.GetLedger(ctx, title)
	if err != nil {
		return nil, nil, err
	}
	l, err := rec.Accounts.Ledger()
	if err != nil {
		// A stored document that no longer validates is corrupt, not a bad request.
		return nil, nil, fmt.Errorf("saved ledger %s is invalid: %v", title, err)
	}
	return rec, l, nil
}

// mutate applies fn to the ledger saved under title and saves the result.
// Nothing is saved when fn fails.
func (s *LedgerService) mutate(ctx context.Context, title string, fn func(l *ledger.Ledger) error) (*models.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, l, err := s.load(ctx, title)
	if err != nil {
		return nil, connect.NewError(codeOf(err), err)
	}
	if err := fn(l); err != nil {
		return nil, connect.NewError(codeOf(err), err)
	}

	rec.Accounts = *document.FromLedger(l)
	if err := s.store.UpdateLedger(ctx, rec); err != nil {
		slog.Error("Failed to save ledger", "ledger", title, "error", err)
		return nil, connect.NewError(codeOf(err), err)
	}
	return rec, nil
}

// CreateLedger saves a new ledger, optionally with initial content.
func (s *LedgerService) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	if req.Msg.Title == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("title cannot be empty"))
	}

	l := ledger.New()
	if req.Msg.Accounts != nil {
		var err error
		if l, err = req.Msg.Accounts.Ledger(); err != nil {
			slog.Error("CreateLedger: invalid accounts", "ledger", req.Msg.Title, "error", err)
			return nil, connect.NewError(connect.CodeInvalidArgument, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec := &models.Ledger{Title: req.Msg.Title, Accounts: *document.FromLedger(l)}
	if err := s.store.CreateLedger(ctx, rec); err != nil {
		return nil, connect.NewError(codeOf(err), err)
	}
	slog.Info("Ledger created", "ledger", rec.Title, "id", rec.ID, "users", l.NumUsers(), "purchases", l.NumPurchases())

	return connect.NewResponse(&api.CreateLedgerResponse{Ledger: toAPI(rec)}), nil
}

// GetLedger retrieves a saved ledger.
func (s *LedgerService) GetLedger(ctx context.Context, req *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error) {
	rec, err := s.store.GetLedger(ctx, req.Msg.Title)
	if err != nil {
		return nil, connect.NewError(codeOf(err), err)
	}
	return connect.NewResponse(&api.GetLedgerResponse{Ledger: toAPI(rec)}), nil
}

// ListLedgers retrieves every saved ledger.
func (s *LedgerService) ListLedgers(ctx context.Context, req *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error) {
	recs, err := s.store.ListLedgers(ctx)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	ledgers := make([]*api.Ledger, len(recs))
	for i, rec := range recs {
		ledgers[i] = toAPI(rec)
	}
	return connect.NewResponse(&api.ListLedgersResponse{Ledgers: ledgers}), nil
}

// DeleteLedger removes a saved ledger.
func (s *LedgerService) DeleteLedger(ctx context.Context, req *connect.Request[api.DeleteLedgerRequest]) (*connect.Response[api.DeleteLedgerResponse], error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteLedger(ctx, req.Msg.Title); err != nil {
		return nil, connect.NewError(codeOf(err), err)
	}
	slog.Info("Ledger deleted", "ledger", req.Msg.Title)
	return connect.NewResponse(&api.DeleteLedgerResponse{}), nil
}

// AddUser adds a user with a zero share in every existing purchase.
func (s *LedgerService) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.LedgerResponse], error) {
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.AddUser(req.Msg.Name)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// RemoveUser removes a user who neither paid nor benefits from any purchase.
func (s *LedgerService) RemoveUser(ctx context.Context, req *connect.Request[api.RemoveUserRequest]) (*connect.Response[api.LedgerResponse], error) {
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.RemoveUser(req.Msg.Name)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// AddPurchase appends a purchase and optionally sets its shares.
func (s *LedgerService) AddPurchase(ctx context.Context, req *connect.Request[api.AddPurchaseRequest]) (*connect.Response[api.AddPurchaseResponse], error) {
	amount, err := ledger.ParseRational(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	weights, err := parseWeights(req.Msg.Shares)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}

	var index int
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		// Work on a copy so that a bad share name does not leave the
		// purchase half-added.
		draft := l.Clone()
		idx, err := draft.AddPurchase(req.Msg.Description, req.Msg.Payer, amount)
		if err != nil {
			return err
		}
		if err := draft.SetShares(idx, weights); err != nil {
			return err
		}
		*l = *draft
		index = idx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AddPurchaseResponse{Index: index, Ledger: toAPI(rec)}), nil
}

// SetShare sets the weight of one user in a purchase.
func (s *LedgerService) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.LedgerResponse], error) {
	weight, err := ledger.ParseRational(req.Msg.Weight)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.SetShare(req.Msg.Index, req.Msg.User, weight)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// ChangePayer changes who paid for a purchase.
func (s *LedgerService) ChangePayer(ctx context.Context, req *connect.Request[api.ChangePayerRequest]) (*connect.Response[api.LedgerResponse], error) {
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.ChangePayer(req.Msg.Index, req.Msg.Payer)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// ChangeAmount changes the amount of a purchase.
func (s *LedgerService) ChangeAmount(ctx context.Context, req *connect.Request[api.ChangeAmountRequest]) (*connect.Response[api.LedgerResponse], error) {
	amount, err := ledger.ParseRational(req.Msg.Amount)
	if err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.ChangeAmount(req.Msg.Index, amount)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// ChangeDescription renames a purchase.
func (s *LedgerService) ChangeDescription(ctx context.Context, req *connect.Request[api.ChangeDescriptionRequest]) (*connect.Response[api.LedgerResponse], error) {
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.ChangeDescription(req.Msg.Index, req.Msg.Description)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// RemovePurchase deletes a purchase. Later purchases move down one index.
func (s *LedgerService) RemovePurchase(ctx context.Context, req *connect.Request[api.RemovePurchaseRequest]) (*connect.Response[api.LedgerResponse], error) {
	rec, err := s.mutate(ctx, req.Msg.Title, func(l *ledger.Ledger) error {
		return l.RemovePurchase(req.Msg.Index)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.LedgerResponse{Ledger: toAPI(rec)}), nil
}

// GetBalances computes every user's balance and the transfers that settle them.
func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	decimals := defaultDecimals
	if req.Msg.Decimals != nil {
		decimals = *req.Msg.Decimals
	}
	if decimals < 0 {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("decimals cannot be negative: %d", decimals))
	}
	if decimals > rational.MaxDecimals {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("decimals cannot exceed %d: %d", rational.MaxDecimals, decimals))
	}

	_, l, err := s.load(ctx, req.Msg.Title)
	if err != nil {
		slog.Error("GetBalances failed", "ledger", req.Msg.Title, "error", err)
		return nil, connect.NewError(codeOf(err), err)
	}

	report := l.Balances()
	if s.metrics != nil && len(report.Ignored) > 0 {
		s.metrics.IgnoredPurchases.Add(float64(len(report.Ignored)))
	}

	resp := &api.GetBalancesResponse{
		Balances: make([]api.Balance, len(report.Users)),
		Ignored:  report.Ignored,
	}
	for i, user := range report.Users {
		resp.Balances[i] = api.Balance{
			User:   user,
			Amount: rational.Format(report.Balances[i], decimals),
		}
	}
	for _, t := range report.Settle() {
		resp.Transfers = append(resp.Transfers, api.Transfer{
			From:   t.From,
			To:     t.To,
			Amount: rational.Format(t.Amount, decimals),
		})
	}
	return connect.NewResponse(resp), nil
}

// parseWeights parses a name→decimal text mapping.
func parseWeights(shares map[string]string) (map[string]*big.Rat, error) {
	weights := make(map[string]*big.Rat, len(shares))
	for name, text := range shares {
		w, err := ledger.ParseRational(text)
		if err != nil {
			return nil, fmt.Errorf("share of %s: %w", name, err)
		}
		weights[name] = w
	}
	return weights, nil
}
