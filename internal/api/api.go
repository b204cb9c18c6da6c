// Package api defines the messages of the splitledger.v1.LedgerService RPC
// service. Messages are plain structs carried as JSON; amounts and weights
// are decimal text such as "12.50".
package api

import "github.com/mmynk/splitledger/internal/document"

// Ledger describes a saved ledger and its content.
type Ledger struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Accounts  document.Accounts `json:"accounts"`
	CreatedAt int64             `json:"created_at"`
	UpdatedAt int64             `json:"updated_at"`
}

type CreateLedgerRequest struct {
	Title string `json:"title"`
	// Accounts is the initial content. Empty when omitted.
	Accounts *document.Accounts `json:"accounts,omitempty"`
}

func (r *CreateLedgerRequest) GetTitle() string { return r.Title }

type CreateLedgerResponse struct {
	Ledger *Ledger `json:"ledger"`
}

type GetLedgerRequest struct {
	Title string `json:"title"`
}

func (r *GetLedgerRequest) GetTitle() string { return r.Title }

type GetLedgerResponse struct {
	Ledger *Ledger `json:"ledger"`
}

type ListLedgersRequest struct{}

type ListLedgersResponse struct {
	Ledgers []*Ledger `json:"ledgers"`
}

type DeleteLedgerRequest struct {
	Title string `json:"title"`
}

func (r *DeleteLedgerRequest) GetTitle() string { return r.Title }

type DeleteLedgerResponse struct{}

type AddUserRequest struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

func (r *AddUserRequest) GetTitle() string { return r.Title }

type RemoveUserRequest struct {
	Title string `json:"title"`
	Name  string `json:"name"`
}

func (r *RemoveUserRequest) GetTitle() string { return r.Title }

type AddPurchaseRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Payer       string `json:"payer"`
	Amount      string `json:"amount"`
	// Shares optionally sets weights right away, by user name.
	Shares map[string]string `json:"shares,omitempty"`
}

func (r *AddPurchaseRequest) GetTitle() string { return r.Title }

type AddPurchaseResponse struct {
	Index  int     `json:"index"`
	Ledger *Ledger `json:"ledger"`
}

type SetShareRequest struct {
	Title  string `json:"title"`
	Index  int    `json:"index"`
	User   string `json:"user"`
	Weight string `json:"weight"`
}

func (r *SetShareRequest) GetTitle() string { return r.Title }

type ChangePayerRequest struct {
	Title string `json:"title"`
	Index int    `json:"index"`
	Payer string `json:"payer"`
}

func (r *ChangePayerRequest) GetTitle() string { return r.Title }

type ChangeAmountRequest struct {
	Title  string `json:"title"`
	Index  int    `json:"index"`
	Amount string `json:"amount"`
}

func (r *ChangeAmountRequest) GetTitle() string { return r.Title }

type ChangeDescriptionRequest struct {
	Title       string `json:"title"`
	Index       int    `json:"index"`
	Description string `json:"description"`
}

func (r *ChangeDescriptionRequest) GetTitle() string { return r.Title }

type RemovePurchaseRequest struct {
	Title string `json:"title"`
	Index int    `json:"index"`
}

func (r *RemovePurchaseRequest) GetTitle() string { return r.Title }

// LedgerResponse is returned by every mutation: the ledger after the change.
type LedgerResponse struct {
	Ledger *Ledger `json:"ledger"`
}

type GetBalancesRequest struct {
	Title string `json:"title"`
	// Decimals is the maximum number of decimals in the formatted amounts.
	// Defaults to 2 when nil.
	Decimals *int `json:"decimals,omitempty"`
}

func (r *GetBalancesRequest) GetTitle() string { return r.Title }

type Balance struct {
	User   string `json:"user"`
	Amount string `json:"amount"` // Positive = owed money, Negative = owes money
}

type Transfer struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type GetBalancesResponse struct {
	Balances []Balance `json:"balances"`
	// Ignored lists purchases left out because their shares sum to zero.
	Ignored   []int      `json:"ignored,omitempty"`
	Transfers []Transfer `json:"transfers,omitempty"`
}
