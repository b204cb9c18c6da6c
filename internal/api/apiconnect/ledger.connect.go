// Package apiconnect wires the splitledger.v1.LedgerService messages to
// Connect handlers and clients.
package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService service.
const LedgerServiceName = "splitledger.v1.LedgerService"

// Procedure paths of the LedgerService RPCs.
const (
	LedgerServiceCreateLedgerProcedure      = "/splitledger.v1.LedgerService/CreateLedger"
	LedgerServiceGetLedgerProcedure         = "/splitledger.v1.LedgerService/GetLedger"
	LedgerServiceListLedgersProcedure       = "/splitledger.v1.LedgerService/ListLedgers"
	LedgerServiceDeleteLedgerProcedure      = "/splitledger.v1.LedgerService/DeleteLedger"
	LedgerServiceAddUserProcedure           = "/splitledger.v1.LedgerService/AddUser"
	LedgerServiceRemoveUserProcedure        = "/splitledger.v1.LedgerService/RemoveUser"
	LedgerServiceAddPurchaseProcedure       = "/splitledger.v1.LedgerService/AddPurchase"
	LedgerServiceSetShareProcedure          = "/splitledger.v1.LedgerService/SetShare"
	LedgerServiceChangePayerProcedure       = "/splitledger.v1.LedgerService/ChangePayer"
	LedgerServiceChangeAmountProcedure      = "/splitledger.v1.LedgerService/ChangeAmount"
	LedgerServiceChangeDescriptionProcedure = "/splitledger.v1.LedgerService/ChangeDescription"
	LedgerServiceRemovePurchaseProcedure    = "/splitledger.v1.LedgerService/RemovePurchase"
	LedgerServiceGetBalancesProcedure       = "/splitledger.v1.LedgerService/GetBalances"
)

// LedgerServiceHandler is implemented by the server side of LedgerService.
type LedgerServiceHandler interface {
	CreateLedger(context.Context, *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error)
	GetLedger(context.Context, *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error)
	ListLedgers(context.Context, *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error)
	DeleteLedger(context.Context, *connect.Request[api.DeleteLedgerRequest]) (*connect.Response[api.DeleteLedgerResponse], error)
	AddUser(context.Context, *connect.Request[api.AddUserRequest]) (*connect.Response[api.LedgerResponse], error)
	RemoveUser(context.Context, *connect.Request[api.RemoveUserRequest]) (*connect.Response[api.LedgerResponse], error)
	AddPurchase(context.Context, *connect.Request[api.AddPurchaseRequest]) (*connect.Response[api.AddPurchaseResponse], error)
	SetShare(context.Context, *connect.Request[api.SetShareRequest]) (*connect.Response[api.LedgerResponse], error)
	ChangePayer(context.Context, *connect.Request[api.ChangePayerRequest]) (*connect.Response[api.LedgerResponse], error)
	ChangeAmount(context.Context, *connect.Request[api.ChangeAmountRequest]) (*connect.Response[api.LedgerResponse], error)
	ChangeDescription(context.Context, *connect.Request[api.ChangeDescriptionRequest]) (*connect.Response[api.LedgerResponse], error)
	RemovePurchase(context.Context, *connect.Request[api.RemovePurchaseRequest]) (*connect.Response[api.LedgerResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)

	handlers := map[string]http.Handler{
		LedgerServiceCreateLedgerProcedure:      connect.NewUnaryHandler(LedgerServiceCreateLedgerProcedure, svc.CreateLedger, opts...),
		LedgerServiceGetLedgerProcedure:         connect.NewUnaryHandler(LedgerServiceGetLedgerProcedure, svc.GetLedger, opts...),
		LedgerServiceListLedgersProcedure:       connect.NewUnaryHandler(LedgerServiceListLedgersProcedure, svc.ListLedgers, opts...),
		LedgerServiceDeleteLedgerProcedure:      connect.NewUnaryHandler(LedgerServiceDeleteLedgerProcedure, svc.DeleteLedger, opts...),
		LedgerServiceAddUserProcedure:           connect.NewUnaryHandler(LedgerServiceAddUserProcedure, svc.AddUser, opts...),
		LedgerServiceRemoveUserProcedure:        connect.NewUnaryHandler(LedgerServiceRemoveUserProcedure, svc.RemoveUser, opts...),
		LedgerServiceAddPurchaseProcedure:       connect.NewUnaryHandler(LedgerServiceAddPurchaseProcedure, svc.AddPurchase, opts...),
		LedgerServiceSetShareProcedure:          connect.NewUnaryHandler(LedgerServiceSetShareProcedure, svc.SetShare, opts...),
		LedgerServiceChangePayerProcedure:       connect.NewUnaryHandler(LedgerServiceChangePayerProcedure, svc.ChangePayer, opts...),
		LedgerServiceChangeAmountProcedure:      connect.NewUnaryHandler(LedgerServiceChangeAmountProcedure, svc.ChangeAmount, opts...),
		LedgerServiceChangeDescriptionProcedure: connect.NewUnaryHandler(LedgerServiceChangeDescriptionProcedure, svc.ChangeDescription, opts...),
		LedgerServiceRemovePurchaseProcedure:    connect.NewUnaryHandler(LedgerServiceRemovePurchaseProcedure, svc.RemovePurchase, opts...),
		LedgerServiceGetBalancesProcedure:       connect.NewUnaryHandler(LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...),
	}

	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h, ok := handlers[r.URL.Path]; ok {
			h.ServeHTTP(w, r)
			return
		}
		http.NotFound(w, r)
	})
}

// LedgerServiceClient is a client for the LedgerService service.
type LedgerServiceClient struct {
	createLedger      *connect.Client[api.CreateLedgerRequest, api.CreateLedgerResponse]
	getLedger         *connect.Client[api.GetLedgerRequest, api.GetLedgerResponse]
	listLedgers       *connect.Client[api.ListLedgersRequest, api.ListLedgersResponse]
	deleteLedger      *connect.Client[api.DeleteLedgerRequest, api.DeleteLedgerResponse]
	addUser           *connect.Client[api.AddUserRequest, api.LedgerResponse]
	removeUser        *connect.Client[api.RemoveUserRequest, api.LedgerResponse]
	addPurchase       *connect.Client[api.AddPurchaseRequest, api.AddPurchaseResponse]
	setShare          *connect.Client[api.SetShareRequest, api.LedgerResponse]
	changePayer       *connect.Client[api.ChangePayerRequest, api.LedgerResponse]
	changeAmount      *connect.Client[api.ChangeAmountRequest, api.LedgerResponse]
	changeDescription *connect.Client[api.ChangeDescriptionRequest, api.LedgerResponse]
	removePurchase    *connect.Client[api.RemovePurchaseRequest, api.LedgerResponse]
	getBalances       *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
}

// NewLedgerServiceClient constructs a client for the LedgerService service
// served at baseURL (e.g., http://localhost:8080).
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &LedgerServiceClient{
		createLedger:      connect.NewClient[api.CreateLedgerRequest, api.CreateLedgerResponse](httpClient, baseURL+LedgerServiceCreateLedgerProcedure, opts...),
		getLedger:         connect.NewClient[api.GetLedgerRequest, api.GetLedgerResponse](httpClient, baseURL+LedgerServiceGetLedgerProcedure, opts...),
		listLedgers:       connect.NewClient[api.ListLedgersRequest, api.ListLedgersResponse](httpClient, baseURL+LedgerServiceListLedgersProcedure, opts...),
		deleteLedger:      connect.NewClient[api.DeleteLedgerRequest, api.DeleteLedgerResponse](httpClient, baseURL+LedgerServiceDeleteLedgerProcedure, opts...),
		addUser:           connect.NewClient[api.AddUserRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceAddUserProcedure, opts...),
		removeUser:        connect.NewClient[api.RemoveUserRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceRemoveUserProcedure, opts...),
		addPurchase:       connect.NewClient[api.AddPurchaseRequest, api.AddPurchaseResponse](httpClient, baseURL+LedgerServiceAddPurchaseProcedure, opts...),
		setShare:          connect.NewClient[api.SetShareRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceSetShareProcedure, opts...),
		changePayer:       connect.NewClient[api.ChangePayerRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceChangePayerProcedure, opts...),
		changeAmount:      connect.NewClient[api.ChangeAmountRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceChangeAmountProcedure, opts...),
		changeDescription: connect.NewClient[api.ChangeDescriptionRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceChangeDescriptionProcedure, opts...),
		removePurchase:    connect.NewClient[api.RemovePurchaseRequest, api.LedgerResponse](httpClient, baseURL+LedgerServiceRemovePurchaseProcedure, opts...),
		getBalances:       connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
	}
}

func (c *LedgerServiceClient) CreateLedger(ctx context.Context, req *connect.Request[api.CreateLedgerRequest]) (*connect.Response[api.CreateLedgerResponse], error) {
	return c.createLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetLedger(ctx context.Context, req *connect.Request[api.GetLedgerRequest]) (*connect.Response[api.GetLedgerResponse], error) {
	return c.getLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ListLedgers(ctx context.Context, req *connect.Request[api.ListLedgersRequest]) (*connect.Response[api.ListLedgersResponse], error) {
	return c.listLedgers.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) DeleteLedger(ctx context.Context, req *connect.Request[api.DeleteLedgerRequest]) (*connect.Response[api.DeleteLedgerResponse], error) {
	return c.deleteLedger.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddUser(ctx context.Context, req *connect.Request[api.AddUserRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.addUser.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RemoveUser(ctx context.Context, req *connect.Request[api.RemoveUserRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.removeUser.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) AddPurchase(ctx context.Context, req *connect.Request[api.AddPurchaseRequest]) (*connect.Response[api.AddPurchaseResponse], error) {
	return c.addPurchase.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) SetShare(ctx context.Context, req *connect.Request[api.SetShareRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.setShare.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ChangePayer(ctx context.Context, req *connect.Request[api.ChangePayerRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.changePayer.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ChangeAmount(ctx context.Context, req *connect.Request[api.ChangeAmountRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.changeAmount.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) ChangeDescription(ctx context.Context, req *connect.Request[api.ChangeDescriptionRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.changeDescription.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) RemovePurchase(ctx context.Context, req *connect.Request[api.RemovePurchaseRequest]) (*connect.Response[api.LedgerResponse], error) {
	return c.removePurchase.CallUnary(ctx, req)
}

func (c *LedgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}
