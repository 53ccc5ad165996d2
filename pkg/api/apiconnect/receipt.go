package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tabshare/pkg/api"
)

// ReceiptServiceName is the fully-qualified name of the ReceiptService service.
const ReceiptServiceName = "tabshare.v1.ReceiptService"

// Procedure paths of the ReceiptService RPCs.
const (
	ReceiptServiceCreateReceiptProcedure = "/tabshare.v1.ReceiptService/CreateReceipt"
	ReceiptServiceGetReceiptProcedure    = "/tabshare.v1.ReceiptService/GetReceipt"
	ReceiptServiceJoinReceiptProcedure   = "/tabshare.v1.ReceiptService/JoinReceipt"
	ReceiptServiceListReceiptsProcedure  = "/tabshare.v1.ReceiptService/ListReceipts"
	ReceiptServiceAddItemProcedure       = "/tabshare.v1.ReceiptService/AddItem"
	ReceiptServiceRemoveItemProcedure    = "/tabshare.v1.ReceiptService/RemoveItem"
	ReceiptServiceMarkItemsPaidProcedure = "/tabshare.v1.ReceiptService/MarkItemsPaid"
	ReceiptServiceAddGuestProcedure      = "/tabshare.v1.ReceiptService/AddGuest"
	ReceiptServiceQuotePaymentProcedure  = "/tabshare.v1.ReceiptService/QuotePayment"
	ReceiptServiceListCheckoutsProcedure = "/tabshare.v1.ReceiptService/ListCheckouts"
)

// ReceiptServiceHandler is implemented by the server.
type ReceiptServiceHandler interface {
	CreateReceipt(context.Context, *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	JoinReceipt(context.Context, *connect.Request[api.JoinReceiptRequest]) (*connect.Response[api.JoinReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error)
	RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error)
	MarkItemsPaid(context.Context, *connect.Request[api.MarkItemsPaidRequest]) (*connect.Response[api.MarkItemsPaidResponse], error)
	AddGuest(context.Context, *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error)
	QuotePayment(context.Context, *connect.Request[api.QuotePaymentRequest]) (*connect.Response[api.QuotePaymentResponse], error)
	ListCheckouts(context.Context, *connect.Request[api.ListCheckoutsRequest]) (*connect.Response[api.ListCheckoutsResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ReceiptServiceCreateReceiptProcedure, connect.NewUnaryHandler(ReceiptServiceCreateReceiptProcedure, svc.CreateReceipt, opts...))
	mux.Handle(ReceiptServiceGetReceiptProcedure, connect.NewUnaryHandler(ReceiptServiceGetReceiptProcedure, svc.GetReceipt, opts...))
	mux.Handle(ReceiptServiceJoinReceiptProcedure, connect.NewUnaryHandler(ReceiptServiceJoinReceiptProcedure, svc.JoinReceipt, opts...))
	mux.Handle(ReceiptServiceListReceiptsProcedure, connect.NewUnaryHandler(ReceiptServiceListReceiptsProcedure, svc.ListReceipts, opts...))
	mux.Handle(ReceiptServiceAddItemProcedure, connect.NewUnaryHandler(ReceiptServiceAddItemProcedure, svc.AddItem, opts...))
	mux.Handle(ReceiptServiceRemoveItemProcedure, connect.NewUnaryHandler(ReceiptServiceRemoveItemProcedure, svc.RemoveItem, opts...))
	mux.Handle(ReceiptServiceMarkItemsPaidProcedure, connect.NewUnaryHandler(ReceiptServiceMarkItemsPaidProcedure, svc.MarkItemsPaid, opts...))
	mux.Handle(ReceiptServiceAddGuestProcedure, connect.NewUnaryHandler(ReceiptServiceAddGuestProcedure, svc.AddGuest, opts...))
	mux.Handle(ReceiptServiceQuotePaymentProcedure, connect.NewUnaryHandler(ReceiptServiceQuotePaymentProcedure, svc.QuotePayment, opts...))
	mux.Handle(ReceiptServiceListCheckoutsProcedure, connect.NewUnaryHandler(ReceiptServiceListCheckoutsProcedure, svc.ListCheckouts, opts...))
	return "/" + ReceiptServiceName + "/", mux
}

// ReceiptServiceClient is a client for the ReceiptService service.
type ReceiptServiceClient interface {
	CreateReceipt(context.Context, *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error)
	GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error)
	JoinReceipt(context.Context, *connect.Request[api.JoinReceiptRequest]) (*connect.Response[api.JoinReceiptResponse], error)
	ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error)
	AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error)
	RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error)
	MarkItemsPaid(context.Context, *connect.Request[api.MarkItemsPaidRequest]) (*connect.Response[api.MarkItemsPaidResponse], error)
	AddGuest(context.Context, *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error)
	QuotePayment(context.Context, *connect.Request[api.QuotePaymentRequest]) (*connect.Response[api.QuotePaymentResponse], error)
	ListCheckouts(context.Context, *connect.Request[api.ListCheckoutsRequest]) (*connect.Response[api.ListCheckoutsResponse], error)
}

// NewReceiptServiceClient constructs a client for the ReceiptService
// service. baseURL is the server's URL without the procedure path.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = clientOptions(opts)
	return &receiptServiceClient{
		createReceipt: connect.NewClient[api.CreateReceiptRequest, api.CreateReceiptResponse](httpClient, baseURL+ReceiptServiceCreateReceiptProcedure, opts...),
		getReceipt:    connect.NewClient[api.GetReceiptRequest, api.GetReceiptResponse](httpClient, baseURL+ReceiptServiceGetReceiptProcedure, opts...),
		joinReceipt:   connect.NewClient[api.JoinReceiptRequest, api.JoinReceiptResponse](httpClient, baseURL+ReceiptServiceJoinReceiptProcedure, opts...),
		listReceipts:  connect.NewClient[api.ListReceiptsRequest, api.ListReceiptsResponse](httpClient, baseURL+ReceiptServiceListReceiptsProcedure, opts...),
		addItem:       connect.NewClient[api.AddItemRequest, api.AddItemResponse](httpClient, baseURL+ReceiptServiceAddItemProcedure, opts...),
		removeItem:    connect.NewClient[api.RemoveItemRequest, api.RemoveItemResponse](httpClient, baseURL+ReceiptServiceRemoveItemProcedure, opts...),
		markItemsPaid: connect.NewClient[api.MarkItemsPaidRequest, api.MarkItemsPaidResponse](httpClient, baseURL+ReceiptServiceMarkItemsPaidProcedure, opts...),
		addGuest:      connect.NewClient[api.AddGuestRequest, api.AddGuestResponse](httpClient, baseURL+ReceiptServiceAddGuestProcedure, opts...),
		quotePayment:  connect.NewClient[api.QuotePaymentRequest, api.QuotePaymentResponse](httpClient, baseURL+ReceiptServiceQuotePaymentProcedure, opts...),
		listCheckouts: connect.NewClient[api.ListCheckoutsRequest, api.ListCheckoutsResponse](httpClient, baseURL+ReceiptServiceListCheckoutsProcedure, opts...),
	}
}

type receiptServiceClient struct {
	createReceipt *connect.Client[api.CreateReceiptRequest, api.CreateReceiptResponse]
	getReceipt    *connect.Client[api.GetReceiptRequest, api.GetReceiptResponse]
	joinReceipt   *connect.Client[api.JoinReceiptRequest, api.JoinReceiptResponse]
	listReceipts  *connect.Client[api.ListReceiptsRequest, api.ListReceiptsResponse]
	addItem       *connect.Client[api.AddItemRequest, api.AddItemResponse]
	removeItem    *connect.Client[api.RemoveItemRequest, api.RemoveItemResponse]
	markItemsPaid *connect.Client[api.MarkItemsPaidRequest, api.MarkItemsPaidResponse]
	addGuest      *connect.Client[api.AddGuestRequest, api.AddGuestResponse]
	quotePayment  *connect.Client[api.QuotePaymentRequest, api.QuotePaymentResponse]
	listCheckouts *connect.Client[api.ListCheckoutsRequest, api.ListCheckoutsResponse]
}

func (c *receiptServiceClient) CreateReceipt(ctx context.Context, req *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	return c.createReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) GetReceipt(ctx context.Context, req *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return c.getReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) JoinReceipt(ctx context.Context, req *connect.Request[api.JoinReceiptRequest]) (*connect.Response[api.JoinReceiptResponse], error) {
	return c.joinReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ListReceipts(ctx context.Context, req *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return c.listReceipts.CallUnary(ctx, req)
}

func (c *receiptServiceClient) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	return c.addItem.CallUnary(ctx, req)
}

func (c *receiptServiceClient) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error) {
	return c.removeItem.CallUnary(ctx, req)
}

func (c *receiptServiceClient) MarkItemsPaid(ctx context.Context, req *connect.Request[api.MarkItemsPaidRequest]) (*connect.Response[api.MarkItemsPaidResponse], error) {
	return c.markItemsPaid.CallUnary(ctx, req)
}

func (c *receiptServiceClient) AddGuest(ctx context.Context, req *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error) {
	return c.addGuest.CallUnary(ctx, req)
}

func (c *receiptServiceClient) QuotePayment(ctx context.Context, req *connect.Request[api.QuotePaymentRequest]) (*connect.Response[api.QuotePaymentResponse], error) {
	return c.quotePayment.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ListCheckouts(ctx context.Context, req *connect.Request[api.ListCheckoutsRequest]) (*connect.Response[api.ListCheckoutsResponse], error) {
	return c.listCheckouts.CallUnary(ctx, req)
}

// UnimplementedReceiptServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedReceiptServiceHandler struct{}

func (UnimplementedReceiptServiceHandler) CreateReceipt(context.Context, *connect.Request[api.CreateReceiptRequest]) (*connect.Response[api.CreateReceiptResponse], error) {
	return nil, unimplemented("CreateReceipt")
}

func (UnimplementedReceiptServiceHandler) GetReceipt(context.Context, *connect.Request[api.GetReceiptRequest]) (*connect.Response[api.GetReceiptResponse], error) {
	return nil, unimplemented("GetReceipt")
}

func (UnimplementedReceiptServiceHandler) JoinReceipt(context.Context, *connect.Request[api.JoinReceiptRequest]) (*connect.Response[api.JoinReceiptResponse], error) {
	return nil, unimplemented("JoinReceipt")
}

func (UnimplementedReceiptServiceHandler) ListReceipts(context.Context, *connect.Request[api.ListReceiptsRequest]) (*connect.Response[api.ListReceiptsResponse], error) {
	return nil, unimplemented("ListReceipts")
}

func (UnimplementedReceiptServiceHandler) AddItem(context.Context, *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	return nil, unimplemented("AddItem")
}

func (UnimplementedReceiptServiceHandler) RemoveItem(context.Context, *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error) {
	return nil, unimplemented("RemoveItem")
}

func (UnimplementedReceiptServiceHandler) MarkItemsPaid(context.Context, *connect.Request[api.MarkItemsPaidRequest]) (*connect.Response[api.MarkItemsPaidResponse], error) {
	return nil, unimplemented("MarkItemsPaid")
}

func (UnimplementedReceiptServiceHandler) AddGuest(context.Context, *connect.Request[api.AddGuestRequest]) (*connect.Response[api.AddGuestResponse], error) {
	return nil, unimplemented("AddGuest")
}

func (UnimplementedReceiptServiceHandler) QuotePayment(context.Context, *connect.Request[api.QuotePaymentRequest]) (*connect.Response[api.QuotePaymentResponse], error) {
	return nil, unimplemented("QuotePayment")
}

func (UnimplementedReceiptServiceHandler) ListCheckouts(context.Context, *connect.Request[api.ListCheckoutsRequest]) (*connect.Response[api.ListCheckoutsResponse], error) {
	return nil, unimplemented("ListCheckouts")
}

func unimplemented(method string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(method+" is not implemented"))
}
