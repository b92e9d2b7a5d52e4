package service

import (
	"context"

	"connectrpc.com/connect"
)

// LedgerClient is a client for the ledger service.
type LedgerClient struct {
	submitEntry     *connect.Client[SubmitEntryRequest, SubmitEntryResponse]
	editEntry       *connect.Client[EditEntryRequest, EditEntryResponse]
	deleteEntry     *connect.Client[DeleteEntryRequest, DeleteEntryResponse]
	searchCustomers *connect.Client[SearchCustomersRequest, SearchCustomersResponse]
	listCustomers   *connect.Client[ListCustomersRequest, ListCustomersResponse]
	getTotals       *connect.Client[GetTotalsRequest, GetTotalsResponse]
	announceTotal   *connect.Client[AnnounceTotalRequest, AnnounceTotalResponse]
}

// NewLedgerClient constructs a client for the ledger service at baseURL
// (e.g. http://localhost:8080).
func NewLedgerClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *LedgerClient {
	opts = append([]connect.ClientOption{connect.WithCodec(jsonCodec{})}, opts...)
	return &LedgerClient{
		submitEntry:     connect.NewClient[SubmitEntryRequest, SubmitEntryResponse](httpClient, baseURL+SubmitEntryProcedure, opts...),
		editEntry:       connect.NewClient[EditEntryRequest, EditEntryResponse](httpClient, baseURL+EditEntryProcedure, opts...),
		deleteEntry:     connect.NewClient[DeleteEntryRequest, DeleteEntryResponse](httpClient, baseURL+DeleteEntryProcedure, opts...),
		searchCustomers: connect.NewClient[SearchCustomersRequest, SearchCustomersResponse](httpClient, baseURL+SearchCustomersProcedure, opts...),
		listCustomers:   connect.NewClient[ListCustomersRequest, ListCustomersResponse](httpClient, baseURL+ListCustomersProcedure, opts...),
		getTotals:       connect.NewClient[GetTotalsRequest, GetTotalsResponse](httpClient, baseURL+GetTotalsProcedure, opts...),
		announceTotal:   connect.NewClient[AnnounceTotalRequest, AnnounceTotalResponse](httpClient, baseURL+AnnounceTotalProcedure, opts...),
	}
}

func (c *LedgerClient) SubmitEntry(ctx context.Context, req *connect.Request[SubmitEntryRequest]) (*connect.Response[SubmitEntryResponse], error) {
	return c.submitEntry.CallUnary(ctx, req)
}

func (c *LedgerClient) EditEntry(ctx context.Context, req *connect.Request[EditEntryRequest]) (*connect.Response[EditEntryResponse], error) {
	return c.editEntry.CallUnary(ctx, req)
}

func (c *LedgerClient) DeleteEntry(ctx context.Context, req *connect.Request[DeleteEntryRequest]) (*connect.Response[DeleteEntryResponse], error) {
	return c.deleteEntry.CallUnary(ctx, req)
}

func (c *LedgerClient) SearchCustomers(ctx context.Context, req *connect.Request[SearchCustomersRequest]) (*connect.Response[SearchCustomersResponse], error) {
	return c.searchCustomers.CallUnary(ctx, req)
}

func (c *LedgerClient) ListCustomers(ctx context.Context, req *connect.Request[ListCustomersRequest]) (*connect.Response[ListCustomersResponse], error) {
	return c.listCustomers.CallUnary(ctx, req)
}

func (c *LedgerClient) GetTotals(ctx context.Context, req *connect.Request[GetTotalsRequest]) (*connect.Response[GetTotalsResponse], error) {
	return c.getTotals.CallUnary(ctx, req)
}

func (c *LedgerClient) AnnounceTotal(ctx context.Context, req *connect.Request[AnnounceTotalRequest]) (*connect.Response[AnnounceTotalResponse], error) {
	return c.announceTotal.CallUnary(ctx, req)
}
