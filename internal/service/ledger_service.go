// Package service exposes the ledger as a Connect RPC service. Messages are
// plain Go structs carried with a JSON codec.
package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/khata/internal/calculator"
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/storage"
)

// ServiceName is the fully-qualified name of the ledger service.
const ServiceName = "khata.v1.LedgerService"

// Procedure paths of the ledger service.
const (
	SubmitEntryProcedure     = "/" + ServiceName + "/SubmitEntry"
	EditEntryProcedure       = "/" + ServiceName + "/EditEntry"
	DeleteEntryProcedure     = "/" + ServiceName + "/DeleteEntry"
	SearchCustomersProcedure = "/" + ServiceName + "/SearchCustomers"
	ListCustomersProcedure   = "/" + ServiceName + "/ListCustomers"
	GetTotalsProcedure       = "/" + ServiceName + "/GetTotals"
	AnnounceTotalProcedure   = "/" + ServiceName + "/AnnounceTotal"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	ledger *ledger.Ledger
}

// NewLedgerService creates a new LedgerService on top of the given ledger.
func NewLedgerService(l *ledger.Ledger) *LedgerService {
	return &LedgerService{ledger: l}
}

// NewHandler builds an HTTP handler serving every procedure of svc. It returns
// the path prefix to mount the handler on.
func NewHandler(svc *LedgerService, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(SubmitEntryProcedure, connect.NewUnaryHandler(SubmitEntryProcedure, svc.SubmitEntry, opts...))
	mux.Handle(EditEntryProcedure, connect.NewUnaryHandler(EditEntryProcedure, svc.EditEntry, opts...))
	mux.Handle(DeleteEntryProcedure, connect.NewUnaryHandler(DeleteEntryProcedure, svc.DeleteEntry, opts...))
	mux.Handle(SearchCustomersProcedure, connect.NewUnaryHandler(SearchCustomersProcedure, svc.SearchCustomers, opts...))
	mux.Handle(ListCustomersProcedure, connect.NewUnaryHandler(ListCustomersProcedure, svc.ListCustomers, opts...))
	mux.Handle(GetTotalsProcedure, connect.NewUnaryHandler(GetTotalsProcedure, svc.GetTotals, opts...))
	mux.Handle(AnnounceTotalProcedure, connect.NewUnaryHandler(AnnounceTotalProcedure, svc.AnnounceTotal, opts...))

	return "/" + ServiceName + "/", mux
}

// SubmitEntry creates an entry or replaces the one with the same date and product.
func (s *LedgerService) SubmitEntry(ctx context.Context, req *connect.Request[SubmitEntryRequest]) (*connect.Response[SubmitEntryResponse], error) {
	inbox := &ledger.Inbox{}
	result, err := s.ledger.Submit(ctx, req.Msg.Form, inbox)
	if err != nil {
		return nil, toConnectError(err, inbox.Messages())
	}

	return connect.NewResponse(&SubmitEntryResponse{
		Entry:    toEntry(result.Entry),
		Created:  result.Created,
		Form:     result.Form,
		Totals:   toTotalsList(result.Totals),
		Messages: inbox.Messages(),
	}), nil
}

// EditEntry returns the form values for editing an entry.
func (s *LedgerService) EditEntry(ctx context.Context, req *connect.Request[EditEntryRequest]) (*connect.Response[EditEntryResponse], error) {
	slog.Info("EditEntry request received", "entry_id", req.Msg.EntryID)

	form, err := s.ledger.Edit(ctx, req.Msg.EntryID)
	if err != nil {
		slog.Error("EditEntry failed", "entry_id", req.Msg.EntryID, "error", err)
		return nil, toConnectError(err, nil)
	}

	return connect.NewResponse(&EditEntryResponse{Form: form}), nil
}

// DeleteEntry removes an entry when the request confirms it. The prompt the
// user answered is echoed in Messages.
func (s *LedgerService) DeleteEntry(ctx context.Context, req *connect.Request[DeleteEntryRequest]) (*connect.Response[DeleteEntryResponse], error) {
	var prompts []string
	confirm := ledger.ConfirmFunc(func(_ context.Context, prompt string) bool {
		prompts = append(prompts, prompt)
		return req.Msg.Confirm
	})

	result, err := s.ledger.Delete(ctx, req.Msg.EntryID, confirm)
	if err != nil {
		return nil, toConnectError(err, nil)
	}

	return connect.NewResponse(&DeleteEntryResponse{
		Entry:           toEntry(result.Entry),
		Deleted:         result.Deleted,
		CustomerRemoved: result.CustomerRemoved,
		Totals:          toTotalsList(result.Totals),
		Messages:        prompts,
	}), nil
}

// SearchCustomers reports which customers match the query.
func (s *LedgerService) SearchCustomers(ctx context.Context, req *connect.Request[SearchCustomersRequest]) (*connect.Response[SearchCustomersResponse], error) {
	result, err := s.ledger.Search(ctx, req.Msg.Query)
	if err != nil {
		slog.Error("SearchCustomers failed", "error", err)
		return nil, toConnectError(err, nil)
	}
	return connect.NewResponse(&SearchCustomersResponse{Customers: result}), nil
}

// ListCustomers returns every customer with entries and totals, in ledger order.
func (s *LedgerService) ListCustomers(ctx context.Context, req *connect.Request[ListCustomersRequest]) (*connect.Response[ListCustomersResponse], error) {
	slog.Info("ListCustomers request received", "query", req.Msg.Query)

	page, err := s.ledger.Page(ctx, req.Msg.Query)
	if err != nil {
		slog.Error("ListCustomers failed", "error", err)
		return nil, toConnectError(err, nil)
	}

	customers := make([]Customer, len(page.Customers))
	for i, view := range page.Customers {
		entries := make([]Entry, len(view.Entries))
		for j, e := range view.Entries {
			entries[j] = Entry{
				ID:           e.ID,
				CustomerName: view.Name,
				Date:         e.Date,
				Product:      e.Product,
				Price:        e.Price,
				PaymentType:  e.PaymentType,
			}
		}
		customers[i] = Customer{
			ID:      view.ID,
			Name:    view.Name,
			Hidden:  view.Hidden,
			Entries: entries,
			Totals:  toTotals(view.Totals),
		}
	}

	slog.Info("ListCustomers successful", "count", len(customers), "visible", page.VisibleCount())

	return connect.NewResponse(&ListCustomersResponse{Customers: customers}), nil
}

// GetTotals recomputes the totals of every customer.
func (s *LedgerService) GetTotals(ctx context.Context, _ *connect.Request[GetTotalsRequest]) (*connect.Response[GetTotalsResponse], error) {
	totals, err := s.ledger.RecomputeAll(ctx)
	if err != nil {
		slog.Error("GetTotals failed", "error", err)
		return nil, toConnectError(err, nil)
	}
	return connect.NewResponse(&GetTotalsResponse{Totals: toTotalsList(totals)}), nil
}

// AnnounceTotal returns the label of a customer's cash or grand total.
func (s *LedgerService) AnnounceTotal(ctx context.Context, req *connect.Request[AnnounceTotalRequest]) (*connect.Response[AnnounceTotalResponse], error) {
	slog.Info("AnnounceTotal request received", "customer_id", req.Msg.CustomerID, "kind", req.Msg.Kind)

	inbox := &ledger.Inbox{}
	label, err := s.ledger.AnnounceTotal(ctx, req.Msg.CustomerID, ledger.TotalKind(req.Msg.Kind), inbox)
	if err != nil {
		slog.Error("AnnounceTotal failed", "customer_id", req.Msg.CustomerID, "error", err)
		return nil, toConnectError(err, nil)
	}

	return connect.NewResponse(&AnnounceTotalResponse{
		Label:    label,
		Messages: inbox.Messages(),
	}), nil
}

// toConnectError maps ledger errors to Connect codes. When the user was
// notified, the notification becomes the error message.
func toConnectError(err error, messages []string) error {
	code := connect.CodeInternal

	var validationErr *ledger.ValidationError
	var parseErr *calculator.ParseError
	switch {
	case errors.As(err, &validationErr), errors.As(err, &parseErr), errors.Is(err, ledger.ErrUnknownTotal):
		code = connect.CodeInvalidArgument
	case errors.Is(err, storage.ErrNotFound):
		code = connect.CodeNotFound
	}

	if len(messages) > 0 {
		cerr := connect.NewError(code, errors.New(messages[0]))
		cerr.Meta().Set("Khata-Cause", err.Error())
		return cerr
	}
	return connect.NewError(code, err)
}
