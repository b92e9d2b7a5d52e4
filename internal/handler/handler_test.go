package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/khata/internal/auth"
	"github.com/mmynk/khata/internal/ledger"
	"github.com/mmynk/khata/internal/metrics"
	"github.com/mmynk/khata/internal/service"
	"github.com/mmynk/khata/internal/storage/memory"
	"github.com/mmynk/khata/internal/view"
)

type testServer struct {
	server *httptest.Server
	client *http.Client
	ledger *ledger.Ledger
	tokens *auth.FormTokenManager
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	engine, err := view.NewEngine()
	require.NoError(t, err)
	operator, err := auth.NewOperatorAuthenticator("", "")
	require.NoError(t, err)

	store := memory.New()
	l := ledger.New(store)
	tokens := auth.NewFormTokenManager("test-secret-key-32-bytes-long!!!", time.Hour)

	router, err := NewRouter(RouterConfig{
		Ledger:   l,
		Engine:   engine,
		Tokens:   tokens,
		Operator: operator,
		Metrics:  metrics.New(),
	})
	require.NoError(t, err)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	client := &http.Client{
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return &testServer{server: server, client: client, ledger: l, tokens: tokens}
}

func (s *testServer) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := s.client.Get(s.server.URL + path)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func (s *testServer) post(t *testing.T, path string, form url.Values) (*http.Response, string) {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	if _, ok := form["form_token"]; !ok {
		token, err := s.tokens.Issue()
		require.NoError(t, err)
		form.Set("form_token", token)
	}
	resp, err := s.client.PostForm(s.server.URL+path, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(body)
}

func (s *testServer) submit(t *testing.T, name, date, product, price, payment string) {
	t.Helper()
	resp, _ := s.post(t, "/entries", url.Values{
		"name":    {name},
		"date":    {date},
		"product": {product},
		"price":   {price},
		"payment": {payment},
	})
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)
}

func (s *testServer) firstEntryID(t *testing.T) string {
	t.Helper()
	page, err := s.ledger.Page(context.Background(), "")
	require.NoError(t, err)
	require.NotEmpty(t, page.Customers)
	require.NotEmpty(t, page.Customers[0].Entries)
	return page.Customers[0].Entries[0].ID
}

func TestIndexRendersForm(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.get(t, "/")
	assert.Equal(t, http.StatusOK, status)
	for _, id := range []string{"name", "date", "product", "price", "payment", "customerForm", "customerList", "searchBar"} {
		assert.Contains(t, body, `id="`+id+`"`)
	}
	assert.Contains(t, body, `<option value="" selected>Select payment</option>`)
	assert.Contains(t, body, `name="form_token"`)
}

func TestSubmitCreatesEntry(t *testing.T) {
	s := setupTestServer(t)
	s.submit(t, "Ali", "2024-01-01", "Rice", "100", "cash")
	entryID := s.firstEntryID(t)

	_, body := s.get(t, "/")
	assert.Contains(t, body, "<h2>Ali</h2>")
	assert.Contains(t, body, "Product: Rice")
	assert.Contains(t, body, "Date: 2024-01-01")
	assert.Contains(t, body, "Price: PKR 100")
	assert.Contains(t, body, `id="entry-`+entryID+`" class="cash"`)
	assert.Contains(t, body, "Total Cash Amount: PKR 100.00")
	assert.Contains(t, body, "Total Amount: PKR 100.00")
	assert.Contains(t, body, `id="name" name="name" value=""`, "form must be cleared after submit")
}

func TestSubmitRejectsMissingFields(t *testing.T) {
	s := setupTestServer(t)

	resp, body := s.post(t, "/entries", url.Values{
		"name":    {""},
		"date":    {"2024-01-01"},
		"product": {"Rice"},
		"price":   {"10"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please fill in all fields.")
	assert.Contains(t, body, `<dialog id="modal" class="modal" open>`)
	assert.Contains(t, body, `value="Rice"`, "form must keep its values")

	page, err := s.ledger.Page(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, page.Customers)
}

func TestSubmitRejectsMalformedPrice(t *testing.T) {
	s := setupTestServer(t)

	resp, body := s.post(t, "/entries", url.Values{
		"name":  {"Ali"},
		"date":  {"2024-01-01"},
		"price": {"abc"},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body, "Please enter a valid price.")
}

func TestSubmitRequiresFormToken(t *testing.T) {
	s := setupTestServer(t)

	resp, _ := s.post(t, "/entries", url.Values{
		"form_token": {"forged"},
		"name":       {"Ali"},
		"date":       {"2024-01-01"},
		"price":      {"1"},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEditPrefillsForm(t *testing.T) {
	s := setupTestServer(t)
	s.submit(t, "Ali", "2024-01-01", "Rice", "100", "deferred")

	status, body := s.get(t, "/entries/"+s.firstEntryID(t)+"/edit")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `id="name" name="name" value="Ali"`)
	assert.Contains(t, body, `id="product" name="product" value="Rice"`)
	assert.Contains(t, body, `<option value="" selected>Select payment</option>`)

	status, _ = s.get(t, "/entries/nonexistent/edit")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestDeleteAsksFirst(t *testing.T) {
	s := setupTestServer(t)
	s.submit(t, "Ali", "2024-01-01", "Rice", "100", "cash")
	entryID := s.firstEntryID(t)

	resp, body := s.post(t, "/entries/"+entryID+"/delete", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Are you sure you want to delete this entry?")
	assert.Contains(t, body, `<input type="hidden" name="confirm" value="yes">`)
	assert.Contains(t, body, "Product: Rice", "declined delete must keep the entry")

	resp, _ = s.post(t, "/entries/"+entryID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	_, body = s.get(t, "/")
	assert.NotContains(t, body, "<h2>Ali</h2>", "customer without entries must be removed")

	resp, _ = s.post(t, "/entries/"+entryID+"/delete", url.Values{"confirm": {"yes"}})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAnnounceTotal(t *testing.T) {
	s := setupTestServer(t)
	s.submit(t, "Ali", "2024-01-01", "Rice", "100", "cash")
	s.submit(t, "Ali", "2024-01-02", "Tea", "50", "deferred")

	page, err := s.ledger.Page(context.Background(), "")
	require.NoError(t, err)
	customerID := page.Customers[0].ID

	resp, body := s.post(t, "/customers/"+customerID+"/totals/cash", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<p>Total Cash Amount: PKR 100.00</p>")

	resp, body = s.post(t, "/customers/"+customerID+"/totals/total", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "<p>Total Amount: PKR 150.00</p>")

	resp, _ = s.post(t, "/customers/"+customerID+"/totals/card", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.post(t, "/customers/nobody/totals/cash", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCustomersPartialHidesNonMatching(t *testing.T) {
	s := setupTestServer(t)
	s.submit(t, "Ali", "2024-01-01", "Rice", "1", "")
	s.submit(t, "Bilal", "2024-01-01", "Tea", "2", "")

	status, body := s.get(t, "/customers?q="+url.QueryEscape(" ALI "))
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, body, "<html")
	assert.Contains(t, body, `data-name="Ali">`)
	assert.Contains(t, body, `data-name="Bilal" hidden>`)
	assert.Contains(t, body, "Product: Tea", "hidden customers keep their entries")
}

func TestOpsEndpoints(t *testing.T) {
	s := setupTestServer(t)

	status, body := s.get(t, "/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body)

	s.get(t, "/")
	status, body = s.get(t, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, strings.Contains(body, "khata_http_requests_total"))

	status, body = s.get(t, "/static/ledger.js")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "searchBar")
}

func TestConnectServiceMounted(t *testing.T) {
	s := setupTestServer(t)
	client := service.NewLedgerClient(http.DefaultClient, s.server.URL)

	resp, err := client.SubmitEntry(context.Background(), connect.NewRequest(&service.SubmitEntryRequest{
		Form: ledger.FormInput{Name: "Ali", Date: "2024-01-01", Price: "5", PaymentType: "cash"},
	}))
	require.NoError(t, err)
	assert.True(t, resp.Msg.Created)

	_, body := s.get(t, "/")
	assert.Contains(t, body, "<h2>Ali</h2>")
}
