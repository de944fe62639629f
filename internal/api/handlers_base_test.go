// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package api

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/xuri/excelize/v2"

	"github.com/tomtom215/vendorbooking/internal/audit"
	"github.com/tomtom215/vendorbooking/internal/auth"
	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/cache"
	"github.com/tomtom215/vendorbooking/internal/config"
	"github.com/tomtom215/vendorbooking/internal/excel"
	"github.com/tomtom215/vendorbooking/internal/forms"
	"github.com/tomtom215/vendorbooking/internal/middleware"
	"github.com/tomtom215/vendorbooking/internal/models"
	"github.com/tomtom215/vendorbooking/internal/testinfra"
)

const testSecret = "api-test-secret-with-32-plus-bytes!!"

// operatorPrivileges is what the "ops" test user holds.
var operatorPrivileges = []string{
	"dashboard.view",
	"carrier.view", "carrier.create", "carrier.edit", "carrier.delete",
	"customer.view", "supplier.view", "port.view", "container_type.view",
	"shipment_order.view", "shipment_order.create",
	"shipment_order.import", "shipment_order.export",
}

type testServer struct {
	fake    *testinfra.FakeBackend
	server  *httptest.Server
	manager *auth.Manager
	guard   *forms.SubmitGuard
	cache   *cache.Cache
	trail   *audit.Trail
	cfg     *config.Config
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	fake := testinfra.NewFakeBackend(t)
	fake.AddUser(models.User{ID: 1, Username: "ops", Privileges: operatorPrivileges}, "secret")
	fake.AddUser(models.User{ID: 2, Username: "viewer", Privileges: []string{"carrier.view"}}, "secret")
	fake.AddUser(models.User{ID: 3, Username: "admin", IsSuperuser: true}, "secret")

	cfg := &config.Config{
		Backend: config.BackendConfig{BaseURL: fake.URL(), Timeout: 2 * time.Second},
		Security: config.SecurityConfig{
			JWTSecret:         testSecret,
			SessionTimeout:    time.Hour,
			RateLimitDisabled: true,
		},
		Import: config.ImportConfig{MaxFileSize: 1 << 20, MaxRows: 100},
	}

	client, err := backend.NewClient(&cfg.Backend)
	if err != nil {
		t.Fatal(err)
	}
	sealer, err := auth.NewTokenSealer(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	listCache := cache.New(time.Minute)
	store := auth.NewMemorySessionStore()
	manager, err := auth.NewManager(auth.ManagerConfig{
		Client:     client,
		Store:      store,
		Sealer:     sealer,
		JWT:        jwtManager,
		Purger:     listCache,
		SessionTTL: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}

	guard := forms.NewSubmitGuard()
	trail := audit.NewTrail(audit.NewMemoryStore(1000), audit.Config{})
	handler, err := NewHandler(HandlerDeps{
		Config:   cfg,
		Client:   client,
		Auth:     manager,
		Sessions: auth.NewSessionMiddleware(store, jwtManager, auth.SessionMiddlewareConfigFrom(&cfg.Security), WriteDeny),
		CSRF:     auth.NewCSRFMiddleware(testSecret, []string{LoginPath}, WriteDeny),
		Cache:    listCache,
		Guard:    guard,
		PerfMon:  middleware.NewPerformanceMonitor(100, time.Second),
		Trail:    trail,
	})
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(NewRouter(handler, ChiMiddlewareConfigFrom(&cfg.Security)).Setup())
	t.Cleanup(srv.Close)

	return &testServer{fake: fake, server: srv, manager: manager, guard: guard, cache: listCache, trail: trail, cfg: cfg}
}

// testResponse is a decoded envelope.
type testResponse struct {
	status int
	header http.Header
	body   []byte

	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (r *testResponse) decode(t *testing.T, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(r.Data, v); err != nil {
		t.Fatalf("decode data %s: %v", r.Data, err)
	}
}

func (r *testResponse) code() string {
	if r.Error == nil {
		return ""
	}
	return r.Error.Code
}

func (ts *testServer) do(t *testing.T, method, path, token string, body io.Reader, contentType string) *testResponse {
	t.Helper()
	req, err := http.NewRequest(method, ts.server.URL+path, body)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := ts.server.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	out := &testResponse{status: resp.StatusCode, header: resp.Header}
	out.body, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.HasPrefix(out.body, []byte("{")) {
		if err := json.Unmarshal(out.body, out); err != nil {
			t.Fatalf("decode %s %s: %v\n%s", method, path, err, out.body)
		}
	}
	return out
}

func (ts *testServer) get(t *testing.T, path, token string) *testResponse {
	t.Helper()
	return ts.do(t, http.MethodGet, path, token, nil, "")
}

func (ts *testServer) sendJSON(t *testing.T, method, path, token string, v interface{}) *testResponse {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return ts.do(t, method, path, token, bytes.NewReader(data), "application/json")
}

// login returns a bearer token for username.
func (ts *testServer) login(t *testing.T, username string) string {
	t.Helper()
	resp := ts.sendJSON(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Username: username, Password: "secret"})
	if resp.status != http.StatusOK {
		t.Fatalf("login %s: status %d %s", username, resp.status, resp.body)
	}
	var info SessionInfo
	resp.decode(t, &info)
	if info.Token == "" {
		t.Fatal("login returned no token")
	}
	return info.Token
}

// sessionID resolves the console session behind a bearer token.
func (ts *testServer) sessionID(t *testing.T, token string) string {
	t.Helper()
	claims, err := ts.manager.JWT().ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	return claims.SessionID()
}

// upload posts a workbook to the import endpoint.
func (ts *testServer) upload(t *testing.T, query, token string, workbook []byte) *testResponse {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "orders.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(workbook); err != nil {
		t.Fatal(err)
	}
	if err := mw.Close(); err != nil {
		t.Fatal(err)
	}
	return ts.do(t, http.MethodPost, "/api/v1/shipment-orders/import"+query, token, &buf, mw.FormDataContentType())
}

// seedMasterData stores the codes the test workbooks refer to.
func (ts *testServer) seedMasterData(t *testing.T) {
	t.Helper()
	ts.fake.Seed(t, backend.ResourceCustomers, models.Customer{ID: 101, Code: "CUST01", Name: "Acme", IsActive: true})
	ts.fake.Seed(t, backend.ResourceCarriers, models.Carrier{ID: 102, Code: "MAEU", Name: "Maersk", IsActive: true})
	ts.fake.Seed(t, backend.ResourceSuppliers, models.Supplier{ID: 103, Code: "SUP01", Name: "Widgets", IsActive: true})
	ts.fake.Seed(t, backend.ResourcePorts,
		models.Port{ID: 104, Code: "CNSHA", Name: "Shanghai", Kind: models.PortKindPOL, IsActive: true},
		models.Port{ID: 105, Code: "NLRTM", Name: "Rotterdam", Kind: models.PortKindPOD, IsActive: true},
	)
	ts.fake.Seed(t, backend.ResourceContainerTypes, models.ContainerType{ID: 106, Code: "40HC", TEU: 2, IsActive: true})
}

// workbook builds an xlsx with the import header and rows.
func workbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(f.GetActiveSheetIndex())

	header := make([]interface{}, len(excel.Headers))
	for i, h := range excel.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatal(err)
		}
	}
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func validOrderRow(number string) []interface{} {
	return []interface{}{number, "CUST01", "MAEU", "SUP01", "CNSHA", "NLRTM", "40HC", 2, "2026-03-01", "2026-03-05", "2026-04-02", "booked", ""}
}
