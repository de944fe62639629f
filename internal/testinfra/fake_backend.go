// Vendor Booking Tool - Shipment Order and Master Data Console
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vendorbooking

package testinfra

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vendorbooking/internal/backend"
	"github.com/tomtom215/vendorbooking/internal/models"
)

// Capture is one request seen by the fake backend.
type Capture struct {
	Method string
	Path   string
	Query  string
	Token  string
	Body   []byte
}

type fakeUser struct {
	password string
	user     models.User
}

type fakeFailure struct {
	status int
	body   string
}

// FakeBackend is an in-process booking REST API for tests. It implements
// login with access and refresh tokens, /auth/me, CRUD for every backend
// collection over generic JSON records, and the shipment upload and
// template endpoints.
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    map[string]*fakeUser
	access   map[string]string // access token -> username
	refresh  map[string]string // refresh token -> username
	records  map[string]map[int64]map[string]interface{}
	nextID   int64
	tokenSeq int
	captures []Capture
	failures map[string][]fakeFailure
	delays   map[string]time.Duration

	refreshCalls int
	uploads      [][]byte

	// UploadResult is returned by POST /shipment-orders/upload.
	UploadResult models.UploadResult

	// Template is returned by GET /shipment-orders/template.
	Template []byte
}

// NewFakeBackend starts a fake backend that is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()

	f := &FakeBackend{
		users:    make(map[string]*fakeUser),
		access:   make(map[string]string),
		refresh:  make(map[string]string),
		records:  make(map[string]map[int64]map[string]interface{}),
		failures: make(map[string][]fakeFailure),
		delays:   make(map[string]time.Duration),
		Template: []byte("PK-template"),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", f.handleLogin)
	mux.HandleFunc("POST /auth/refresh", f.handleRefresh)
	mux.HandleFunc("GET /auth/me", f.authed(f.handleMe))
	mux.HandleFunc("POST /auth/logout", f.authed(f.handleLogout))
	mux.HandleFunc("GET /shipment-orders/template", f.authed(f.handleTemplate))
	mux.HandleFunc("POST /shipment-orders/upload", f.authed(f.handleUpload))
	mux.HandleFunc("GET /{resource}", f.authed(f.handleList))
	mux.HandleFunc("POST /{resource}", f.authed(f.handleCreate))
	mux.HandleFunc("GET /{resource}/{id}", f.authed(f.handleGet))
	mux.HandleFunc("PUT /{resource}/{id}", f.authed(f.handleReplace))
	mux.HandleFunc("PATCH /{resource}/{id}", f.authed(f.handlePatch))
	mux.HandleFunc("DELETE /{resource}/{id}", f.authed(f.handleDelete))

	f.Server = httptest.NewServer(f.capture(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server URL.
func (f *FakeBackend) URL() string {
	return f.Server.URL
}

// AddUser registers a login.
func (f *FakeBackend) AddUser(user models.User, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == 0 {
		f.nextID++
		user.ID = f.nextID
	}
	user.IsActive = true
	f.users[user.Username] = &fakeUser{password: password, user: user}
}

// IssueTokens returns a valid token pair for username without a login call.
func (f *FakeBackend) IssueTokens(username string) models.TokenPair {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.issueLocked(username)
}

func (f *FakeBackend) issueLocked(username string) models.TokenPair {
	f.tokenSeq++
	pair := models.TokenPair{
		AccessToken:  fmt.Sprintf("acc-%d", f.tokenSeq),
		RefreshToken: fmt.Sprintf("ref-%d", f.tokenSeq),
		ExpiresIn:    900,
	}
	f.access[pair.AccessToken] = username
	f.refresh[pair.RefreshToken] = username
	return pair
}

// ExpireAccessTokens invalidates every access token so the next call gets
// a 401 and must refresh.
func (f *FakeBackend) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.access = make(map[string]string)
}

// RevokeRefreshTokens makes every refresh attempt fail.
func (f *FakeBackend) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = make(map[string]string)
}

// RefreshCalls returns how many refresh requests arrived.
func (f *FakeBackend) RefreshCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshCalls
}

// Seed stores records under resource and returns their IDs. Records are
// anything that encodes to a JSON object; an id of 0 is assigned.
func (f *FakeBackend) Seed(t testing.TB, resource string, records ...interface{}) []int64 {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec)
		if err != nil {
			t.Fatalf("seed %s: %v", resource, err)
		}
		var obj map[string]interface{}
		if err := json.Unmarshal(data, &obj); err != nil {
			t.Fatalf("seed %s: %v", resource, err)
		}
		ids = append(ids, f.storeLocked(resource, obj))
	}
	return ids
}

func (f *FakeBackend) storeLocked(resource string, obj map[string]interface{}) int64 {
	coll, ok := f.records[resource]
	if !ok {
		coll = make(map[int64]map[string]interface{})
		f.records[resource] = coll
	}
	id := int64(toFloat(obj["id"]))
	if id == 0 {
		f.nextID++
		id = f.nextID
	} else if id > f.nextID {
		f.nextID = id
	}
	obj["id"] = id
	if _, ok := obj["is_active"]; !ok {
		obj["is_active"] = true
	}
	coll[id] = obj
	return id
}

// Record returns a stored record.
func (f *FakeBackend) Record(resource string, id int64) (map[string]interface{}, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[resource][id]
	return rec, ok
}

// Count returns the number of records under resource.
func (f *FakeBackend) Count(resource string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.records[resource])
}

// FailNext makes the next request matching method and path answer with
// status and a backend error body carrying message.
func (f *FakeBackend) FailNext(method, path string, status int, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	body, _ := json.Marshal(map[string]string{"message": message})
	f.failures[key] = append(f.failures[key], fakeFailure{status: status, body: string(body)})
}

// FailNextWithBody is FailNext with a raw JSON body.
func (f *FakeBackend) FailNextWithBody(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := method + " " + path
	f.failures[key] = append(f.failures[key], fakeFailure{status: status, body: body})
}

// Delay slows every request to path.
func (f *FakeBackend) Delay(path string, d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delays[path] = d
}

// Captures returns every request seen so far.
func (f *FakeBackend) Captures() []Capture {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Capture, len(f.captures))
	copy(out, f.captures)
	return out
}

// CapturesFor returns requests matching method and path.
func (f *FakeBackend) CapturesFor(method, path string) []Capture {
	var out []Capture
	for _, c := range f.Captures() {
		if c.Method == method && c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Uploads returns the spreadsheet bodies received by the upload endpoint.
func (f *FakeBackend) Uploads() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.uploads...)
}

func (f *FakeBackend) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil && !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			body, _ = io.ReadAll(r.Body)
			r.Body.Close()
			r.Body = io.NopCloser(strings.NewReader(string(body)))
		}

		f.mu.Lock()
		f.captures = append(f.captures, Capture{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.RawQuery,
			Token:  strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "),
			Body:   body,
		})
		key := r.Method + " " + r.URL.Path
		var fail *fakeFailure
		if queue := f.failures[key]; len(queue) > 0 {
			fail = &queue[0]
			f.failures[key] = queue[1:]
		}
		delay := f.delays[r.URL.Path]
		f.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			io.WriteString(w, fail.body) //nolint:errcheck
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) authed(next func(w http.ResponseWriter, r *http.Request, username string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		username, ok := f.access[token]
		f.mu.Unlock()
		if !ok {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Token is invalid or expired"})
			return
		}
		next(w, r, username)
	}
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	f.mu.Lock()
	u, ok := f.users[req.Username]
	if !ok || u.password != req.Password {
		f.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	pair := f.issueLocked(req.Username)
	user := u.user
	f.mu.Unlock()

	user.Privileges = nil
	writeJSON(w, http.StatusOK, models.LoginResponse{TokenPair: pair, User: &user})
}

func (f *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return
	}

	f.mu.Lock()
	f.refreshCalls++
	username, ok := f.refresh[req.RefreshToken]
	if !ok {
		f.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Refresh token expired"})
		return
	}
	delete(f.refresh, req.RefreshToken)
	pair := f.issueLocked(username)
	f.mu.Unlock()

	writeJSON(w, http.StatusOK, pair)
}

func (f *FakeBackend) handleMe(w http.ResponseWriter, _ *http.Request, username string) {
	f.mu.Lock()
	u, ok := f.users[username]
	var user models.User
	if ok {
		user = u.user
	}
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "user not found"})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (f *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request, username string) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	f.mu.Lock()
	delete(f.access, token)
	for rt, u := range f.refresh {
		if u == username {
			delete(f.refresh, rt)
		}
	}
	f.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) handleTemplate(w http.ResponseWriter, _ *http.Request, _ string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Write(f.Template) //nolint:errcheck
}

func (f *FakeBackend) handleUpload(w http.ResponseWriter, r *http.Request, _ string) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "file is required"})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	f.mu.Lock()
	f.uploads = append(f.uploads, data)
	result := f.UploadResult
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, result)
}

func resourceOf(w http.ResponseWriter, r *http.Request) (string, bool) {
	name := r.PathValue("resource")
	if !backend.IsResource(name) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return "", false
	}
	return name, true
}

func idOf(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return 0, false
	}
	return id, true
}

func (f *FakeBackend) handleList(w http.ResponseWriter, r *http.Request, _ string) {
	resource, ok := resourceOf(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("page_size"))
	if size < 1 {
		size = models.DefaultPageSize
	}
	search := strings.ToLower(q.Get("search"))

	f.mu.Lock()
	var matched []map[string]interface{}
	for _, rec := range f.records[resource] {
		if matches(rec, q, search) {
			matched = append(matched, rec)
		}
	}
	f.mu.Unlock()

	sort.Slice(matched, func(i, j int) bool {
		return toFloat(matched[i]["id"]) < toFloat(matched[j]["id"])
	})
	if strings.EqualFold(q.Get("order"), "desc") {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}

	total := len(matched)
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	items := matched[start:end]
	if items == nil {
		items = []map[string]interface{}{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items":     items,
		"total":     total,
		"page":      page,
		"page_size": size,
	})
}

var listControl = map[string]bool{"page": true, "page_size": true, "search": true, "sort": true, "order": true}

func matches(rec map[string]interface{}, q map[string][]string, search string) bool {
	for key, vs := range q {
		if listControl[key] || len(vs) == 0 {
			continue
		}
		if fmt.Sprint(rec[key]) != vs[0] {
			return false
		}
	}
	if search == "" {
		return true
	}
	for _, v := range rec {
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), search) {
			return true
		}
	}
	return false
}

func (f *FakeBackend) handleGet(w http.ResponseWriter, r *http.Request, _ string) {
	resource, ok := resourceOf(w, r)
	if !ok {
		return
	}
	id, ok := idOf(w, r)
	if !ok {
		return
	}
	rec, found := f.Record(resource, id)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func decodeObject(w http.ResponseWriter, r *http.Request) (map[string]interface{}, bool) {
	var obj map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&obj); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed body"})
		return nil, false
	}
	return obj, true
}

// duplicateCode reports a 422 when another record already uses the code.
// Ports are unique per code and kind.
func (f *FakeBackend) duplicateCodeLocked(resource string, id int64, obj map[string]interface{}) bool {
	code, ok := obj["code"].(string)
	if !ok || code == "" {
		return false
	}
	for otherID, rec := range f.records[resource] {
		if otherID == id || !strings.EqualFold(fmt.Sprint(rec["code"]), code) {
			continue
		}
		if resource == backend.ResourcePorts && fmt.Sprint(rec["kind"]) != fmt.Sprint(obj["kind"]) {
			continue
		}
		return true
	}
	return false
}

func writeDuplicate(w http.ResponseWriter) {
	writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
		"message": "Validation failed",
		"errors":  map[string][]string{"code": {"This code is already in use."}},
	})
}

func (f *FakeBackend) handleCreate(w http.ResponseWriter, r *http.Request, username string) {
	resource, ok := resourceOf(w, r)
	if !ok {
		return
	}
	obj, ok := decodeObject(w, r)
	if !ok {
		return
	}
	delete(obj, "id")
	delete(obj, "password")
	obj["created_by"] = username
	obj["created_at"] = time.Now().UTC().Format(time.RFC3339)

	f.mu.Lock()
	if f.duplicateCodeLocked(resource, 0, obj) {
		f.mu.Unlock()
		writeDuplicate(w)
		return
	}
	f.storeLocked(resource, obj)
	f.mu.Unlock()
	writeJSON(w, http.StatusCreated, obj)
}

func (f *FakeBackend) handleReplace(w http.ResponseWriter, r *http.Request, username string) {
	f.update(w, r, username, true)
}

func (f *FakeBackend) handlePatch(w http.ResponseWriter, r *http.Request, username string) {
	f.update(w, r, username, false)
}

func (f *FakeBackend) update(w http.ResponseWriter, r *http.Request, username string, replace bool) {
	resource, ok := resourceOf(w, r)
	if !ok {
		return
	}
	id, ok := idOf(w, r)
	if !ok {
		return
	}
	obj, ok := decodeObject(w, r)
	if !ok {
		return
	}
	delete(obj, "password")

	f.mu.Lock()
	defer f.mu.Unlock()
	rec, found := f.records[resource][id]
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	if f.duplicateCodeLocked(resource, id, obj) {
		writeDuplicate(w)
		return
	}
	if replace {
		obj["created_by"] = rec["created_by"]
		obj["created_at"] = rec["created_at"]
		rec = obj
	} else {
		for k, v := range obj {
			rec[k] = v
		}
	}
	rec["id"] = id
	rec["modified_by"] = username
	rec["modified_at"] = time.Now().UTC().Format(time.RFC3339)
	f.records[resource][id] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (f *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request, _ string) {
	resource, ok := resourceOf(w, r)
	if !ok {
		return
	}
	id, ok := idOf(w, r)
	if !ok {
		return
	}
	f.mu.Lock()
	_, found := f.records[resource][id]
	delete(f.records[resource], id)
	f.mu.Unlock()
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func toFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
