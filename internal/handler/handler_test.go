package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/alanaman/KvServerLoadTest/internal/cache"
	"github.com/alanaman/KvServerLoadTest/internal/pool"
)

// fakeStore is a hand-rolled in-memory KVStore fake.
type fakeStore struct {
	mu   sync.Mutex
	rows map[int32]string
	gets int
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[int32]string)}
}

func (f *fakeStore) Get(ctx context.Context, key int32) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	v, ok := f.rows[key]
	return v, ok, nil
}

func (f *fakeStore) Upsert(ctx context.Context, key int32, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows[key] = value
	return nil
}

func (f *fakeStore) Delete(ctx context.Context, key int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rows, key)
	return nil
}

func newTestHandler(t *testing.T, fs *fakeStore) *Handler {
	t.Helper()
	c, err := cache.NewByteCache(16, 2)
	if err != nil {
		t.Fatalf("NewByteCache: %v", err)
	}
	p := pool.New[KVStore](4, func() (KVStore, error) { return fs, nil })
	return New(c, p)
}

func TestGetMissThenAbsentReturns404WithoutPopulatingCache(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	_, status, err := h.HandleGet(context.Background(), 7)
	if err != nil {
		t.Fatalf("HandleGet: %v", err)
	}
	if status != 404 {
		t.Fatalf("status = %d; want 404", status)
	}
	if _, ok := h.cache.Get(7); ok {
		t.Fatalf("cache was populated on a miss-then-absent read")
	}
}

func TestPutThenGetObservesNewValueNeverStale(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	ctx := context.Background()

	if status, err := h.HandlePut(ctx, 42, []byte("X")); err != nil || status != 200 {
		t.Fatalf("PUT X: status=%d err=%v", status, err)
	}
	if status, err := h.HandlePut(ctx, 42, []byte("Y")); err != nil || status != 200 {
		t.Fatalf("PUT Y: status=%d err=%v", status, err)
	}

	value, status, err := h.HandleGet(ctx, 42)
	if err != nil || status != 200 {
		t.Fatalf("GET: status=%d err=%v", status, err)
	}
	if string(value) != "Y" {
		t.Fatalf("GET value = %q; want %q (never the stale X)", value, "Y")
	}
}

func TestDeleteThenGetReturns404(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	ctx := context.Background()

	if status, err := h.HandlePut(ctx, 7, []byte("v")); err != nil || status != 200 {
		t.Fatalf("PUT: status=%d err=%v", status, err)
	}
	if status, err := h.HandleDelete(ctx, 7); err != nil || status != 200 {
		t.Fatalf("DELETE: status=%d err=%v", status, err)
	}
	if _, status, err := h.HandleGet(ctx, 7); err != nil || status != 404 {
		t.Fatalf("GET after DELETE: status=%d err=%v; want 404", status, err)
	}
}

func TestDeleteOnEmptyStoreIsNotAnError(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)

	if status, err := h.HandleDelete(context.Background(), 999); err != nil || status != 200 {
		t.Fatalf("DELETE on empty store: status=%d err=%v; want 200, nil", status, err)
	}
}

func TestCacheHitAvoidsStoreRoundTrip(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	ctx := context.Background()

	if status, err := h.HandlePut(ctx, 1, []byte("A")); err != nil || status != 200 {
		t.Fatalf("PUT: status=%d err=%v", status, err)
	}
	if _, status, err := h.HandleGet(ctx, 1); err != nil || status != 200 {
		t.Fatalf("GET (populates cache from store): status=%d err=%v", status, err)
	}

	getsBefore := fs.gets
	if value, status, err := h.HandleGet(ctx, 1); err != nil || status != 200 || string(value) != "A" {
		t.Fatalf("GET (should hit cache): value=%q status=%d err=%v", value, status, err)
	}
	if fs.gets != getsBefore {
		t.Fatalf("store Get called again on a cache hit: before=%d after=%d", getsBefore, fs.gets)
	}
}

func TestHTTPRouterDrivesScenarioOne(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	put := func(key, body string) int {
		req, _ := http.NewRequest(http.MethodPut, srv.URL+"/"+key, strings.NewReader(body))
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("PUT %s: %v", key, err)
		}
		defer resp.Body.Close()
		return resp.StatusCode
	}
	get := func(key string) (int, string) {
		resp, err := http.Get(srv.URL + "/" + key)
		if err != nil {
			t.Fatalf("GET %s: %v", key, err)
		}
		defer resp.Body.Close()
		body := readAll(t, resp)
		return resp.StatusCode, body
	}

	if s := put("1", "A"); s != 200 {
		t.Fatalf("PUT /1 = %d; want 200", s)
	}
	if s := put("2", "B"); s != 200 {
		t.Fatalf("PUT /2 = %d; want 200", s)
	}
	if s, body := get("1"); s != 200 || body != "A" {
		t.Fatalf("GET /1 = %d %q; want 200 A", s, body)
	}
	if s, body := get("2"); s != 200 || body != "B" {
		t.Fatalf("GET /2 = %d %q; want 200 B", s, body)
	}
	if s := put("3", "C"); s != 200 {
		t.Fatalf("PUT /3 = %d; want 200", s)
	}
	if s, body := get("3"); s != 200 || body != "C" {
		t.Fatalf("GET /3 = %d %q; want 200 C", s, body)
	}
}

func TestHTTPRouterMalformedKeyReturns400(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/abc")
	if err != nil {
		t.Fatalf("GET /abc: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != 400 {
		t.Fatalf("GET /abc = %d; want 400", resp.StatusCode)
	}
}

func TestHTTPRouterStatusEndpoint(t *testing.T) {
	fs := newFakeStore()
	h := newTestHandler(t, fs)
	srv := httptest.NewServer(NewRouter(h))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()
	body := readAll(t, resp)
	if !containsBoth(body, "totalGets:", "cacheHits:") {
		t.Fatalf("status body = %q; want both totalGets: and cacheHits: lines", body)
	}
}

func containsBoth(s, a, b string) bool {
	return strIndex(s, a) >= 0 && strIndex(s, b) >= 0
}

func strIndex(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

func readAll(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading response body: %v", err)
	}
	return string(data)
}
