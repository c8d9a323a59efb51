package collector

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"BistSentinel/internal/model"
)

const chartBody = `{"chart":{"result":[{"timestamp":[1700003600,1700000000,1700007200,1700010800],
"indicators":{"quote":[{
"open":[101,100,null,103],"high":[102,101,103,104],"low":[100,99,101,102],
"close":[101.5,100.5,102.5,103.5],"volume":[1000,900,1100,1200]}]}}],"error":null}}`

func newYahooServer(t *testing.T, handler http.HandlerFunc) *YahooFetcher {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &YahooFetcher{BaseURL: srv.URL, Client: srv.Client(), Attempts: 3}
}

func TestYahooFetcher_IntradayDropsUnclosedBar(t *testing.T) {
	var gotInterval, gotRange, gotPath string
	f := newYahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotRange = r.URL.Query().Get("range")
		w.Write([]byte(chartBody))
	})

	bars, err := f.FetchBars(context.Background(), "THYAO.IS", "15m", "60d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v8/finance/chart/THYAO.IS" || gotInterval != "60m" || gotRange != "60d" {
		t.Errorf("request = %s interval=%s range=%s", gotPath, gotInterval, gotRange)
	}
	// Null bar skipped, remaining three sorted, last one dropped.
	if len(bars) != 2 {
		t.Fatalf("expected 2 bars, got %d", len(bars))
	}
	if bars[0].Close != 100.5 || bars[1].Close != 101.5 {
		t.Errorf("unexpected order: %+v", bars)
	}
}

func TestYahooFetcher_DailyKeepsLastBar(t *testing.T) {
	f := newYahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(chartBody))
	})
	bars, err := f.FetchBars(context.Background(), "ASELS.IS", "1d", "1y")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 3 || bars[2].Close != 103.5 {
		t.Errorf("expected 3 bars ending at 103.5, got %+v", bars)
	}
}

func TestYahooFetcher_RetriesThenSucceeds(t *testing.T) {
	var hits atomic.Int32
	f := newYahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(chartBody))
	})
	bars, err := f.FetchBars(context.Background(), "SISE.IS", "1d", "60d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hits.Load() != 3 || len(bars) != 3 {
		t.Errorf("hits=%d bars=%d", hits.Load(), len(bars))
	}
}

func TestYahooFetcher_EmptyIsNoData(t *testing.T) {
	var hits atomic.Int32
	f := newYahooServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	})
	_, err := f.FetchBars(context.Background(), "XXXX.IS", "60m", "60d")
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 attempts, got %d", hits.Load())
	}
}

func TestRESTFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if r.URL.Path != "/api/v1/bars" || r.URL.Query().Get("symbol") != "GARAN.IS" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`[
			{"timestamp":1700086400,"open":2,"high":3,"low":1,"close":2.5,"volume":10},
			{"timestamp":1700000000,"open":1,"high":2,"low":0.5,"close":1.5,"volume":20}
		]`))
	}))
	defer srv.Close()

	f := &RESTFetcher{BaseURL: srv.URL, APIKey: "secret", Client: srv.Client()}
	bars, err := f.FetchBars(context.Background(), "GARAN.IS", "1d", "60d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 || bars[0].Close != 1.5 {
		t.Errorf("unexpected bars: %+v", bars)
	}

	f.APIKey = "wrong"
	if _, err := f.FetchBars(context.Background(), "GARAN.IS", "1d", "60d"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status error, got %v", err)
	}
}

type memStore struct {
	mu     sync.Mutex
	data   map[string][]byte
	getErr error
	ttl    time.Duration
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	v, ok := s.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return v, nil
}

func (s *memStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = map[string][]byte{}
	}
	s.data[key] = value
	s.ttl = ttl
	return nil
}

func TestCachedFetcher_ServesFromCache(t *testing.T) {
	inner := &MockFetcher{Price: 50, Count: 40}
	store := &memStore{}
	f := NewCachedFetcher(inner, store, 5*time.Minute)

	first, err := f.FetchBars(context.Background(), "EREGL.IS", "60m", "60d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.FetchBars(context.Background(), "EREGL.IS", "60m", "60d")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.Calls() != 1 {
		t.Errorf("expected 1 upstream call, got %d", inner.Calls())
	}
	if len(first) != len(second) || first[len(first)-1].Close != second[len(second)-1].Close {
		t.Error("cached bars differ from fetched bars")
	}
	if _, ok := store.data["bars:EREGL.IS:60m:60d"]; !ok {
		t.Errorf("expected cache key, have %v", store.data)
	}
	if store.ttl != 5*time.Minute {
		t.Errorf("ttl = %v", store.ttl)
	}
}

func TestCachedFetcher_StoreErrorFallsThrough(t *testing.T) {
	inner := &MockFetcher{Price: 50}
	store := &memStore{getErr: errors.New("connection refused")}
	f := NewCachedFetcher(inner, store, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := f.FetchBars(context.Background(), "SISE.IS", "1d", "1y"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if inner.Calls() != 2 {
		t.Errorf("expected 2 upstream calls, got %d", inner.Calls())
	}
}

func TestCachedFetcher_CorruptEntryRefetches(t *testing.T) {
	inner := &MockFetcher{Price: 50}
	store := &memStore{data: map[string][]byte{CacheKey("SISE.IS", "1d", "1y"): []byte("{not json")}}
	f := NewCachedFetcher(inner, store, time.Minute)
	bars, err := f.FetchBars(context.Background(), "SISE.IS", "1d", "1y")
	if err != nil || len(bars) == 0 {
		t.Fatalf("expected refetch, got %d bars, err %v", len(bars), err)
	}
	var cached []model.OHLCV
	if err := json.Unmarshal(store.data[CacheKey("SISE.IS", "1d", "1y")], &cached); err != nil {
		t.Errorf("cache not repaired: %v", err)
	}
}

func TestMockFetcher(t *testing.T) {
	boom := errors.New("boom")
	m := &MockFetcher{
		Bars: map[string][]model.OHLCV{"EMPTY.IS": {}},
		Errs: map[string]error{"BAD.IS": boom},
	}
	if _, err := m.FetchBars(context.Background(), "BAD.IS", "60m", "60d"); !errors.Is(err, boom) {
		t.Errorf("expected boom, got %v", err)
	}
	if _, err := m.FetchBars(context.Background(), "EMPTY.IS", "60m", "60d"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData, got %v", err)
	}
	if _, err := m.FetchBars(context.Background(), "ANY.IS", "60m", "60d"); !errors.Is(err, ErrNoData) {
		t.Errorf("expected ErrNoData without price, got %v", err)
	}
	if m.Calls() != 3 {
		t.Errorf("calls = %d", m.Calls())
	}
}
