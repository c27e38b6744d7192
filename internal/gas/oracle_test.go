package gas

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Insula-Crypto/bot/internal/config"
)

func newTestOracle(url string) *Oracle {
	return NewOracle(config.GasOracleConfig{
		URL:     url,
		Timeout: 2 * time.Second,
	}, nil)
}

func TestFetch_ConvertsTierToWei(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"safeLow": 100, "average": 200, "fast": 400, "fastest": 800}`))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)

	price, err := oracle.Fetch(context.Background(), decimal.RequireFromString("0.1"))
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	// safeLow=100（0.1 gwei 单位）→ 100 × 1e8 = 1e10 wei
	expected := big.NewInt(10_000_000_000)
	if price.Cmp(expected) != 0 {
		t.Fatalf("expected %s wei, got %s", expected, price)
	}
}

func TestFetch_PercentileTierMapping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"safeLow": 1, "average": 2, "fast": 3, "fastest": 4}`))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)

	cases := []struct {
		percentile string
		expected   int64
	}{
		{"0.1", 100_000_000},
		{"0.5", 200_000_000},
		{"0.75", 300_000_000},
		{"0.99", 400_000_000},
	}

	for _, tc := range cases {
		price, err := oracle.Fetch(context.Background(), decimal.RequireFromString(tc.percentile))
		if err != nil {
			t.Fatalf("Fetch(%s) returned error: %v", tc.percentile, err)
		}
		if price.Cmp(big.NewInt(tc.expected)) != 0 {
			t.Errorf("percentile %s: expected %d wei, got %s", tc.percentile, tc.expected, price)
		}
	}
}

func TestFetch_HTTPErrorIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)

	if _, err := oracle.Fetch(context.Background(), decimal.RequireFromString("0.1")); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestFetch_MalformedPayloadIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)

	if _, err := oracle.Fetch(context.Background(), decimal.RequireFromString("0.1")); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestFetch_NonPositivePriceIsUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"safeLow": 0, "average": 0, "fast": 0, "fastest": 0}`))
	}))
	defer server.Close()

	oracle := newTestOracle(server.URL)

	if _, err := oracle.Fetch(context.Background(), decimal.RequireFromString("0.1")); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestFetch_UnreachableHostIsUnavailable(t *testing.T) {
	oracle := newTestOracle("http://127.0.0.1:1")

	if _, err := oracle.Fetch(context.Background(), decimal.RequireFromString("0.1")); !errors.Is(err, ErrOracleUnavailable) {
		t.Fatalf("expected ErrOracleUnavailable, got %v", err)
	}
}
