package pesapal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"docbadman_back_end/internal/cache"
	"docbadman_back_end/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.Handler) (*Service, *miniredis.Miniredis) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	cfg := config.PesaPalConfig{
		BaseURL:        srv.URL,
		ConsumerKey:    "ck-test",
		ConsumerSecret: "cs-test",
		IPNURL:         "https://shop.test/api/v1/payments/ipn",
		CallbackURL:    "https://shop.test/payment/callback",
	}
	return New(cfg, cache.NewRedisCache(client)), mr
}

func TestGetTokenIsCached(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ck-test", body["consumer_key"])
		assert.Equal(t, "cs-test", body["consumer_secret"])

		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})

	svc, mr := newTestService(t, mux)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		token, err := svc.GetToken(ctx)
		require.NoError(t, err)
		assert.Equal(t, "tok-1", token)
	}

	// Un seul aller-retour HTTP : les suivants servent le cache
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, TokenCacheTTL, mr.TTL(TokenCacheKey))

	// Cache expiré : on redemande un token
	mr.FastForward(TokenCacheTTL + 1)
	_, err := svc.GetToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestGetTokenFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestGetTokenEmptyResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": ""})
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.GetToken(context.Background())
	assert.ErrorIs(t, err, ErrAuth)
}

func TestEnsureIPNRegistersOnce(t *testing.T) {
	var registrations int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/URLSetup/RegisterIPN", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&registrations, 1)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://shop.test/api/v1/payments/ipn", body["url"])
		assert.Equal(t, "GET", body["ipn_notification_type"])
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))

		json.NewEncoder(w).Encode(map[string]string{"ipn_id": "ipn-42"})
	})

	svc, mr := newTestService(t, mux)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ipnID, err := svc.EnsureIPN(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ipn-42", ipnID)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&registrations))
	assert.Equal(t, IPNCacheTTL, mr.TTL(IPNCacheKey))
}

func TestSubmitOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/URLSetup/RegisterIPN", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ipn_id": "ipn-42"})
	})
	mux.HandleFunc("/api/Transactions/SubmitOrderRequest", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))

		assert.Equal(t, "ORD-ABC123DEF456", payload["id"])
		assert.Equal(t, "KES", payload["currency"])
		// 250000 centimes → 2500.00 KES à la frontière du protocole
		assert.Equal(t, 2500.0, payload["amount"])
		assert.Equal(t, "ipn-42", payload["notification_id"])
		assert.Contains(t, payload["callback_url"], "order=ORD-ABC123DEF456")

		billing := payload["billing_address"].(map[string]any)
		assert.Equal(t, "Amina", billing["first_name"])
		assert.Equal(t, "Wanjiru Kamau", billing["last_name"])
		assert.Equal(t, "amina@example.com", billing["email_address"])

		json.NewEncoder(w).Encode(map[string]string{
			"order_tracking_id":  "track-777",
			"merchant_reference": "ORD-ABC123DEF456",
			"redirect_url":       "https://pay.pesapal.test/iframe/track-777",
		})
	})

	svc, _ := newTestService(t, mux)

	result, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
		OrderNumber:   "ORD-ABC123DEF456",
		Amount:        250000,
		CustomerName:  "Amina Wanjiru Kamau",
		CustomerEmail: "amina@example.com",
		CustomerPhone: "+254700000001",
	})
	require.NoError(t, err)
	assert.Equal(t, "track-777", result.TrackingID)
	assert.Equal(t, "ORD-ABC123DEF456", result.MerchantRef)
	assert.Equal(t, "https://pay.pesapal.test/iframe/track-777", result.RedirectURL)
}

func TestSubmitOrderFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/URLSetup/RegisterIPN", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"ipn_id": "ipn-42"})
	})
	mux.HandleFunc("/api/Transactions/SubmitOrderRequest", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"duplicate id"}`, http.StatusInternalServerError)
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.SubmitOrder(context.Background(), SubmitOrderInput{
		OrderNumber: "ORD-ABC123DEF456", Amount: 250000,
		CustomerName: "Amina", CustomerEmail: "amina@example.com", CustomerPhone: "+254700000001",
	})
	assert.ErrorIs(t, err, ErrSubmit)
}

func TestGetTransactionStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/Transactions/GetTransactionStatus", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "track-777", r.URL.Query().Get("orderTrackingId"))
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"payment_status_description": "Completed",
			"amount":                     2500.0,
		})
	})

	svc, _ := newTestService(t, mux)

	status, err := svc.GetTransactionStatus(context.Background(), "track-777")
	require.NoError(t, err)
	assert.True(t, status.IsCompleted())
	assert.NotEmpty(t, status.Raw)
}

func TestIsCompletedStrictMatch(t *testing.T) {
	// Seul "Completed" littéral est un succès terminal
	for _, desc := range []string{"Pending", "Failed", "Reversed", "completed", "COMPLETED", ""} {
		status := TransactionStatus{PaymentStatusDescription: desc}
		assert.False(t, status.IsCompleted(), "%q ne doit pas être terminal", desc)
	}
	assert.True(t, (&TransactionStatus{PaymentStatusDescription: "Completed"}).IsCompleted())
}

func TestGetTransactionStatusHTTPError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/Auth/RequestToken", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"token": "tok-1"})
	})
	mux.HandleFunc("/api/Transactions/GetTransactionStatus", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
	})

	svc, _ := newTestService(t, mux)

	_, err := svc.GetTransactionStatus(context.Background(), "track-inconnu")
	assert.ErrorIs(t, err, ErrStatus)
}

func TestSplitName(t *testing.T) {
	cases := []struct{ full, first, last string }{
		{"Amina Wanjiru", "Amina", "Wanjiru"},
		{"Amina Wanjiru Kamau", "Amina", "Wanjiru Kamau"},
		{"Amina", "Amina", ""},
		{"", "", ""},
	}
	for _, tc := range cases {
		first, last := splitName(tc.full)
		assert.Equal(t, tc.first, first)
		assert.Equal(t, tc.last, last)
	}
}
