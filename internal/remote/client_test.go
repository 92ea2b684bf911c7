package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/backoffice/internal/domain"
	"github.com/vladislavdragonenkov/backoffice/internal/remote"
)

func newClient(t *testing.T, handler http.HandlerFunc) *remote.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := remote.NewClient(srv.URL+"/", remote.WithTimeout(time.Second))
	require.NoError(t, err)
	return client
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := remote.NewClient("localhost-without-scheme")
	require.Error(t, err)
}

func TestNewClient_NilHTTPClientKeepsDefault(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[]`)
	}))
	t.Cleanup(srv.Close)

	var client *remote.Client
	require.NotPanics(t, func() {
		var err error
		client, err = remote.NewClient(srv.URL, remote.WithHTTPClient(nil), remote.WithTimeout(time.Second))
		require.NoError(t, err)
	})

	orders, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestClient_FetchAll(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/orders", r.URL.Path)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		_, _ = io.WriteString(w, `[
			{"id":1,"customer":"Asha","status":"Pending","payment":"Cash","items":[{"name":"Dosa","qty":1,"price":80}],"total":80},
			{"id":"b7","customer":"Ravi","status":"Ready","items":[{"name":"Tea","qty":2,"price":40}],"total":40}
		]`)
	})

	orders, err := client.FetchAll(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, domain.OrderID("1"), orders[0].ID)
	require.Equal(t, domain.PaymentCash, orders[0].Payment)
	require.Equal(t, domain.OrderStatusReady, orders[1].Status)
	require.Equal(t, int64(40), orders[1].Total)
}

func TestClient_PatchSendsOnlyChangedFields(t *testing.T) {
	var body map[string]interface{}
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/orders/42", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, `{"id":"42"}`)
	})

	status := domain.OrderStatusPreparing
	err := client.Patch(context.Background(), "42", domain.OrderPatch{Status: &status})

	require.NoError(t, err)
	require.Equal(t, map[string]interface{}{"status": "Preparing"}, body)
}

func TestClient_NonSuccessStatus(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such order", http.StatusNotFound)
	})

	err := client.Delete(context.Background(), "7")

	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrRemoteStore)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
	require.Equal(t, http.StatusNotFound, remote.StatusCode(err))
	require.Contains(t, err.Error(), "no such order")
}

func TestClient_ServerErrorIsNotNotFound(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	status := domain.OrderStatusReady
	err := client.Patch(context.Background(), "7", domain.OrderPatch{Status: &status})

	require.ErrorIs(t, err, domain.ErrRemoteStore)
	require.NotErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := remote.NewClient(url)
	require.NoError(t, err)

	_, err = client.FetchAll(context.Background())
	require.ErrorIs(t, err, domain.ErrRemoteStore)
	require.Equal(t, 0, remote.StatusCode(err))
}

func TestClient_Ping(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	require.NoError(t, client.Ping(context.Background()))

	failing := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	require.Error(t, failing.Ping(context.Background()))
}
