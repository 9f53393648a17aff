package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dealdesk/internal/store"
)

func TestWebhookCRMPushDeal(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var deal store.Deal
		require.NoError(t, json.NewDecoder(r.Body).Decode(&deal))
		assert.Equal(t, "d-1", deal.ID)

		json.NewEncoder(w).Encode(map[string]string{"id": "crm-900"})
	}))
	defer srv.Close()

	crm := NewWebhookCRM(srv.URL, "sekret-token", 5*time.Second, nil)
	id, err := crm.PushDeal(context.Background(), store.Deal{ID: "d-1", Name: "Acme Corp"})

	require.NoError(t, err)
	assert.Equal(t, "crm-900", id)
	assert.Equal(t, "Bearer sekret-token", gotAuth)
}

func TestWebhookCRMErrorNeverLeaksToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	crm := NewWebhookCRM(srv.URL, "sekret-token", 5*time.Second, nil)
	_, err := crm.PushDeal(context.Background(), store.Deal{ID: "d-1"})

	require.Error(t, err)
	assert.NotContains(t, err.Error(), "sekret-token")
}

func TestWebhookCRMTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	crm := NewWebhookCRM(srv.URL, "", 50*time.Millisecond, nil)
	_, err := crm.PushDeal(context.Background(), store.Deal{ID: "d-1"})

	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "CRM request failed"), "got %v", err)
}

func TestWebhookCRMRejectedDeal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "duplicate external id"})
	}))
	defer srv.Close()

	crm := NewWebhookCRM(srv.URL, "", time.Second, nil)
	_, err := crm.PushDeal(context.Background(), store.Deal{ID: "d-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate external id")
}
