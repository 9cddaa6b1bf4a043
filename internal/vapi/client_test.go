package vapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClient_GetAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/assistant/asst-1", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(Assistant{
			ID:           "asst-1",
			Name:         "Maria",
			FirstMessage: "Καλημέρα!",
		})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	assistant, err := client.GetAssistant(context.Background(), "asst-1")
	require.NoError(t, err)
	require.Equal(t, "Maria", assistant.Name)
	require.Equal(t, "Καλημέρα!", assistant.FirstMessage)
}

func TestClient_PatchAssistant(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var patch map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&patch))
		require.Equal(t, "https://voicedesk.example.com/api/v1/webhooks/vapi", patch["serverUrl"])
		// Нулевые поля не должны попадать в запрос.
		require.NotContains(t, patch, "name")

		_ = json.NewEncoder(w).Encode(Assistant{ID: "asst-1", ServerURL: patch["serverUrl"].(string)})
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))

	assistant, err := client.PatchAssistant(context.Background(), "asst-1", AssistantPatch{
		ServerURL: "https://voicedesk.example.com/api/v1/webhooks/vapi",
	})
	require.NoError(t, err)
	require.Equal(t, "https://voicedesk.example.com/api/v1/webhooks/vapi", assistant.ServerURL)
}

func TestClient_VendorErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
	}))
	defer srv.Close()

	client := NewClient("bad-key", WithBaseURL(srv.URL))

	_, err := client.GetAssistant(context.Background(), "asst-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 401")
	require.Contains(t, err.Error(), "invalid api key")
}

func TestClient_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/assistant", r.URL.Path)
		require.Equal(t, "1", r.URL.Query().Get("limit"))
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient("test-key", WithBaseURL(srv.URL))
	require.NoError(t, client.Ping(context.Background()))
}

func TestClient_EmptyAssistantIDRejected(t *testing.T) {
	client := NewClient("test-key")

	_, err := client.GetAssistant(context.Background(), "")
	require.Error(t, err)

	_, err = client.PatchAssistant(context.Background(), "", AssistantPatch{})
	require.Error(t, err)
}
