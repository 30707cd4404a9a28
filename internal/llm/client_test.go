package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Complete(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"content":[{"type":"text","text":"안녕!"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "secret", "test-model", 5*time.Second)
	text, err := c.Complete(context.Background(), Request{
		Turns:     []Turn{{Role: RoleUser, Content: "hi"}},
		MaxTokens: 300,
	})

	require.NoError(t, err)
	assert.Equal(t, "안녕!", text)
	assert.Equal(t, "test-model", got.Model)
	assert.Equal(t, 300, got.MaxTokens)
	assert.Equal(t, []Turn{{Role: RoleUser, Content: "hi"}}, got.Messages)
}

func TestClient_Complete_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "m", time.Second)
	_, err := c.Complete(context.Background(), Request{Turns: []Turn{{Role: RoleUser, Content: "x"}}})

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusTooManyRequests, statusErr.Code)
	assert.Contains(t, statusErr.Body, "rate limited")
}

func TestClient_Complete_EmptyContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"content":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", "m", time.Second)
	_, err := c.Complete(context.Background(), Request{Turns: []Turn{{Role: RoleUser, Content: "x"}}})

	assert.True(t, errors.Is(err, ErrEmptyCompletion))
}

func TestClient_Complete_NoTurns(t *testing.T) {
	c := NewClient("http://unused", "", "m", time.Second)
	_, err := c.Complete(context.Background(), Request{})
	assert.Error(t, err)
}

func TestClient_Complete_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(url, "", "m", time.Second)
	_, err := c.Complete(context.Background(), Request{Turns: []Turn{{Role: RoleUser, Content: "x"}}})
	assert.Error(t, err)
}
