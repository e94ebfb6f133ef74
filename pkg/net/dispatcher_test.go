package net

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcher_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL)
	d := NewDispatcher(time.Second)

	resp, err := d.Send(context.Background(), NewUpstreamRequest(context.Background(), client, "token-1"), http.MethodPost, "/ping")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode())
	assert.JSONEq(t, `{"ok":true}`, resp.String())
}

func TestDispatcher_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL)
	d := NewDispatcher(50 * time.Millisecond)

	start := time.Now()
	_, err := d.Send(context.Background(), NewUpstreamRequest(context.Background(), client, "t"), http.MethodGet, "/slow")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout))
	assert.Less(t, time.Since(start), time.Second)
}

func TestDispatcher_NetworkErrorIsNotTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	client := resty.New().SetBaseURL(url)
	d := NewDispatcher(time.Second)

	_, err := d.Send(context.Background(), NewUpstreamRequest(context.Background(), client, "t"), http.MethodGet, "/")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrTimeout))
}

func TestDispatcher_UpstreamStatusIsNotError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := resty.New().SetBaseURL(srv.URL)
	d := NewDispatcher(time.Second)

	resp, err := d.Send(context.Background(), NewUpstreamRequest(context.Background(), client, "t"), http.MethodGet, "/")
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode())
	assert.Equal(t, time.Second, d.Timeout())
}
