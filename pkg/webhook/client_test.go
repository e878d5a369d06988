package webhook

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
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

func TestNewClient_RequiresURL(t *testing.T) {
	_, err := NewClient("", 0, zap.NewNop())
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestClient_Send(t *testing.T) {
	var received Message
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client, err := NewClient(server.URL, time.Second, zap.NewNop())
	require.NoError(t, err)

	err = client.Send(context.Background(), NewTextMessage("Status summary approved for Intake ID: I-1"))
	require.NoError(t, err)
	assert.Equal(t, "message", received.Type)
	assert.Equal(t, "Status summary approved for Intake ID: I-1", received.Text)
}

func TestClient_Send_Non2xxIsDeliveryError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	core, logs := observer.New(zap.DebugLevel)
	client, err := NewClient(server.URL, time.Second, zap.New(core))
	require.NoError(t, err)

	err = client.Send(context.Background(), NewReviewCard("I-1", "summary", time.Now()))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDelivery))
	assert.Equal(t, 1, logs.FilterMessage("Webhook returned error").Len())
}

func TestClient_Send_TransportFailureHidesSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL + "/invoke?api-version=2016-06-01&sig=TopSecretSig"
	server.Close()

	core, logs := observer.New(zap.DebugLevel)
	client, err := NewClient(url, time.Second, zap.New(core))
	require.NoError(t, err)

	err = client.Send(context.Background(), NewTextMessage("x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrDelivery))
	assert.NotContains(t, err.Error(), "TopSecretSig")

	entries := logs.FilterMessage("Webhook request failed").All()
	require.Len(t, entries, 1)
	for _, f := range entries[0].Context {
		assert.NotContains(t, f.String, "TopSecretSig")
	}
}
