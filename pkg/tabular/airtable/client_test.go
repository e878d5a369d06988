package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Ezzyro/Airtable-Test/pkg/apperrors"
	"github.com/Ezzyro/Airtable-Test/pkg/tabular"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(&Config{
		APIKey: "pat-test",
		BaseID: "appBase",
		APIURL: server.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	return client
}

func TestNew_RequiresCredentials(t *testing.T) {
	_, err := New(&Config{BaseID: "appBase"}, zap.NewNop())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConfiguration))
}

func TestSelect_SendsFormulaAndFields(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/appBase/Status Notes", r.URL.Path)
		assert.Equal(t, "Bearer pat-test", r.Header.Get("Authorization"))
		assert.Equal(t, "{Intake ID} = 'I-1'", r.URL.Query().Get("filterByFormula"))
		assert.Equal(t, []string{"Notes", "Added On"}, r.URL.Query()["fields[]"])

		_, _ = io.WriteString(w, `{"records":[{"id":"rec1","createdTime":"2024-01-17T10:00:00.000Z","fields":{"Notes":"Shipped v2","Added On":"2024-01-17"}}],"offset":"next"}`)
	})

	records, err := client.Select(context.Background(), "Status Notes", tabular.Query{
		Filter: tabular.Eq("Intake ID", "I-1"),
		Fields: []string{"Notes", "Added On"},
	})
	require.NoError(t, err)
	require.Len(t, records, 1, "only the first page without AllPages")
	assert.Equal(t, "rec1", records[0].ID)
	assert.Equal(t, "Shipped v2", records[0].Fields["Notes"])
	assert.Equal(t, 2024, records[0].CreatedTime.Year())
}

func TestSelect_AllPagesFollowsOffset(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.URL.Query().Get("offset") == "" {
			_, _ = io.WriteString(w, `{"records":[{"id":"rec1","fields":{}}],"offset":"itr2"}`)
			return
		}
		assert.Equal(t, "itr2", r.URL.Query().Get("offset"))
		_, _ = io.WriteString(w, `{"records":[{"id":"rec2","fields":{}}]}`)
	})

	records, err := client.Select(context.Background(), "JIRA Sync", tabular.Query{AllPages: true})
	require.NoError(t, err)
	assert.Len(t, records, 2)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestSelect_RateLimitIsNotRetried(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error":{"type":"RATE_LIMIT_REACHED","message":"slow down"}}`)
	})

	_, err := client.Select(context.Background(), "Projects", tabular.Query{})
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "RATE_LIMIT_REACHED", apiErr.Type)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCreate_ServerErrorIsAttemptedOnce(t *testing.T) {
	var posts int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		if atomic.AddInt32(&posts, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"id":"recDup","fields":{}}`)
	})

	_, err := client.Create(context.Background(), "Status Notes", tabular.Fields{"Notes": "Shipped v2"})

	require.Error(t, err, "a lost write response must not be replayed")
	assert.Equal(t, int32(1), atomic.LoadInt32(&posts))
}

func TestUpdate_NotFound(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"NOT_FOUND"}`)
	})

	err := client.Update(context.Background(), "Submitted Requests", "recX", tabular.Fields{"Status Summary Status": "Approved"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "404 is not retried")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Type)
}

func TestCreate_EncodesLinksWithTypecast(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body struct {
			Fields   map[string]any `json:"fields"`
			Typecast bool           `json:"typecast"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.True(t, body.Typecast)
		assert.Equal(t, []any{"recProject"}, body.Fields["Intake ID"])
		assert.Equal(t, []any{"I-1"}, body.Fields["Fallback"])
		assert.Equal(t, "Planned Action", body.Fields["Note Category"])

		_, _ = io.WriteString(w, `{"id":"recNew","createdTime":"2024-01-17T10:00:00.000Z","fields":{"Notes":"x"}}`)
	})

	rec, err := client.Create(context.Background(), "Status Notes", tabular.Fields{
		"Intake ID":     []tabular.LinkValue{{RecordID: "recProject", Name: "I-1"}},
		"Fallback":      tabular.LinkValue{Name: "I-1"},
		"Note Category": "Planned Action",
	})
	require.NoError(t, err)
	assert.Equal(t, "recNew", rec.ID)
}

func TestCreate_ValidationErrorIsPermanent(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"error":{"type":"INVALID_VALUE_FOR_COLUMN","message":"Field \"Intake ID\" cannot accept the provided value"}}`)
	})

	_, err := client.Create(context.Background(), "Status Notes", tabular.Fields{"Notes": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_VALUE_FOR_COLUMN")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}
