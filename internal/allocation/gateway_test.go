package allocation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(content string) string {
	reply := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"content": content}},
		},
	}
	b, _ := json.Marshal(reply)
	return string(b)
}

func suggestReq() SuggestionRequest {
	return SuggestionRequest{
		BranchIDs:               []int64{10},
		Products:                []ProductVolume{{ProductID: 1, VolumeM3: 0.02}},
		TargetVolumePerBranchM3: 8.4,
	}
}

func TestGatewaySuggestParsesCleanJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.False(t, req.Stream)

		w.Write([]byte(chatReply(`{"allocations":[{"branch_id":10,"product_id":1,"suggested_qty":42}]}`)))
	}))
	defer srv.Close()

	g := NewGateway(testLogger(), srv.URL, "secret", "", time.Second)
	got, err := g.Suggest(context.Background(), suggestReq())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 42, got[0].SuggestedQty)
}

func TestGatewaySuggestExtractsJSONFromChatter(t *testing.T) {
	content := "Sure! Here is the plan:\n```json\n" +
		`{"allocations":[{"branch_id":10,"product_id":1,"suggested_qty":7}]}` +
		"\n```\nLet me know if you need anything else."
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(chatReply(content)))
	}))
	defer srv.Close()

	g := NewGateway(testLogger(), srv.URL, "secret", "", time.Second)
	got, err := g.Suggest(context.Background(), suggestReq())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].SuggestedQty)
}

func TestGatewaySuggestNonJSONContentFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(chatReply("I cannot help with that.")))
	}))
	defer srv.Close()

	g := NewGateway(testLogger(), srv.URL, "secret", "", time.Second)
	_, err := g.Suggest(context.Background(), suggestReq())
	require.Error(t, err)
}

func TestGatewaySuggestErrorStatusFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	g := NewGateway(testLogger(), srv.URL, "secret", "", time.Second)
	_, err := g.Suggest(context.Background(), suggestReq())
	require.Error(t, err)
}

func TestGatewaySuggestTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	g := NewGateway(testLogger(), srv.URL, "secret", "", 50*time.Millisecond)

	start := time.Now()
	_, err := g.Suggest(context.Background(), suggestReq())
	require.Error(t, err)
	assert.Less(t, time.Since(start), time.Second, "call must be bounded by the timeout")
}

func TestGatewaySuggestWithoutTokenFails(t *testing.T) {
	g := NewGateway(testLogger(), "http://127.0.0.1:0", "", "", time.Second)
	_, err := g.Suggest(context.Background(), suggestReq())
	require.Error(t, err)
}
