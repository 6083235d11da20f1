package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/vecstore"
	"github.com/w-h-a/vecstore/kv/memory"
)

type stubEmbedder struct {
	vectors map[string][]float32
}

func (s *stubEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for n, text := range texts {
		vector, ok := s.vectors[text]
		if !ok {
			return nil, errors.New("no vector for " + text)
		}
		out[n] = vector
	}
	return out, nil
}

type stubGenerator struct {
	response string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return s.response, nil
}

func newTestServer(t *testing.T) (*Server, http.Handler) {
	t.Helper()

	embed := &stubEmbedder{vectors: map[string][]float32{
		"dogs chase balls":   {1, 0, 0},
		"cats chase mice":    {0, 1, 0},
		"tell me about dogs": {0.95, 0.05, 0},
	}}

	toolkit := vecstore.New(
		memory.NewKV(),
		embed,
		&stubGenerator{response: "they love it"},
		vecstore.WithDimensions(3),
		vecstore.WithCacheThreshold(0.9),
	)

	server := NewServer(toolkit)

	return server, server.routes()
}

func doJSON(t *testing.T, handler http.Handler, method string, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	return rec
}

func TestDocumentsSearchAndQuery(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/documents", `{"texts":["dogs chase balls","cats chase mice"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var added struct {
		Ids []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	assert.Len(t, added.Ids, 2)

	rec = doJSON(t, handler, http.MethodPost, "/api/search", `{"query":"tell me about dogs","k":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var searched struct {
		Documents []struct {
			Text  string  `json:"text"`
			Score float64 `json:"score"`
		} `json:"documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &searched))
	require.Len(t, searched.Documents, 1)
	assert.Equal(t, "dogs chase balls", searched.Documents[0].Text)

	rec = doJSON(t, handler, http.MethodPost, "/api/query", `{"query":"tell me about dogs","k":1}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var result struct {
		Query    string `json:"query"`
		Response string `json:"response"`
		Sources  []struct {
			Text string `json:"text"`
		} `json:"source_documents"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "tell me about dogs", result.Query)
	assert.Equal(t, "they love it", result.Response)
	require.Len(t, result.Sources, 1)
}

func TestDocumentsRejectsBadJSON(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/documents", `{"texts":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCacheEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/cache?query=tell+me+about+dogs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/cache", `{"query":"tell me about dogs","response":"they love it"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/cache?query=tell+me+about+dogs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var entry struct {
		Query    string `json:"query"`
		Response string `json:"response"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entry))
	assert.Equal(t, "tell me about dogs", entry.Query)
	assert.Equal(t, "they love it", entry.Response)

	rec = doJSON(t, handler, http.MethodDelete, "/api/cache?query=tell+me+about+dogs", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/cache?query=tell+me+about+dogs", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSessionEndpoints(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions", `{"metadata":{"topic":"vehicles"}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created struct {
		SessionId string `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.SessionId)

	rec = doJSON(t, handler, http.MethodPost, "/api/sessions/"+created.SessionId+"/messages", `{"role":"user","content":"hi"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodPost, "/api/sessions/"+created.SessionId+"/messages", `{"role":"assistant","content":"hello"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/"+created.SessionId+"/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var history struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history.Messages, 2)
	assert.Equal(t, "user", history.Messages[0].Role)
	assert.Equal(t, "hi", history.Messages[0].Content)
	assert.Equal(t, "assistant", history.Messages[1].Role)

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		SessionIds []string `json:"session_ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	assert.Contains(t, listed.SessionIds, created.SessionId)

	rec = doJSON(t, handler, http.MethodDelete, "/api/sessions/"+created.SessionId, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, handler, http.MethodGet, "/api/sessions/"+created.SessionId, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddMessageToMissingSession(t *testing.T) {
	_, handler := newTestServer(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/sessions/nope/messages", `{"role":"user","content":"hi"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMiddlewareWrapsRoutes(t *testing.T) {
	embed := &stubEmbedder{vectors: map[string][]float32{}}
	toolkit := vecstore.New(memory.NewKV(), embed, &stubGenerator{}, vecstore.WithDimensions(3))

	seen := false
	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = true
			next.ServeHTTP(w, r)
		})
	}

	server := NewServer(toolkit, WithMiddleware(mw))
	handler := server.routes()

	rec := doJSON(t, handler, http.MethodGet, "/api/sessions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, seen)
}
