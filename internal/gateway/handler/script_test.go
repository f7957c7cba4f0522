package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"podscript/internal/dialogue"
	"podscript/internal/gateway/handler"
	"podscript/internal/gateway/repository/blob"
	"podscript/internal/gateway/repository/record"
	"podscript/internal/gateway/server"
	"podscript/internal/gateway/service/scripts"
)

type stubExtractor struct {
	text string
	err  error
}

func (s *stubExtractor) ExtractURL(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

type stubGenerator struct {
	result *dialogue.Result
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, _ string, _ []string, onProgress dialogue.Progress) (*dialogue.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	if onProgress != nil {
		for i, l := range s.result.Lines {
			onProgress(i+1, l)
		}
	}
	return s.result, nil
}

func newTestServer(t *testing.T, ex scripts.Extractor, gen scripts.Generator) *httptest.Server {
	t.Helper()
	svc := scripts.NewService(ex, gen, blob.NewMemoryStore(), record.NewMemoryStore(), 0)
	srv := httptest.NewServer(server.NewMux(handler.NewScriptHandler(svc)))
	t.Cleanup(srv.Close)
	return srv
}

func okGenerator() *stubGenerator {
	return &stubGenerator{result: &dialogue.Result{
		Lines: []dialogue.Line{{Persona: "Ana", Text: "hi"}, {Persona: "Bruno", Text: "hello"}},
		SSML:  []byte("<speak>hi</speak>"),
	}}
}

func postScript(t *testing.T, srv *httptest.Server, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(srv.URL+"/v1/scripts", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

const validBody = `{"pdf_url":"https://example.com/a.pdf","name":"My Doc","personas":["Ana","Bruno"]}`

func TestGenerateEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "doc"}, okGenerator())

	resp := postScript(t, srv, validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var out struct {
		Script struct {
			ID         int64    `json:"id"`
			Name       string   `json:"name"`
			StorageKey string   `json:"storage_key"`
			Personas   []string `json:"personas"`
		} `json:"script"`
		Truncated bool `json:"truncated"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Equal(t, "My Doc", out.Script.Name)
	require.Equal(t, []string{"Ana", "Bruno"}, out.Script.Personas)
	require.True(t, strings.HasPrefix(out.Script.StorageKey, "my-doc-"))
	require.False(t, out.Truncated)

	// content endpoint serves the stored SSML
	cresp, err := http.Get(fmt.Sprintf("%s/v1/scripts/%d/content", srv.URL, out.Script.ID))
	require.NoError(t, err)
	defer cresp.Body.Close()
	require.Equal(t, http.StatusOK, cresp.StatusCode)
	require.Equal(t, "application/ssml+xml", cresp.Header.Get("Content-Type"))
}

func TestGenerateEndpointValidation(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "doc"}, okGenerator())

	resp := postScript(t, srv, `{"pdf_url":"","name":"x","personas":["a","b"]}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = postScript(t, srv, `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateEndpointExtractionFailure(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{err: fmt.Errorf("fetch failed")}, okGenerator())

	resp := postScript(t, srv, validBody)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListEndpoint(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "doc"}, okGenerator())

	resp := postScript(t, srv, validBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	lresp, err := http.Get(srv.URL + "/v1/scripts")
	require.NoError(t, err)
	defer lresp.Body.Close()
	require.Equal(t, http.StatusOK, lresp.StatusCode)

	var out struct {
		Scripts []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"scripts"`
	}
	require.NoError(t, json.NewDecoder(lresp.Body).Decode(&out))
	require.Len(t, out.Scripts, 1)
	require.Equal(t, "My Doc", out.Scripts[0].Name)
}

func TestGetEndpointNotFound(t *testing.T) {
	srv := newTestServer(t, &stubExtractor{text: "doc"}, okGenerator())

	resp, err := http.Get(srv.URL + "/v1/scripts/999")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp2, err := http.Get(srv.URL + "/v1/scripts/banana")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}
