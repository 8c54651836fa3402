package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	multipole "github.com/njchilds90/gomultipole"
	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/internal/logger"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc, err := multipole.NewService(nil, nil)
	require.NoError(t, err)
	return New(Config{ListenAddr: ":0"}, svc, logger.Nop())
}

func do(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestTool_QTensor(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/tool", `{"tool":"q_tensor","params":{"order":2,"indices":["a","b"]}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp multipole.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "xa(a)*xa(b)")
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))
}

func TestTool_ErrorIsReportedInBody(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodPost, "/tool", `{"tool":"nonexistent","params":{}}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp multipole.ToolResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown tool: nonexistent", resp.Error)
}

func TestTool_RejectsBadRequests(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name string
		body string
		want string
	}{
		{"malformed", `{"tool":`, ""},
		{"unknown field", `{"tool":"expand","params":{},"extra":1}`, "unknown field"},
		{"trailing data", `{"tool":"tool_spec","params":{}} {}`, "trailing data"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := do(s, http.MethodPost, "/tool", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), tc.want)
		})
	}
}

func TestTool_BodyLimit(t *testing.T) {
	s := newTestServer(t)
	body := `{"tool":"expand","params":{"pad":"` + strings.Repeat("x", maxBodyBytes) + `"}}`
	w := do(s, http.MethodPost, "/tool", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTool_MethodNotAllowed(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/tool", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRequestID_Propagated(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(requestIDHeader))
}

func TestSchema(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/schema", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, multipole.ToolSpec(), w.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := do(s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, multipole.Version, body["version"])
}

func TestMetrics_CountToolCalls(t *testing.T) {
	s := newTestServer(t)
	do(s, http.MethodPost, "/tool", `{"tool":"taylor_term","params":{"order":1}}`)
	do(s, http.MethodPost, "/tool", `{"tool":"bogus","params":{}}`)

	w := do(s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	out := w.Body.String()
	assert.Contains(t, out, `multipole_tool_calls_total{outcome="ok",tool="taylor_term"} 1`)
	assert.Contains(t, out, `multipole_tool_calls_total{outcome="error",tool="unknown"} 1`)
	assert.Contains(t, out, `multipole_http_requests_total{route="/tool",status="200"} 2`)
}

func TestRecovery(t *testing.T) {
	var buf bytes.Buffer
	svc, err := multipole.NewService(nil, nil)
	require.NoError(t, err)
	s := New(Config{}, svc, logger.New(logger.WithFormat(logger.FormatJSON), logger.WithWriter(&buf)))
	s.engine.GET("/boom", func(*gin.Context) { panic("boom") })

	w := do(s, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, w.Body.String())
	assert.Contains(t, buf.String(), "panic in handler")
}

func TestSetService_AppliesNewLimits(t *testing.T) {
	s := newTestServer(t)
	body := `{"tool":"q_tensor","params":{"order":3}}`

	var resp multipole.ToolResponse
	require.NoError(t, json.Unmarshal(do(s, http.MethodPost, "/tool", body).Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)

	cfg := config.NewDefaultConfig()
	cfg.Engine.MaxOrder = 2
	svc, err := multipole.NewService(cfg, nil)
	require.NoError(t, err)
	s.SetService(svc)

	resp = multipole.ToolResponse{}
	require.NoError(t, json.Unmarshal(do(s, http.MethodPost, "/tool", body).Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, multipole.ErrOrderTooLarge.Error())
}
