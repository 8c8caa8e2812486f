package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/trade_journal/internal/infrastructure/metrics"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/infrastructure/tabular"
	"github.com/vitos/trade_journal/internal/mcp"
	"github.com/vitos/trade_journal/internal/usecase"
	"go.uber.org/zap"
)

const tradesCSV = "Id,ContractName,EnteredAt,EntryPrice,Size,Type,PnL,Fees\n" +
	"1,ES,2024-03-01T14:30:00Z,5100,1,Long,100,1\n" +
	"2,ES,2024-03-01T15:30:00Z,5100,1,Long,-50,1\n" +
	"3,NQ,2024-03-02T16:30:00Z,18000,1,Long,10,\n"

func newTestServer(t *testing.T, origins ...string) *Server {
	t.Helper()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return newServerWith(t, "", origins)
}

// newServerWith wires the server the way cmd/journal does: file loads are
// only allowed once a load directory is configured.
func newServerWith(t *testing.T, baseDir string, origins []string) *Server {
	t.Helper()
	m := metrics.New()
	svc := usecase.NewJournalService(storage.NewMemoryStore(), tabular.NewReader(baseDir, 0), m, zap.NewNop())

	fileLoads := baseDir != ""
	var opts []mcp.Option
	if !fileLoads {
		opts = append(opts, mcp.WithoutFileLoads())
	}
	return NewServer(0, origins, fileLoads, svc, mcp.NewServer(svc, m, zap.NewNop(), opts...), m, zap.NewNop())
}

func do(t *testing.T, s *Server, method, target, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func loadDataset(t *testing.T, s *Server) string {
	t.Helper()
	body, err := json.Marshal(map[string]string{"csvText": tradesCSV})
	require.NoError(t, err)

	rec := do(t, s, http.MethodPost, "/api/datasets", "application/json", string(body))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res usecase.LoadTradesResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 3, res.RowCount)
	return res.DatasetID
}

func TestLoadAndDescribe(t *testing.T) {
	s := newTestServer(t)
	id := loadDataset(t, s)

	rec := do(t, s, http.MethodGet, "/api/datasets/"+id, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var info usecase.DatasetInfoResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, id, info.DatasetID)
	assert.Equal(t, 2, info.SymbolsCount)

	rec = do(t, s, http.MethodGet, "/api/datasets", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"datasetIds":["`+id+`"]}`, rec.Body.String())
}

func TestLoadRawCSV(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodPost, "/api/datasets", "text/csv; charset=utf-8", tradesCSV)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"rowCount":3`)
}

func TestLoadErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"not json", "{", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"no source", "{}", http.StatusBadRequest, "VALIDATION_ERROR"},
		{"path without load dir", `{"path":"/etc/passwd"}`, http.StatusBadRequest, "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, s, http.MethodPost, "/api/datasets", "application/json", tt.body)
			assert.Equal(t, tt.status, rec.Code)

			var res struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.code, res.Error.Code)
		})
	}
}

func TestDatasetNotFound(t *testing.T) {
	s := newTestServer(t)

	for _, target := range []string{"/api/datasets/ghost", "/api/datasets/ghost/pnl"} {
		rec := do(t, s, http.MethodGet, target, "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code, target)
		assert.JSONEq(t, `{"error":{"code":"DATASET_NOT_FOUND","message":"No dataset found for datasetId=\"ghost\". Run load_trades first."}}`,
			rec.Body.String(), target)
	}
}

func TestPnlSummary(t *testing.T) {
	s := newTestServer(t)
	id := loadDataset(t, s)

	rec := do(t, s, http.MethodGet, "/api/datasets/"+id+"/pnl?groupBy=symbol&topN=5&from=2024-03-01&to=2024-03-01T23:59:59Z", "", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res usecase.PnlSummaryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, 2, res.Overall.Count)
	assert.Equal(t, 50.0, res.Overall.PnL)
	require.Len(t, res.Breakdown, 1)
	assert.Equal(t, "ES", res.Breakdown[0].Key)
	require.NotNil(t, res.Filter.To)
	assert.Equal(t, "2024-03-01T23:59:59.000Z", *res.Filter.To)
}

func TestPnlSummaryValidation(t *testing.T) {
	s := newTestServer(t)
	id := loadDataset(t, s)

	for _, query := range []string{"topN=abc", "topN=0", "topN=51", "groupBy=venue"} {
		rec := do(t, s, http.MethodGet, "/api/datasets/"+id+"/pnl?"+query, "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
		assert.Contains(t, rec.Body.String(), "VALIDATION_ERROR", query)
	}
}

func TestStatusAndMetrics(t *testing.T) {
	s := newTestServer(t)
	id := loadDataset(t, s)
	do(t, s, http.MethodGet, "/api/datasets/"+id, "", "")

	rec := do(t, s, http.MethodGet, "/status", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"datasets":1`)

	rec = do(t, s, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `trade_journal_tool_calls_total{outcome="ok",tool="dataset_info"} 1`)
	assert.Contains(t, body, "trade_journal_datasets_loaded_total 1")
	assert.Contains(t, body, "trade_journal_rows_loaded_total 3")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(t)

	rec := do(t, s, http.MethodDelete, "/api/datasets", "", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCORS(t *testing.T) {
	s := newTestServer(t, "http://desk.local")

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("Origin", "http://desk.local")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, "http://desk.local", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("Origin", "http://elsewhere.local")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestWebsocketRPC(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// notifications get no reply, so the next message read answers the ping
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","method":"notifications/initialized"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"jsonrpc":"2.0","id":9,"method":"ping"}`)))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":9,"result":{}}`, string(msg))

	call := `{"jsonrpc":"2.0","id":10,"method":"tools/call","params":{"name":"hello","arguments":{"who":"ws"}}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(call)))
	_, msg, err = conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"jsonrpc":"2.0","id":10,"result":{"content":[{"type":"text","text":"hello, ws"}]}}`, string(msg))
}

func TestLoadFromBaseDir(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "exports")
	require.NoError(t, os.Mkdir(base, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(base, "trades.csv"), []byte(tradesCSV), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.csv"), []byte("SECRET_TOKEN=abc123\n"), 0o644))
	s := newServerWith(t, base, nil)

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"inside", "trades.csv", http.StatusCreated},
		{"traversal", "../../../../../" + filepath.Join(root, "secret.csv"), http.StatusBadRequest},
		{"absolute outside", filepath.Join(root, "secret.csv"), http.StatusBadRequest},
		{"missing inside", "nope.csv", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(map[string]string{"path": tt.path})
			require.NoError(t, err)

			rec := do(t, s, http.MethodPost, "/api/datasets", "application/json", string(body))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotContains(t, rec.Body.String(), "SECRET_TOKEN")
		})
	}
}

func TestNoOriginsSendsNoCORSHeaders(t *testing.T) {
	s := newServerWith(t, "", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/datasets", nil)
	req.Header.Set("Origin", "http://evil.local")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))

	cross := httptest.NewRequest(http.MethodGet, "/ws", nil)
	cross.Host = "journal.local:8080"
	cross.Header.Set("Origin", "http://evil.local")
	assert.False(t, s.checkOrigin(cross))

	same := httptest.NewRequest(http.MethodGet, "/ws", nil)
	same.Host = "journal.local:8080"
	same.Header.Set("Origin", "http://journal.local:8080")
	assert.True(t, s.checkOrigin(same))
}

func TestWebsocketRefusesPathWithoutLoadDir(t *testing.T) {
	s := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(ts.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	call := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"load_trades","arguments":{"path":"/etc/hostname"}}}`
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(call)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var resp struct {
		Result mcp.CallToolResult `json:"result"`
	}
	require.NoError(t, json.Unmarshal(msg, &resp))
	assert.True(t, resp.Result.IsError)
	require.Len(t, resp.Result.Content, 1)
	assert.Contains(t, resp.Result.Content[0].Text, "path: file loads are disabled")
}
