package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/markdave123-py/Lumen/internal/api/mcptools"
	"github.com/markdave123-py/Lumen/internal/config"
	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/core/metrics"
	"github.com/markdave123-py/Lumen/internal/models"
	"github.com/markdave123-py/Lumen/internal/services"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type staticExtractor string

func (s staticExtractor) Extract(_ context.Context, _ []byte, onProgress core.ProgressFunc) (string, error) {
	onProgress(100)
	return string(s), nil
}

type echoAnalyzer struct{}

func (echoAnalyzer) Analyze(_ context.Context, text, label string) (*models.Report, error) {
	return &models.Report{Analysis: "analysis of " + text, FileName: label}, nil
}

func (echoAnalyzer) Summarize(_ context.Context, text, _ string) (string, error) {
	return "summary", nil
}

func testRouter(t *testing.T) (http.Handler, *ingestion_engine.DocumentIngestor) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(reg)
	ing := ingestion_engine.NewDocumentIngestor(staticExtractor("pdf text"), staticExtractor(""), echoAnalyzer{},
		&ingestion_engine.IngestConfig{}, ingestion_engine.WithLogger(quietLogger), ingestion_engine.WithObserver(m))
	cfg := &config.Config{AllowedOrigins: []string{"http://localhost:5173"}, MaxUploadBytes: 1 << 20}
	return NewRouter(cfg, ing, echoAnalyzer{}, m, reg, nil, quietLogger), ing
}

func upload(t *testing.T, h http.Handler, name, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="files"; filename="`+name+`"`)
	hdr.Set("Content-Type", contentType)
	part, _ := mw.CreatePart(hdr)
	_, _ = part.Write([]byte(body))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRouter_UploadThroughAnalysis(t *testing.T) {
	h, ing := testRouter(t)

	rec := upload(t, h, "doc.pdf", "application/pdf", "%PDF-1.4")
	if rec.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body)
	}
	var resp struct {
		Tasks []models.FileTask `json:"tasks"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil || len(resp.Tasks) != 1 {
		t.Fatalf("decode: %v %+v", err, resp)
	}
	ing.Wait()

	id := resp.Tasks[0].ID
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks/"+id, nil))
	var task models.FileTask
	if err := json.NewDecoder(rec.Body).Decode(&task); err != nil {
		t.Fatal(err)
	}
	if task.Analysis.Status != models.StatusSucceeded || task.Analysis.Report.Analysis != "analysis of pdf text" {
		t.Errorf("task = %+v", task)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/tasks/"+id+"/summary", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("summary status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/tasks/"+id, nil))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

func TestRouter_RejectedFileStillListed(t *testing.T) {
	h, _ := testRouter(t)

	if rec := upload(t, h, "notes.txt", "text/plain", "hello"); rec.Code != http.StatusAccepted {
		t.Fatalf("upload status = %d", rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/tasks", nil))
	if !strings.Contains(rec.Body.String(), `"error_reason":"unsupported type"`) {
		t.Errorf("list = %s", rec.Body)
	}
}

func TestRouter_UploadOverLimit(t *testing.T) {
	h, _ := testRouter(t)

	rec := upload(t, h, "big.pdf", "application/pdf", strings.Repeat("x", 2<<20))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("status = %d, want 413", rec.Code)
	}
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	h, ing := testRouter(t)
	upload(t, h, "doc.pdf", "application/pdf", "%PDF-1.4")
	ing.Wait()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{"lumen_tasks_submitted_total", "lumen_extractions_total", "lumen_http_requests_total"} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics missing %s", want)
		}
	}
}

func TestNewPDFParser(t *testing.T) {
	for _, backend := range []string{"", "native", "docconv"} {
		if _, err := newPDFParser(backend); err != nil {
			t.Errorf("newPDFParser(%q): %v", backend, err)
		}
	}
	if _, err := newPDFParser("mupdf"); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func listToolNames(t *testing.T, transport mcp.Transport) map[string]bool {
	t.Helper()
	ctx := context.Background()
	client := mcp.NewClient(&mcp.Implementation{Name: "lumen-test", Version: version}, nil)
	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	defer session.Close()

	res, err := session.ListTools(ctx, nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	names := make(map[string]bool, len(res.Tools))
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	return names
}

func TestMCP_FileSubmissionOnlyOnStdioServer(t *testing.T) {
	ing := ingestion_engine.NewDocumentIngestor(staticExtractor(""), staticExtractor(""), echoAnalyzer{},
		&ingestion_engine.IngestConfig{}, ingestion_engine.WithLogger(quietLogger))
	a := &App{Ingestor: ing, Analysis: services.NewAnalysisService(nil, quietLogger), fileRoot: t.TempDir(), logger: quietLogger}
	a.MCPServer = a.newMCPServer()

	reg := prometheus.NewRegistry()
	cfg := &config.Config{MaxUploadBytes: 1 << 20}
	ts := httptest.NewServer(NewRouter(cfg, ing, a.Analysis, metrics.NewPipelineMetrics(reg), reg, a.MCPServer, quietLogger))
	defer ts.Close()

	httpTools := listToolNames(t, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"})
	if !httpTools["lumen_list_tasks"] {
		t.Errorf("http tools = %v, want lumen_list_tasks", httpTools)
	}
	if httpTools["lumen_submit_file"] {
		t.Error("lumen_submit_file must not be served over http")
	}

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = a.newMCPServer(mcptools.WithFileRoot(a.fileRoot)).Run(ctx, serverT) }()
	if !listToolNames(t, clientT)["lumen_submit_file"] {
		t.Error("local server should offer lumen_submit_file")
	}
}
