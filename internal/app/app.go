// internal/app/app.go
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/markdave123-py/Lumen/internal/api/mcptools"
	"github.com/markdave123-py/Lumen/internal/config"
	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/core/llm"
	"github.com/markdave123-py/Lumen/internal/core/metrics"
	ocrengine "github.com/markdave123-py/Lumen/internal/core/ocr-engine"
	pdfparser "github.com/markdave123-py/Lumen/internal/core/pdf-parser"
	"github.com/markdave123-py/Lumen/internal/services"
)

const version = "0.1.0"

type App struct {
	Ingestor  *ingestion_engine.DocumentIngestor
	Analysis  *services.AnalysisService
	Metrics   *metrics.PipelineMetrics
	MCPServer *mcp.Server
	Server    *Server

	llm      *llm.GeminiLLM
	fileRoot string
	logger   *slog.Logger
}

func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	parser, err := newPDFParser(cfg.PDFBackend)
	if err != nil {
		return nil, err
	}
	logger.Info("pdf parser ready", "backend", cfg.PDFBackend)

	a := &App{fileRoot: cfg.MCPFileRoot, logger: logger}

	// Without a key the service still starts; each analysis then fails on its own task.
	var provider core.LLMProvider
	if cfg.AIAPIKey != "" {
		a.llm, err = llm.NewGeminiLLM(ctx, cfg.AIAPIKey, llm.GenerationOptions{
			Model:           cfg.GenModel,
			Temperature:     float32(cfg.GenTemperature),
			MaxOutputTokens: int32(cfg.GenMaxTokens),
		})
		if err != nil {
			return nil, fmt.Errorf("couldn't initialize the llm, %w", err)
		}
		provider = a.llm
		logger.Info("llm ready", "model", cfg.GenModel)
	}
	a.Analysis = services.NewAnalysisService(provider, logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.Metrics = metrics.NewPipelineMetrics(reg)

	structured := ingestion_engine.NewStructuredExtractor(parser, logger)
	ocr := ingestion_engine.NewOCRExtractor(ocrengine.NewTesseractEngine(), cfg.OCRLanguage, cfg.MaxImagePixels)

	a.Ingestor = ingestion_engine.NewDocumentIngestor(structured, ocr, a.Analysis,
		&ingestion_engine.IngestConfig{PreviewMaxDim: cfg.PreviewMaxDim, MaxImagePixels: cfg.MaxImagePixels},
		ingestion_engine.WithLogger(logger),
		ingestion_engine.WithObserver(a.Metrics),
	)

	// Served on the unauthenticated /mcp route, so it never reads host files.
	a.MCPServer = a.newMCPServer()

	a.Server = NewServer(cfg, a.Ingestor, a.Analysis, a.Metrics, reg, a.MCPServer, logger)
	return a, nil
}

func newPDFParser(backend string) (core.PDFParser, error) {
	switch backend {
	case "", "native":
		return pdfparser.NewNativeParser(), nil
	case "docconv":
		return pdfparser.NewDocconvParser(), nil
	default:
		return nil, fmt.Errorf("unknown PDF_BACKEND %q (want native or docconv)", backend)
	}
}

func (a *App) newMCPServer(opts ...mcptools.Option) *mcp.Server {
	srv := mcp.NewServer(&mcp.Implementation{Name: "lumen", Version: version}, nil)
	mcptools.New(a.Ingestor, a.Analysis, opts...).Register(srv)
	return srv
}

// ServeStdio runs the MCP tools on stdin/stdout until ctx is done or the client disconnects.
// The local client may also submit files under MCP_FILE_ROOT.
func (a *App) ServeStdio(ctx context.Context) error {
	var opts []mcptools.Option
	if a.fileRoot != "" {
		opts = append(opts, mcptools.WithFileRoot(a.fileRoot))
	}
	return a.newMCPServer(opts...).Run(ctx, &mcp.StdioTransport{})
}

// Close waits for in-flight task chains and releases the model client.
func (a *App) Close() {
	a.logger.Info("waiting for in-flight tasks")
	a.Ingestor.Wait()
	if a.llm != nil {
		_ = a.llm.Close()
	}
}
