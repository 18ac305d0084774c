// Package mcptools exposes the task pipeline as MCP tools.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/markdave123-py/Lumen/internal/core"
	"github.com/markdave123-py/Lumen/internal/core/ingestion_engine"
	"github.com/markdave123-py/Lumen/internal/core/validation"
	"github.com/markdave123-py/Lumen/internal/models"
)

// ErrOutsideRoot is returned when a submitted path resolves outside the file root.
var ErrOutsideRoot = errors.New("path is outside the allowed file root")

// Tools binds the ingestor (and optionally a summarizer) to MCP tool handlers.
type Tools struct {
	ingestor   ingestion_engine.Ingestor
	summarizer core.Summarizer
	fileRoot   string
}

type Option func(*Tools)

// WithFileRoot enables lumen_submit_file, confined to files under root.
// Only servers reached by a trusted local client should set it.
func WithFileRoot(root string) Option {
	return func(t *Tools) { t.fileRoot = root }
}

func New(ing ingestion_engine.Ingestor, s core.Summarizer, opts ...Option) *Tools {
	t := &Tools{ingestor: ing, summarizer: s}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Register adds every lumen_* tool to srv.
func (t *Tools) Register(srv *mcp.Server) {
	register(srv, &mcp.Tool{
		Name:        "lumen_list_tasks",
		Description: "List every file task with its validation, extraction and analysis state.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}, t.listTasks)

	register(srv, &mcp.Tool{
		Name:        "lumen_get_task",
		Description: "Get one file task by id.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Task id"},
		}, []string{"id"}),
	}, t.getTask)

	register(srv, &mcp.Tool{
		Name:        "lumen_discard_task",
		Description: "Discard a file task. Results still in flight for it are dropped.",
		InputSchema: inputSchema(map[string]any{
			"id": map[string]any{"type": "string", "description": "Task id"},
		}, []string{"id"}),
	}, t.discardTask)

	if t.fileRoot != "" {
		register(srv, &mcp.Tool{
			Name:        "lumen_submit_file",
			Description: "Submit a local PDF or image file for extraction and analysis.",
			InputSchema: inputSchema(map[string]any{
				"path":       map[string]any{"type": "string", "description": "File path to submit, relative to the file root"},
				"media_type": map[string]any{"type": "string", "description": "Override the detected media type"},
			}, []string{"path"}),
		}, t.submitFile)
	}

	if t.summarizer != nil {
		register(srv, &mcp.Tool{
			Name:        "lumen_summarize_task",
			Description: "Summarize the extracted text of a task in 2-3 sentences.",
			InputSchema: inputSchema(map[string]any{
				"id": map[string]any{"type": "string", "description": "Task id"},
			}, []string{"id"}),
		}, t.summarizeTask)
	}
}

type handlerFunc func(ctx context.Context, args json.RawMessage) (any, error)

// register wraps fn so decode and endpoint errors become tool errors, not protocol errors.
func register(srv *mcp.Server, tool *mcp.Tool, fn handlerFunc) {
	srv.AddTool(tool, func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		resp, err := fn(ctx, req.Params.Arguments)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(err)
			return &res, nil
		}

		data, err := json.Marshal(resp)
		if err != nil {
			var res mcp.CallToolResult
			res.SetError(fmt.Errorf("marshal: %w", err))
			return &res, nil
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: string(data)}},
		}, nil
	})
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	s := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		s["required"] = required
	}
	return s
}

func decode(args json.RawMessage, v any) error {
	if len(args) == 0 {
		return nil
	}
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

type idReq struct {
	ID string `json:"id"`
}

func decodeID(args json.RawMessage) (string, error) {
	var r idReq
	if err := decode(args, &r); err != nil {
		return "", err
	}
	if r.ID == "" {
		return "", errors.New("id is required")
	}
	return r.ID, nil
}

func (t *Tools) listTasks(context.Context, json.RawMessage) (any, error) {
	return map[string]any{"tasks": t.ingestor.Snapshot()}, nil
}

func (t *Tools) getTask(_ context.Context, args json.RawMessage) (any, error) {
	id, err := decodeID(args)
	if err != nil {
		return nil, err
	}
	task, ok := t.ingestor.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return task, nil
}

func (t *Tools) discardTask(_ context.Context, args json.RawMessage) (any, error) {
	id, err := decodeID(args)
	if err != nil {
		return nil, err
	}
	if !t.ingestor.Discard(id) {
		return nil, fmt.Errorf("task %s not found", id)
	}
	return map[string]any{"id": id, "discarded": true}, nil
}

type submitReq struct {
	Path      string `json:"path"`
	MediaType string `json:"media_type"`
}

func (t *Tools) submitFile(ctx context.Context, args json.RawMessage) (any, error) {
	var r submitReq
	if err := decode(args, &r); err != nil {
		return nil, err
	}
	if r.Path == "" {
		return nil, errors.New("path is required")
	}

	path, err := confine(t.fileRoot, r.Path)
	if err != nil {
		return nil, err
	}
	f, err := readLocalFile(path, r.MediaType)
	if err != nil {
		return nil, err
	}
	tasks := t.ingestor.Submit(ctx, []models.RawFile{f})
	return tasks[0], nil
}

// confine resolves path (relative paths are taken from root) with symlinks
// followed and rejects anything that lands outside root.
func confine(root, path string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("file root: %w", err)
	}
	if absRoot, err = filepath.EvalSymlinks(absRoot); err != nil {
		return "", fmt.Errorf("file root: %w", err)
	}

	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	rel, err := filepath.Rel(absRoot, resolved)
	if err != nil || filepath.IsAbs(rel) || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return resolved, nil
}

// readLocalFile stats path and reads it only when it fits the upload limit.
func readLocalFile(path, mediaType string) (models.RawFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return models.RawFile{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return models.RawFile{}, fmt.Errorf("%s is a directory", path)
	}

	f := models.RawFile{Name: filepath.Base(path), MediaType: mediaType, SizeBytes: info.Size()}
	if info.Size() <= validation.MaxFileSizeBytes {
		if f.Bytes, err = os.ReadFile(path); err != nil {
			return models.RawFile{}, fmt.Errorf("read %s: %w", path, err)
		}
	}
	if f.MediaType == "" {
		f.MediaType = detectMediaType(path, f.Bytes)
	}
	return f, nil
}

func detectMediaType(path string, data []byte) string {
	if mt := mime.TypeByExtension(filepath.Ext(path)); mt != "" {
		return mt
	}
	return http.DetectContentType(data)
}

func (t *Tools) summarizeTask(ctx context.Context, args json.RawMessage) (any, error) {
	id, err := decodeID(args)
	if err != nil {
		return nil, err
	}
	task, ok := t.ingestor.Get(id)
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	if task.Extraction.Status != models.StatusSucceeded || task.Extraction.Text == "" {
		return nil, fmt.Errorf("task %s has no extracted text", id)
	}
	summary, err := t.summarizer.Summarize(ctx, task.Extraction.Text, task.Name)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "summary": summary}, nil
}
