package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sha1n/docindex/internal/ingest"
)

// IndexToolName is the name the indexing tool is registered under.
const IndexToolName = "index_documents"

// PipelineRunner runs the ingestion pipeline over root.
type PipelineRunner func(ctx context.Context, root string, dryRun bool) (*ingest.Report, error)

// IndexArgument defines indexing parameters.
type IndexArgument struct {
	InputDir string `json:"input_dir" jsonschema:"Directory to scan for PDF and DOCX files"`
	DryRun   bool   `json:"dry_run,omitempty" jsonschema:"Extract documents without submitting them to the index"`
}

// IndexHandler handles the index_documents tool.
type IndexHandler struct {
	run PipelineRunner
}

// NewIndexHandler creates a new index handler.
func NewIndexHandler(run PipelineRunner) *IndexHandler {
	return &IndexHandler{run: run}
}

// Handle runs the pipeline and returns the run report.
func (h *IndexHandler) Handle(ctx context.Context, req *mcp.CallToolRequest, args IndexArgument) (*mcp.CallToolResult, any, error) {
	dir := strings.TrimSpace(args.InputDir)
	if dir == "" {
		return errorResult("input_dir cannot be empty"), nil, nil
	}

	info, err := os.Stat(dir)
	if err != nil {
		return errorResult(fmt.Sprintf("Cannot access input directory: %s", err)), nil, nil
	}
	if !info.IsDir() {
		return errorResult(fmt.Sprintf("Not a directory: %s", dir)), nil, nil
	}

	report, err := h.run(ctx, dir, args.DryRun)
	if err != nil {
		return errorResult(fmt.Sprintf("Indexing failed: %s", err)), nil, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: FormatReport(dir, report)},
		},
	}, nil, nil
}

// FormatReport renders a run report for tool output.
func FormatReport(dir string, r *ingest.Report) string {
	var sb strings.Builder

	switch {
	case r.DryRun:
		fmt.Fprintf(&sb, "Dry run: %d documents prepared from %s, nothing indexed.\n", r.Assembled, dir)
	case r.Indexed == 0:
		fmt.Fprintf(&sb, "No documents indexed from %s.\n", dir)
	default:
		fmt.Fprintf(&sb, "Indexed %d documents from %s.\n", r.Indexed, dir)
	}
	fmt.Fprintf(&sb, "Files observed: %d, dropped: %d, duration: %s\n", r.Observed, r.Dropped, r.Duration.Round(time.Millisecond))

	for _, doc := range r.Documents {
		fmt.Fprintf(&sb, "- %s (%s, %d bytes)\n", doc.Filename, doc.FileType, doc.Size)
	}

	return sb.String()
}

// GetToolDefinition returns the MCP tool definition.
func (h *IndexHandler) GetToolDefinition() *mcp.Tool {
	return &mcp.Tool{
		Name:        IndexToolName,
		Description: "Extract text from the PDF and DOCX files under a directory and submit them to the search index as one batch",
	}
}

// RegisterIndexTool registers the indexing tool with an MCP server.
func RegisterIndexTool(server *mcp.Server, run PipelineRunner) {
	handler := NewIndexHandler(run)
	mcp.AddTool(server, handler.GetToolDefinition(), handler.Handle)
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
		IsError: true,
	}
}
