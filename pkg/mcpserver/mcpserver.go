// Package mcpserver serves toolbox tools over the MCP protocol using the
// official MCP Go SDK. It bridges the host-facing surface to the pipeline:
// tool descriptors are passed through verbatim, and a request's progress
// token (when present) is wired to the context progress sink so tools can
// report checkpoints as MCP progress notifications.
package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nmoretto/almanac/pkg/progress"
	"github.com/nmoretto/almanac/pkg/toolbox"
)

// MCPServer serves tools over the MCP protocol.
type MCPServer struct {
	server *mcp.Server
	log    *slog.Logger
}

// New creates an MCPServer with the given identity. A nil logger discards
// all output.
func New(name, version string, log *slog.Logger) *MCPServer {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    name,
		Version: version,
	}, nil)

	return &MCPServer{server: server, log: log}
}

// Register adds tools to the server.
func (s *MCPServer) Register(tools ...toolbox.Tool) {
	for _, t := range tools {
		s.server.AddTool(toSDKTool(t), s.toSDKHandler(t))
	}
}

// RegisterBox registers every tool in the given ToolBox.
func (s *MCPServer) RegisterBox(tb *toolbox.ToolBox) {
	s.Register(tb.Tools()...)
}

// Serve starts serving MCP requests. It reads requests from in and writes
// responses to out. It blocks until ctx is cancelled or the transport closes.
func (s *MCPServer) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	transport := &mcp.IOTransport{
		Reader: io.NopCloser(in),
		Writer: nopWriteCloser{out},
	}

	return s.run(ctx, transport)
}

// run starts the server with the given transport. Exported via Serve for
// production use; called directly by tests with InMemoryTransport.
func (s *MCPServer) run(ctx context.Context, transport mcp.Transport) error {
	return s.server.Run(ctx, transport)
}

// toSDKTool converts a toolbox.Tool to an SDK *mcp.Tool. The input schema is
// the framework's contract and is passed through untouched.
func toSDKTool(t toolbox.Tool) *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// toSDKHandler wraps a toolbox.Tool as an SDK ToolHandler, attaching the
// invocation logger and the request's progress sink.
func (s *MCPServer) toSDKHandler(t toolbox.Tool) mcp.ToolHandler {
	return func(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		log := s.log.With("tool", t.Name, "invocation", uuid.NewString())

		if token := req.Params.GetProgressToken(); token != nil && req.Session != nil {
			ctx = progress.WithSink(ctx, debugSink(log, requestSink(req.Session, token)))
		}

		args := req.Params.Arguments
		if args == nil {
			args = json.RawMessage("{}")
		}

		start := time.Now()

		result, err := t.Handler(ctx, args)
		if err != nil {
			log.ErrorContext(ctx, "tool call failed",
				"duration", time.Since(start),
				"error", err,
			)

			return &mcp.CallToolResult{
				Content: []mcp.Content{&mcp.TextContent{Text: err.Error()}},
				IsError: true,
			}, nil
		}

		log.InfoContext(ctx, "tool call finished", "duration", time.Since(start))

		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result}},
		}, nil
	}
}

// progressNotifier is the slice of the server session the sink needs.
type progressNotifier interface {
	NotifyProgress(ctx context.Context, params *mcp.ProgressNotificationParams) error
}

// requestSink adapts a session's progress notifications to the pipeline sink.
func requestSink(n progressNotifier, token any) progress.Sink {
	return progress.SinkFunc(func(ctx context.Context, ev progress.Event) error {
		return n.NotifyProgress(ctx, &mcp.ProgressNotificationParams{
			ProgressToken: token,
			Progress:      float64(ev.Data.Progress),
			Total:         100,
			Message:       ev.Data.Message,
		})
	})
}

// debugSink logs failed progress deliveries at debug level and reports
// success to the caller either way: progress stays best-effort and a dropped
// notification never fails the invocation that emitted it.
func debugSink(log *slog.Logger, next progress.Sink) progress.Sink {
	return progress.SinkFunc(func(ctx context.Context, ev progress.Event) error {
		defer func() {
			if r := recover(); r != nil {
				log.DebugContext(ctx, "progress sink panicked",
					"checkpoint", ev.Data.Progress,
					"panic", r,
				)
			}
		}()

		if err := next.Emit(ctx, ev); err != nil {
			log.DebugContext(ctx, "progress notification failed",
				"checkpoint", ev.Data.Progress,
				"error", err,
			)
		}

		return nil
	})
}

// nopWriteCloser wraps an io.Writer as an io.WriteCloser with a no-op Close.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
