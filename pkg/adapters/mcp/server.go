// Package mcp exposes procedures and actions to MCP clients.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dewakar-s/procflow/internal/compiler"
	"github.com/dewakar-s/procflow/internal/logging"
	"github.com/dewakar-s/procflow/pkg/action"
	"github.com/dewakar-s/procflow/pkg/domain"
	"github.com/dewakar-s/procflow/pkg/runner"
	"github.com/dewakar-s/procflow/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// ActionsURI is the resource listing every registered action.
const ActionsURI = "procflow://actions"

// Sessions is the controller surface exposed as tools.
type Sessions interface {
	Start(ctx context.Context, sessionID string, proc domain.Procedure) (domain.Outcome, error)
	Resume(ctx context.Context, sessionID string, req session.ResumeRequest) (domain.Outcome, error)
	Get(ctx context.Context, sessionID string) (*domain.State, error)
}

// Catalog lists the registered actions.
type Catalog interface {
	List() []*action.Invoker
}

// Server wraps the controller and the action catalog as an MCP server.
type Server struct {
	sessions  Sessions
	catalog   Catalog
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithCatalog exposes every registered action as a directly callable tool.
func WithCatalog(c Catalog) Option {
	return func(s *Server) { s.catalog = c }
}

// NewServer creates a new MCP Server instance.
func NewServer(sessions Sessions, version string, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("procflow-mcp", version),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerActionTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves MCP over SSE until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("start_procedure",
		mcp.WithDescription("Start a procedure and run it until it asks the user something or finishes."),
		mcp.WithString("procedure", mcp.Required(), mcp.Description("Procedure document (JSON or YAML) with a steps list")),
		mcp.WithString("session_id", mcp.Description("Session ID; generated when omitted")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleStart))

	s.mcpServer.AddTool(mcp.NewTool("resume_procedure",
		mcp.WithDescription("Answer the pending question of a paused session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
		mcp.WithString("answer", mcp.Required(), mcp.Description("The user's answer")),
		mcp.WithString("token", mcp.Description("Idempotency token; a repeated token replays the previous outcome")),
		mcp.WithOutputSchema[domain.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleResume))

	s.mcpServer.AddTool(mcp.NewTool("get_session",
		mcp.WithDescription("Return the full snapshot of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session ID")),
	), s.handleGet)
}

func (s *Server) handleStart(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (domain.Outcome, error) {
	doc, _ := args["procedure"].(string)
	sessionID, _ := args["session_id"].(string)

	proc, err := compiler.NewParser().ParseProcedure([]byte(doc))
	if err != nil {
		return domain.Outcome{}, err
	}
	return s.sessions.Start(ctx, sessionID, proc)
}

func (s *Server) handleResume(ctx context.Context, _ mcp.CallToolRequest, args map[string]any) (domain.Outcome, error) {
	sessionID, _ := args["session_id"].(string)
	answer, _ := args["answer"].(string)
	token, _ := args["token"].(string)

	clean, err := runner.SanitizeInput(answer)
	if err != nil {
		s.logger.Warn("MCP resume: input rejected", "error", err, "size", len(answer))
		return domain.Outcome{}, fmt.Errorf("input rejected: %w", err)
	}
	return s.sessions.Resume(ctx, sessionID, session.ResumeRequest{Answer: clean, Token: token})
}

func (s *Server) handleGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := request.GetString("session_id", "")
	state, err := s.sessions.Get(ctx, id)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("session not found: %s", id)), nil
	}
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(data)), nil
}

// registerActionTools publishes one tool per action, typed from its schema.
func (s *Server) registerActionTools() {
	if s.catalog == nil {
		return
	}
	for _, inv := range s.catalog.List() {
		opts := []mcp.ToolOption{mcp.WithDescription(inv.Description())}
		for _, f := range inv.Schema() {
			p := []mcp.PropertyOption{mcp.Required()}
			switch f.Kind.Name() {
			case "integer", "float":
				opts = append(opts, mcp.WithNumber(f.Name, p...))
			case "boolean":
				opts = append(opts, mcp.WithBoolean(f.Name, p...))
			default:
				opts = append(opts, mcp.WithString(f.Name, p...))
			}
		}
		s.mcpServer.AddTool(mcp.NewTool(inv.Name(), opts...), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			res := inv.Invoke(ctx, request.GetArguments())
			data, err := json.Marshal(res)
			if err != nil {
				return nil, err
			}
			if !res.OK() {
				return mcp.NewToolResultError(string(data)), nil
			}
			return mcp.NewToolResultText(string(data)), nil
		})
	}
}

type actionEntry struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Method      string `json:"method"`
	Parameters  any    `json:"parameters"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(ActionsURI, "Registered actions",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries := []actionEntry{}
		if s.catalog != nil {
			for _, inv := range s.catalog.List() {
				entries = append(entries, actionEntry{
					Name:        inv.Name(),
					Description: inv.Description(),
					Method:      inv.Method(),
					Parameters:  inv.Schema(),
				})
			}
		}
		data, err := json.Marshal(entries)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      ActionsURI,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	})
}
