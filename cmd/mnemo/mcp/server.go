package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/session"
)

// AnalyzeDocumentsArgs defines arguments for the analyze_documents tool
type AnalyzeDocumentsArgs struct {
	Files string `json:"files" jsonschema:"description=Whitespace-separated paths to financial documents,required"`
}

// SendMessageArgs defines arguments for the send_message tool
type SendMessageArgs struct {
	Message string `json:"message" jsonschema:"description=Question about the current analysis,required"`
}

// SessionView is the wire shape returned by get_session and
// analyze_documents.
type SessionView struct {
	Phase      string                 `json:"phase"`
	Analysis   *models.AnalysisResult `json:"analysis,omitempty"`
	Transcript []TurnView             `json:"transcript,omitempty"`
}

// TurnView represents a single conversation turn
type TurnView struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// StartServer starts the MCP server over stdio. It serves tools
// against the supplied orchestrator until stdin closes.
func StartServer(orch *session.Orchestrator) error {
	s := server.NewMCPServer(
		"Mnemo",
		"1.0.0",
	)

	analyzeTool := mcp.NewTool("analyze_documents",
		mcp.WithDescription("Analyze financial documents and produce a funding analysis: business name, estimated funding capacity, insights, risks, and a revenue chart. Starts a new conversational session."),
		mcp.WithString("files",
			mcp.Required(),
			mcp.Description("Whitespace-separated paths to financial documents")),
	)
	s.AddTool(analyzeTool, makeAnalyzeHandler(orch))

	messageTool := mcp.NewTool("send_message",
		mcp.WithDescription("Ask a follow-up question about the current funding analysis. Requires a completed analysis."),
		mcp.WithString("message",
			mcp.Required(),
			mcp.Description("Question about the current analysis")),
	)
	s.AddTool(messageTool, makeSendMessageHandler(orch))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Get the current session: phase, analysis, and conversation transcript."),
	)
	s.AddTool(getTool, makeGetSessionHandler(orch))

	resetTool := mcp.NewTool("reset_session",
		mcp.WithDescription("Discard the current analysis and conversation."),
	)
	s.AddTool(resetTool, makeResetHandler(orch))

	return server.ServeStdio(s)
}

func sessionView(s models.Session) SessionView {
	view := SessionView{Phase: string(s.Phase), Analysis: s.Analysis}
	for _, turn := range s.Transcript {
		view.Transcript = append(view.Transcript, TurnView{Role: string(turn.Role), Text: turn.Text})
	}
	return view
}

func viewResult(s models.Session) (*mcp.CallToolResult, error) {
	out, err := json.Marshal(sessionView(s))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal session: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func makeAnalyzeHandler(orch *session.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args AnalyzeDocumentsArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		paths := strings.Fields(args.Files)
		if err := orch.SubmitFiles(ctx, paths); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// Block until the analysis settles one way or the other.
		for {
			s := orch.Snapshot()
			if s.Phase == models.PhaseDashboard {
				return viewResult(s)
			}
			if s.Phase == models.PhaseLanding {
				return mcp.NewToolResultError("analysis failed"), nil
			}
			select {
			case <-orch.Updates():
			case <-ctx.Done():
				return mcp.NewToolResultError(ctx.Err().Error()), nil
			}
		}
	}
}

func makeSendMessageHandler(orch *session.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SendMessageArgs
		argsBytes, _ := json.Marshal(request.Params.Arguments)
		if err := json.Unmarshal(argsBytes, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}

		before := len(orch.Snapshot().Transcript)
		if err := orch.SendMessage(ctx, args.Message); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		for {
			s := orch.Snapshot()
			if len(s.Transcript) >= before+2 {
				return mcp.NewToolResultText(s.Transcript[len(s.Transcript)-1].Text), nil
			}
			select {
			case <-orch.Updates():
			case <-ctx.Done():
				return mcp.NewToolResultError(ctx.Err().Error()), nil
			}
		}
	}
}

func makeGetSessionHandler(orch *session.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return viewResult(orch.Snapshot())
	}
}

func makeResetHandler(orch *session.Orchestrator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		orch.Reset()
		return mcp.NewToolResultText("Session cleared."), nil
	}
}
