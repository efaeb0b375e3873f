package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"

	"libris/internal/apperr"
)

// Turn is one role-tagged message in a chat history. Roles "ai",
// "assistant" and "model" all map to the model side; everything else is
// treated as the user side.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ToolEvent records a single tool invocation observed during an agent run.
type ToolEvent struct {
	Tool    string `json:"tool"`
	Content string `json:"content"`
}

// Tool is a callable the agent may invoke during its reasoning loop.
type Tool interface {
	Declaration() *genai.FunctionDeclaration
	Call(ctx context.Context, args map[string]any) (string, error)
}

// AgentRequest drives one run of the tool-calling loop.
type AgentRequest struct {
	Message     string
	History     []Turn
	System      string
	Temperature float32
	Tools       []Tool
}

// AgentResult carries the final assistant text and the ordered tool log.
type AgentResult struct {
	Final      string
	ToolEvents []ToolEvent
}

// maxToolRounds bounds the reasoning loop; a model that keeps requesting
// tools past this is treated as a failed run.
const maxToolRounds = 8

// RunAgent executes the provider's function-calling loop: send the user
// turn, execute any requested tools, feed the results back, repeat until
// the model answers with text. The caller's history is never mutated.
func (c *Client) RunAgent(ctx context.Context, req AgentRequest) (*AgentResult, error) {
	api, err := c.client(ctx)
	if err != nil {
		return nil, err
	}

	model := api.GenerativeModel(c.defaultModel)
	model.SetTemperature(req.Temperature)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	toolsByName := make(map[string]Tool, len(req.Tools))
	var decls []*genai.FunctionDeclaration
	for _, t := range req.Tools {
		d := t.Declaration()
		decls = append(decls, d)
		toolsByName[d.Name] = t
	}
	if len(decls) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}

	session := model.StartChat()
	for _, turn := range req.History {
		session.History = append(session.History, &genai.Content{
			Role:  providerRole(turn.Role),
			Parts: []genai.Part{genai.Text(turn.Content)},
		})
	}

	resp, err := session.SendMessage(ctx, genai.Text(req.Message))
	if err != nil {
		return nil, apperr.Wrap(apperr.Execution, "agent execution failed", err)
	}

	var events []ToolEvent
	for round := 0; round < maxToolRounds; round++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}

		var replies []genai.Part
		for _, call := range calls {
			tool, ok := toolsByName[call.Name]
			if !ok {
				return nil, apperr.Newf(apperr.Execution, "agent execution failed: model requested unknown tool %q", call.Name)
			}
			out, err := tool.Call(ctx, call.Args)
			if err != nil {
				return nil, apperr.Wrap(apperr.Execution, fmt.Sprintf("agent execution failed: tool %s", call.Name), err)
			}
			events = append(events, ToolEvent{Tool: call.Name, Content: out})
			replies = append(replies, genai.FunctionResponse{
				Name:     call.Name,
				Response: map[string]any{"result": out},
			})
		}

		resp, err = session.SendMessage(ctx, replies...)
		if err != nil {
			return nil, apperr.Wrap(apperr.Execution, "agent execution failed", err)
		}
	}

	if len(functionCalls(resp)) > 0 {
		return nil, apperr.New(apperr.Execution, "agent execution failed: tool call limit exceeded")
	}

	final := responseText(resp)
	if final == "" {
		return nil, apperr.New(apperr.Execution, "agent execution failed: provider returned no text")
	}
	return &AgentResult{Final: final, ToolEvents: events}, nil
}

func providerRole(role string) string {
	switch role {
	case "ai", "assistant", "model":
		return "model"
	default:
		return "user"
	}
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []genai.FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}
