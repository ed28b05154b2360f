package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/crewsmith/crewsmith/internal/team"
	"github.com/crewsmith/crewsmith/internal/tool"
	"github.com/crewsmith/crewsmith/internal/workflow"
)

// runWorker drives one worker's reasoning loop: call the model with the
// worker's instructions and capability schemas, execute any capability
// invocations, and feed the results back until the model ends its turn. The
// final text is published under the worker's output key and emitted as a
// terminal event.
func (e *Anthropic) runWorker(ctx context.Context, runID string, worker *team.ResolvedWorker,
	statement string, state *runState, events chan<- workflow.Event) error {

	capabilities := make(map[string]tool.Capability, len(worker.Capabilities))
	for _, cap := range worker.Capabilities {
		capabilities[cap.Name] = cap
	}

	prompt := statement
	if block := state.contextBlock(); block != "" {
		prompt = fmt.Sprintf("%s\n\n%s", statement, block)
	}
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}

	var finalText string
	for iteration := 0; iteration < e.cfg.MaxIterations; iteration++ {
		resp, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
			Model:     anthropic.Model(worker.Model),
			MaxTokens: e.cfg.MaxTokens,
			System: []anthropic.TextBlockParam{
				{Text: worker.Instructions},
			},
			Messages: messages,
			Tools:    toolDefinitions(worker.Capabilities),
		})
		if err != nil {
			e.emit(ctx, events, workflow.Event{
				RunID:  runID,
				Worker: worker.Name,
				Parts:  []workflow.ContentPart{workflow.TextPart(fmt.Sprintf("worker %s: model call failed: %v", worker.Name, err))},
			})
			return fmt.Errorf("engine: worker %s: %w", worker.Name, err)
		}

		var assistantBlocks []anthropic.ContentBlockParamUnion
		var toolResultBlocks []anthropic.ContentBlockParamUnion
		var parts []workflow.ContentPart
		var textOutput string

		for _, block := range resp.Content {
			switch variant := block.AsAny().(type) {
			case anthropic.TextBlock:
				textOutput += variant.Text
				parts = append(parts, workflow.TextPart(variant.Text))
				assistantBlocks = append(assistantBlocks, anthropic.NewTextBlock(variant.Text))

			case anthropic.ToolUseBlock:
				args := decodeArgs(variant.Input)
				parts = append(parts, workflow.CapabilityPart(variant.Name, args))
				assistantBlocks = append(assistantBlocks,
					anthropic.NewToolUseBlock(variant.ID, variant.Input, variant.Name))

				content, isError := e.invoke(capabilities, worker.Name, variant.Name, args)
				toolResultBlocks = append(toolResultBlocks,
					anthropic.NewToolResultBlock(variant.ID, content, isError))
			}
		}

		if len(parts) > 0 {
			e.emit(ctx, events, workflow.Event{RunID: runID, Worker: worker.Name, Parts: parts})
		}
		if textOutput != "" {
			finalText = textOutput
		}

		if resp.StopReason == anthropic.StopReasonEndTurn {
			break
		}
		messages = append(messages, anthropic.NewAssistantMessage(assistantBlocks...))
		if len(toolResultBlocks) > 0 {
			messages = append(messages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	state.set(worker.OutputKey, finalText)
	terminal := workflow.Event{RunID: runID, Worker: worker.Name, Terminal: true}
	if finalText != "" {
		terminal.Parts = []workflow.ContentPart{workflow.TextPart(finalText)}
	}
	e.emit(ctx, events, terminal)
	return nil
}

// invoke executes one capability and reports failures as result content so
// the model can react to them.
func (e *Anthropic) invoke(capabilities map[string]tool.Capability, workerName, capName string, args map[string]string) (string, bool) {
	cap, ok := capabilities[capName]
	if !ok {
		return fmt.Sprintf("capability %s is not available to this worker", capName), true
	}
	result, err := cap.Invoke(args)
	if err != nil {
		e.logf("worker %s: %s failed: %v", workerName, capName, err)
		return err.Error(), true
	}
	return result, false
}

func (e *Anthropic) emit(ctx context.Context, events chan<- workflow.Event, ev workflow.Event) {
	select {
	case events <- ev:
	case <-ctx.Done():
	}
}

// toolDefinitions renders capability metadata as tool schemas. Capabilities
// take flat string arguments, so every parameter maps to a string property.
func toolDefinitions(capabilities []tool.Capability) []anthropic.ToolUnionParam {
	defs := make([]anthropic.ToolUnionParam, 0, len(capabilities))
	for _, cap := range capabilities {
		properties := make(map[string]interface{}, len(cap.Params))
		var required []string
		for _, param := range cap.Params {
			properties[param.Name] = map[string]interface{}{
				"type":        "string",
				"description": param.Description,
			}
			if param.Required {
				required = append(required, param.Name)
			}
		}
		defs = append(defs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        cap.Name,
				Description: anthropic.String(cap.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: properties,
					Required:   required,
				},
			},
		})
	}
	return defs
}

// decodeArgs flattens a tool-use input payload into string arguments.
// Non-string values keep their JSON encoding.
func decodeArgs(input json.RawMessage) map[string]string {
	var raw map[string]any
	if err := json.Unmarshal(input, &raw); err != nil {
		return map[string]string{}
	}
	args := make(map[string]string, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			args[key] = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				continue
			}
			args[key] = string(encoded)
		}
	}
	return args
}
