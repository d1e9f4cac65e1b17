// Package agent runs medical queries through the tool-calling model and
// shapes every outcome, including timeouts and failures, into the response
// envelope the gateway returns to clients.
package agent

import (
	"context"
	"fmt"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"

	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/tools"
)

// systemPrompt steers tool selection. Routing rules mirror the tool
// descriptions so the model picks the same tool either way.
const systemPrompt = `You are an AI medical consulting assistant with access to specialized medical tools.

IMPORTANT GUIDELINES:
- If the user mentions uploading an image, prescription, medical scan, or asks about "medicines in this image", ALWAYS use the analyze_medical_image tool
- For emergency situations (chest pain, breathing problems, severe symptoms), use emergency_call_tool
- For finding doctors/specialists in a location, use find_nearby_specialists_by_location
- For medication questions, use get_medication_information
- For appointment help, use schedule_appointment_helper
- For general medical questions, use ask_medical_specialist

Answer in a clear, compassionate tone and always recommend consulting a healthcare professional for diagnosis.`

// Outcome is what a single agent run produced.
type Outcome struct {
	Text      string
	ToolsUsed []string
}

// Runner executes one instruction against the agent capability.
type Runner interface {
	Run(ctx context.Context, instruction string) (*Outcome, error)
}

// GenkitRunner drives the registered tool set through genkit.Generate.
type GenkitRunner struct {
	g         *genkit.Genkit
	modelName string
	maxTurns  int
	toolRefs  []ai.ToolRef
	logger    log.Logger
}

// NewGenkitRunner resolves the registered tools and returns a runner bound
// to the given model. Tools must be registered before this is called.
func NewGenkitRunner(g *genkit.Genkit, modelName string, maxTurns int, logger log.Logger) (*GenkitRunner, error) {
	names := tools.ToolNames()
	refs := make([]ai.ToolRef, 0, len(names))
	for _, name := range names {
		tool := genkit.LookupTool(g, name)
		if tool == nil {
			return nil, fmt.Errorf("tool %q is not registered", name)
		}
		refs = append(refs, tool)
	}

	logger.Info("agent runner initialized",
		"model", modelName,
		"tool_count", len(refs),
		"max_turns", maxTurns,
	)

	return &GenkitRunner{
		g:         g,
		modelName: modelName,
		maxTurns:  maxTurns,
		toolRefs:  refs,
		logger:    logger,
	}, nil
}

// Run executes one instruction. The model decides which tools to call;
// tool loop depth is capped by maxTurns.
func (r *GenkitRunner) Run(ctx context.Context, instruction string) (*Outcome, error) {
	resp, err := genkit.Generate(ctx, r.g,
		ai.WithModelName(r.modelName),
		ai.WithSystem(systemPrompt),
		ai.WithPrompt(instruction),
		ai.WithTools(r.toolRefs...),
		ai.WithMaxTurns(r.maxTurns),
	)
	if err != nil {
		return nil, fmt.Errorf("agent generate: %w", err)
	}

	var used []string
	for _, req := range resp.ToolRequests() {
		used = append(used, req.Name)
	}

	r.logger.Debug("agent run completed",
		"response_length", len(resp.Text()),
		"tools_used", used,
	)

	return &Outcome{Text: resp.Text(), ToolsUsed: used}, nil
}
