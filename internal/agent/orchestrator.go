package agent

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opencare/medagent/internal/emergency"
	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/staging"
)

// Envelope sources. Clients branch on these to label replies.
const (
	SourceAgent   = "agentic_ai"
	SourceTimeout = "timeout_handler"
	SourceError   = "error"
)

const (
	timeoutResponse = "I apologize, but your query is taking longer than expected to process. " +
		"Please try asking a more specific question or break down your request into smaller parts."

	errorResponseFormat = "I apologize, but I encountered an issue processing your request: %v. " +
		"Please try rephrasing your question or contact a healthcare professional directly if this is urgent."

	emptyResponseFallback = "I'm here to help with your medical questions."
)

// baselineAgentTools is reported when a run finishes without surfacing
// individual tool calls.
var baselineAgentTools = []string{"medical_agent"}

// Query is one user turn as received by the gateway.
type Query struct {
	Message      string
	HasImage     bool
	ImageContext string
	ImageBytes   []byte
}

// Result is the response envelope. It is always fully populated; failures
// are folded into advisory text rather than surfaced as errors.
type Result struct {
	Response     string   `json:"response"`
	ToolUsed     string   `json:"tool_used"`
	AllToolsUsed []string `json:"all_tools_used"`
	Source       string   `json:"source"`
	HasEmergency bool     `json:"has_emergency"`
}

// ImageStore stages image bytes for the duration of one query.
type ImageStore interface {
	Put(key string, data []byte) error
	Discard(key string)
}

// Orchestrator owns the lifecycle of a medical query: image staging,
// agent execution under a deadline, and envelope construction.
type Orchestrator struct {
	runner   Runner
	images   ImageStore
	detector emergency.Detector
	timeout  time.Duration
	slots    chan struct{}
	logger   log.Logger
}

// NewOrchestrator builds an orchestrator with a bounded worker pool of
// maxWorkers concurrent agent runs.
func NewOrchestrator(runner Runner, images ImageStore, detector emergency.Detector, timeout time.Duration, maxWorkers int, logger log.Logger) *Orchestrator {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Orchestrator{
		runner:   runner,
		images:   images,
		detector: detector,
		timeout:  timeout,
		slots:    make(chan struct{}, maxWorkers),
		logger:   logger,
	}
}

// Handle processes one query and always returns a complete envelope.
//
// An uploaded image is staged under a fresh per-query key so concurrent
// queries can never observe each other's images; the key travels to the
// tools through the context. The staged image is discarded when the query
// finishes, whether or not a tool consumed it.
//
// The agent runs in its own goroutine under the configured deadline. On
// timeout the envelope is returned immediately and the in-flight run is
// left to finish on its own; it is not cancelled.
func (o *Orchestrator) Handle(ctx context.Context, q Query) Result {
	runCtx := context.WithoutCancel(ctx)

	if q.HasImage && len(q.ImageBytes) > 0 {
		key := uuid.NewString()
		if err := o.images.Put(key, q.ImageBytes); err != nil {
			o.logger.Error("failed to stage image", "error", err)
		} else {
			defer o.images.Discard(key)
			runCtx = staging.NewContext(runCtx, key)
		}
	}

	instruction := q.Message
	if q.HasImage && q.ImageContext != "" {
		instruction = fmt.Sprintf("%s [Image uploaded: %s]", q.Message, q.ImageContext)
	}

	o.logger.Info("processing query",
		"message_length", len(q.Message),
		"has_image", q.HasImage,
	)

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	select {
	case o.slots <- struct{}{}:
	case <-timer.C:
		o.logger.Warn("query timed out waiting for a worker slot")
		return timeoutResult()
	}

	type runReply struct {
		out *Outcome
		err error
	}
	done := make(chan runReply, 1)
	go func() {
		defer func() { <-o.slots }()
		out, err := o.runner.Run(runCtx, instruction)
		done <- runReply{out: out, err: err}
	}()

	select {
	case reply := <-done:
		if reply.err != nil {
			o.logger.Error("agent execution failed", "error", reply.err)
			return Result{
				Response:     fmt.Sprintf(errorResponseFormat, reply.err),
				ToolUsed:     SourceError,
				AllToolsUsed: []string{},
				Source:       SourceError,
				HasEmergency: false,
			}
		}
		return o.successResult(q.Message, reply.out)
	case <-timer.C:
		o.logger.Warn("query exceeded deadline", "timeout", o.timeout)
		return timeoutResult()
	}
}

// successResult builds the success envelope. The emergency scan runs over
// the original message, not the instruction the agent saw, so image context
// text can never trip it.
func (o *Orchestrator) successResult(originalMessage string, out *Outcome) Result {
	response := out.Text
	if response == "" {
		response = emptyResponseFallback
	}

	allTools := out.ToolsUsed
	if len(allTools) == 0 {
		allTools = baselineAgentTools
	}

	hasEmergency := o.detector.Detect(originalMessage)
	if hasEmergency {
		o.logger.Warn("emergency keywords detected in query")
	}

	return Result{
		Response:     response,
		ToolUsed:     SourceAgent,
		AllToolsUsed: allTools,
		Source:       SourceAgent,
		HasEmergency: hasEmergency,
	}
}

func timeoutResult() Result {
	return Result{
		Response:     timeoutResponse,
		ToolUsed:     SourceTimeout,
		AllToolsUsed: []string{SourceTimeout},
		Source:       SourceTimeout,
		HasEmergency: false,
	}
}
