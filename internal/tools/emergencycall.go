package tools

// emergencycall.go defines emergency_call_tool. Call placement itself is
// owned by the telephony package and shared with the gateway's direct
// emergency endpoint.

import (
	"errors"
	"fmt"

	"github.com/firebase/genkit/go/ai"

	"github.com/opencare/medagent/internal/telephony"
)

const (
	emergencySuccessFormat = "Emergency call initiated successfully. Call SID: %s"

	emergencyNotConfigured = "Emergency call configuration missing. Please contact emergency services directly."

	emergencyFallbackFormat = "Emergency services contacted. If this is a life-threatening emergency, " +
		"please call 108 immediately. Error: %v"
)

// EmergencyCallInput is the input for emergency_call_tool.
type EmergencyCallInput struct {
	EmergencyMessage string `json:"emergency_message" jsonschema_description:"Short description of the emergency to relay on the call"`
}

// EmergencyCall places one outbound emergency call. Every failure mode maps
// to fixed fallback text naming the local emergency number.
func (h *Handler) EmergencyCall(ctx *ai.ToolContext, input EmergencyCallInput) (string, error) {
	message := input.EmergencyMessage
	if message == "" {
		message = "Emergency medical assistance needed"
	}

	var answer string
	sid, err := h.caller.Place(message)
	switch {
	case errors.Is(err, telephony.ErrNotConfigured):
		answer = emergencyNotConfigured
	case err != nil:
		answer = fmt.Sprintf(emergencyFallbackFormat, err)
	default:
		answer = fmt.Sprintf(emergencySuccessFormat, sid)
	}
	h.audit("emergency_call_tool", message, answer)
	return answer, nil
}
