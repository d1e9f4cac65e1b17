package tools

import (
	"fmt"

	"github.com/firebase/genkit/go/genkit"
)

// toolNames contains all registered tool names.
// This is the single source of truth for tool names to avoid duplication;
// the agent builds its tool references from this list.
var toolNames = []string{
	"ask_medical_specialist",
	"emergency_call_tool",
	"find_nearby_specialists_by_location",
	"analyze_medical_image",
	"get_medication_information",
	"schedule_appointment_helper",
	"transcribe_voice_message",
}

// ToolNames returns all registered tool names.
func ToolNames() []string {
	return toolNames
}

// RegisterTools registers the medical tool set with Genkit.
// Tool handlers are thin adapters over Handler methods; descriptions are
// LLM-facing and drive tool selection inside the agent loop.
func RegisterTools(g *genkit.Genkit, h *Handler) error {
	if h == nil {
		return fmt.Errorf("RegisterTools: handler is required")
	}

	genkit.DefineTool(g, "ask_medical_specialist",
		"Generate a medical response using the MedGemma model. "+
			"Use this for all medical queries, health questions, symptom analysis, "+
			"or to provide evidence-based medical guidance in a conversational tone. "+
			"Always recommends consulting healthcare professionals for proper diagnosis.",
		h.AskMedicalSpecialist,
	)

	genkit.DefineTool(g, "emergency_call_tool",
		"Initiate an emergency call when a user is experiencing a medical emergency. "+
			"Use this tool immediately when detecting emergency situations, severe symptoms, "+
			"or when a user explicitly requests emergency assistance.",
		h.EmergencyCall,
	)

	genkit.DefineTool(g, "find_nearby_specialists_by_location",
		"Finds and returns a list of licensed medical specialists near the specified location.",
		h.FindNearbySpecialists,
	)

	genkit.DefineTool(g, "analyze_medical_image",
		"Analyze medical images, scans, X-rays, or other visual medical content. "+
			"Use this when a user uploads or describes a medical image they want analyzed.",
		h.AnalyzeMedicalImage,
	)

	genkit.DefineTool(g, "get_medication_information",
		"Provide information about medications including side effects, interactions, and usage. "+
			"Use this when users ask about specific medications, drugs, or treatments.",
		h.GetMedicationInformation,
	)

	genkit.DefineTool(g, "schedule_appointment_helper",
		"Provide guidance on scheduling medical appointments. "+
			"Use this when users need help with appointment scheduling or finding healthcare services.",
		h.ScheduleAppointmentHelper,
	)

	genkit.DefineTool(g, "transcribe_voice_message",
		"Handle requests about transcribing voice or audio messages. "+
			"Points the user at the dedicated voice input feature.",
		h.TranscribeVoiceMessage,
	)

	return nil
}
