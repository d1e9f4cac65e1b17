package tools

// guidance.go defines the static tools: specialist lookup, appointment
// guidance and the voice-feature pointer. None of these can fail and their
// output is deterministic.

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

const nearbySpecialistsFormat = "Here are some medical specialists near %s:\n" +
	"- Dr. Sarah Johnson (Internal Medicine) - +1 (555) 123-4567\n" +
	"- Dr. Michael Chen (Cardiology) - +1 (555) 987-6543\n" +
	"- Dr. Emily Rodriguez (Emergency Medicine) - +1 (555) 222-3333\n" +
	"- Regional Medical Center - +1 (555) 111-2222\n" +
	"- Urgent Care Clinic - +1 (555) 333-4444"

const appointmentGuidance = `To schedule a routine appointment with your doctor, follow these steps:

1. Contact your primary care physician for referrals if needed.
2. Call the healthcare provider's office directly
3. Have your insurance information ready
4. Be prepared to describe your symptoms or reason for the visit
5. Ask about availability and scheduling options

For immediate assistance:
- Emergency room: For life-threatening conditions
- Urgent care: For non-life-threatening but immediate medical needs
- Telehealth: For routine consultations and follow-ups

Insurance coverage may vary, so confirm with your provider before scheduling.`

const voiceFeaturePointer = "Voice messages are transcribed by the dedicated voice input feature. " +
	"Please use the microphone option in the chat client to record and send your message."

// LocationInput is the input for find_nearby_specialists_by_location.
type LocationInput struct {
	Location string `json:"location" jsonschema_description:"City, area or address to search for medical specialists"`
}

// FindNearbySpecialists returns the specialist directory for a location.
func (h *Handler) FindNearbySpecialists(ctx *ai.ToolContext, input LocationInput) (string, error) {
	answer := fmt.Sprintf(nearbySpecialistsFormat, input.Location)
	h.audit("find_nearby_specialists_by_location", input.Location, answer)
	return answer, nil
}

// AppointmentInput is the input for schedule_appointment_helper.
type AppointmentInput struct {
	AppointmentType string `json:"appointment_type" jsonschema_description:"Type of appointment or medical service needed"`
}

// ScheduleAppointmentHelper returns fixed guidance on scheduling
// appointments.
func (h *Handler) ScheduleAppointmentHelper(ctx *ai.ToolContext, input AppointmentInput) (string, error) {
	h.audit("schedule_appointment_helper", input.AppointmentType, appointmentGuidance)
	return appointmentGuidance, nil
}

// VoiceMessageInput is the input for transcribe_voice_message.
type VoiceMessageInput struct {
	Description string `json:"description" jsonschema_description:"Description of the voice message the user wants transcribed"`
}

// TranscribeVoiceMessage directs the user to the dedicated voice feature;
// transcription happens at the gateway, not inside the agent loop.
func (h *Handler) TranscribeVoiceMessage(ctx *ai.ToolContext, input VoiceMessageInput) (string, error) {
	h.audit("transcribe_voice_message", input.Description, voiceFeaturePointer)
	return voiceFeaturePointer, nil
}
