package tools

// medical.go defines the tools backed by the MedGemma generation model:
// ask_medical_specialist and get_medication_information.

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"
)

const (
	specialistFallbackFormat = "I apologize, but I'm having trouble accessing the medical knowledge base " +
		"right now. For your safety, please consult with a healthcare professional directly. Error: %v"

	medicationQueryFormat = "Please provide information about %s including common side effects, usage, " +
		"and important warnings."

	medicationFallbackFormat = "I'm unable to provide medication information at this time. Please consult " +
		"your pharmacist or healthcare provider for accurate medication information. Error: %v"

	// MedicationDisclaimer is appended exactly once to every successful
	// medication lookup.
	MedicationDisclaimer = "\n\nImportant: Always consult your healthcare provider or pharmacist before " +
		"starting, stopping, or changing any medication."
)

// SpecialistInput is the input for ask_medical_specialist.
type SpecialistInput struct {
	Query string `json:"query" jsonschema_description:"The medical question or symptom description to analyze"`
}

// AskMedicalSpecialist answers a medical query through the MedGemma model.
// Upstream failures degrade to a fixed apology embedding the error.
func (h *Handler) AskMedicalSpecialist(ctx *ai.ToolContext, input SpecialistInput) (string, error) {
	answer, err := h.model.QueryMedical(ctx, input.Query)
	if err != nil {
		answer = fmt.Sprintf(specialistFallbackFormat, err)
	}
	h.audit("ask_medical_specialist", input.Query, answer)
	return answer, nil
}

// MedicationInput is the input for get_medication_information.
type MedicationInput struct {
	MedicationName string `json:"medication_name" jsonschema_description:"Name of the medication, drug or treatment to look up"`
}

// GetMedicationInformation looks up medication details through the MedGemma
// model and appends the fixed safety disclaimer on success.
func (h *Handler) GetMedicationInformation(ctx *ai.ToolContext, input MedicationInput) (string, error) {
	answer, err := h.model.QueryMedical(ctx, fmt.Sprintf(medicationQueryFormat, input.MedicationName))
	if err != nil {
		answer = fmt.Sprintf(medicationFallbackFormat, err)
	} else {
		answer += MedicationDisclaimer
	}
	h.audit("get_medication_information", input.MedicationName, answer)
	return answer, nil
}
