package tools

// image.go defines analyze_medical_image, backed by the LLaVA vision model
// and the request-scoped image staging area.

import (
	"fmt"

	"github.com/firebase/genkit/go/ai"

	"github.com/opencare/medagent/internal/staging"
)

const (
	prescriptionPromptFormat = "Please analyze this medical prescription image and list all the medicines, " +
		"dosages, and instructions you can see: %s"

	genericImagePromptFormat = "Please provide general information about medical image analysis: %s"

	imageFallbackFormat = "I'm unable to analyze the medical image at this time. Please consult with a " +
		"healthcare professional or radiologist for proper image interpretation. Error: %v"
)

// ImageInput is the input for analyze_medical_image.
type ImageInput struct {
	ImageDescription string `json:"image_description" jsonschema_description:"Description of the medical image, scan or prescription to analyze"`
}

// AnalyzeMedicalImage analyzes the image staged for the current request.
// The staging key travels in the invocation context; when no image is
// staged the vision model is still consulted with a generic prompt.
// Staged bytes are consumed (read and removed) on the way through.
func (h *Handler) AnalyzeMedicalImage(ctx *ai.ToolContext, input ImageInput) (string, error) {
	var image []byte
	if key, ok := staging.FromContext(ctx); ok {
		image, _ = h.images.Take(key)
	}

	prompt := fmt.Sprintf(genericImagePromptFormat, input.ImageDescription)
	if len(image) > 0 {
		prompt = fmt.Sprintf(prescriptionPromptFormat, input.ImageDescription)
	}

	answer, err := h.model.QueryVision(ctx, prompt, image)
	if err != nil {
		answer = fmt.Sprintf(imageFallbackFormat, err)
	}
	h.audit("analyze_medical_image", input.ImageDescription, answer)
	return answer, nil
}
