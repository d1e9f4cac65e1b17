package tools

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/firebase/genkit/go/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/staging"
	"github.com/opencare/medagent/internal/telephony"
)

// fakeModel scripts medical/vision answers for handler tests.
type fakeModel struct {
	medicalAnswer string
	medicalErr    error
	visionAnswer  string
	visionErr     error

	lastMedicalQuery string
	lastVisionQuery  string
	lastVisionImage  []byte
}

func (f *fakeModel) QueryMedical(_ context.Context, query string) (string, error) {
	f.lastMedicalQuery = query
	return f.medicalAnswer, f.medicalErr
}

func (f *fakeModel) QueryVision(_ context.Context, query string, image []byte) (string, error) {
	f.lastVisionQuery = query
	f.lastVisionImage = image
	return f.visionAnswer, f.visionErr
}

// fakeCaller scripts call placement outcomes.
type fakeCaller struct {
	sid         string
	err         error
	lastMessage string
}

func (f *fakeCaller) Place(message string) (string, error) {
	f.lastMessage = message
	return f.sid, f.err
}

// fakeImages is an in-memory single-entry image source.
type fakeImages struct {
	key  string
	data []byte
}

func (f *fakeImages) Take(key string) ([]byte, bool) {
	if key != f.key || f.data == nil {
		return nil, false
	}
	data := f.data
	f.data = nil
	return data, true
}

func toolCtx() *ai.ToolContext {
	return &ai.ToolContext{Context: context.Background()}
}

func newTestHandler(model *fakeModel, caller *fakeCaller, images *fakeImages) *Handler {
	if model == nil {
		model = &fakeModel{}
	}
	if caller == nil {
		caller = &fakeCaller{}
	}
	if images == nil {
		images = &fakeImages{}
	}
	return NewHandler(model, caller, images, log.NewNop())
}

func TestAskMedicalSpecialist(t *testing.T) {
	t.Parallel()

	t.Run("returns model answer", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{medicalAnswer: "Rest and hydrate."}
		h := newTestHandler(model, nil, nil)

		answer, err := h.AskMedicalSpecialist(toolCtx(), SpecialistInput{Query: "cold symptoms"})
		require.NoError(t, err)
		assert.Equal(t, "Rest and hydrate.", answer)
		assert.Equal(t, "cold symptoms", model.lastMedicalQuery)
	})

	t.Run("upstream failure degrades to apology", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{medicalErr: errors.New("connection refused")}
		h := newTestHandler(model, nil, nil)

		answer, err := h.AskMedicalSpecialist(toolCtx(), SpecialistInput{Query: "anything"})
		require.NoError(t, err, "upstream failures must not cross the tool boundary")
		assert.Contains(t, answer, "consult with a healthcare professional directly")
		assert.Contains(t, answer, "connection refused")
	})
}

func TestGetMedicationInformation(t *testing.T) {
	t.Parallel()

	t.Run("appends disclaimer exactly once", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{medicalAnswer: "Ibuprofen reduces inflammation."}
		h := newTestHandler(model, nil, nil)

		answer, err := h.GetMedicationInformation(toolCtx(), MedicationInput{MedicationName: "ibuprofen"})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(answer, MedicationDisclaimer))
		assert.Equal(t, 1, strings.Count(answer, MedicationDisclaimer))
		assert.Contains(t, model.lastMedicalQuery, "ibuprofen")
	})

	t.Run("failure omits disclaimer", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{medicalErr: errors.New("timeout")}
		h := newTestHandler(model, nil, nil)

		answer, err := h.GetMedicationInformation(toolCtx(), MedicationInput{MedicationName: "ibuprofen"})
		require.NoError(t, err)
		assert.Contains(t, answer, "consult your pharmacist")
		assert.NotContains(t, answer, MedicationDisclaimer)
	})
}

func TestAnalyzeMedicalImage(t *testing.T) {
	t.Parallel()

	t.Run("consumes staged image", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{visionAnswer: "Prescription lists amoxicillin."}
		images := &fakeImages{key: "req-1", data: []byte("png-bytes")}
		h := newTestHandler(model, nil, images)

		ctx := &ai.ToolContext{Context: staging.NewContext(context.Background(), "req-1")}
		answer, err := h.AnalyzeMedicalImage(ctx, ImageInput{ImageDescription: "my prescription"})
		require.NoError(t, err)

		assert.Equal(t, "Prescription lists amoxicillin.", answer)
		assert.Equal(t, []byte("png-bytes"), model.lastVisionImage)
		assert.Contains(t, model.lastVisionQuery, "prescription image")
		assert.Nil(t, images.data, "staged image must be consumed")
	})

	t.Run("no staged image uses generic prompt", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{visionAnswer: "General guidance."}
		h := newTestHandler(model, nil, &fakeImages{})

		answer, err := h.AnalyzeMedicalImage(toolCtx(), ImageInput{ImageDescription: "an x-ray"})
		require.NoError(t, err)

		assert.Equal(t, "General guidance.", answer)
		assert.Nil(t, model.lastVisionImage)
		assert.Contains(t, model.lastVisionQuery, "general information about medical image analysis")
	})

	t.Run("vision failure degrades to radiologist apology", func(t *testing.T) {
		t.Parallel()

		model := &fakeModel{visionErr: errors.New("model offline")}
		h := newTestHandler(model, nil, &fakeImages{})

		answer, err := h.AnalyzeMedicalImage(toolCtx(), ImageInput{ImageDescription: "scan"})
		require.NoError(t, err)
		assert.Contains(t, answer, "radiologist")
		assert.Contains(t, answer, "model offline")
	})
}

func TestEmergencyCall(t *testing.T) {
	t.Parallel()

	t.Run("success names call SID", func(t *testing.T) {
		t.Parallel()

		caller := &fakeCaller{sid: "CA77"}
		h := newTestHandler(nil, caller, nil)

		answer, err := h.EmergencyCall(toolCtx(), EmergencyCallInput{EmergencyMessage: "chest pain"})
		require.NoError(t, err)
		assert.Equal(t, "Emergency call initiated successfully. Call SID: CA77", answer)
		assert.Equal(t, "chest pain", caller.lastMessage)
	})

	t.Run("defaults the message", func(t *testing.T) {
		t.Parallel()

		caller := &fakeCaller{sid: "CA1"}
		h := newTestHandler(nil, caller, nil)

		_, err := h.EmergencyCall(toolCtx(), EmergencyCallInput{})
		require.NoError(t, err)
		assert.Equal(t, "Emergency medical assistance needed", caller.lastMessage)
	})

	t.Run("missing configuration degrades safely", func(t *testing.T) {
		t.Parallel()

		caller := &fakeCaller{err: telephony.ErrNotConfigured}
		h := newTestHandler(nil, caller, nil)

		answer, err := h.EmergencyCall(toolCtx(), EmergencyCallInput{EmergencyMessage: "m"})
		require.NoError(t, err)
		assert.Equal(t, emergencyNotConfigured, answer)
	})

	t.Run("provider failure names local emergency number", func(t *testing.T) {
		t.Parallel()

		caller := &fakeCaller{err: errors.New("twilio 500")}
		h := newTestHandler(nil, caller, nil)

		answer, err := h.EmergencyCall(toolCtx(), EmergencyCallInput{EmergencyMessage: "m"})
		require.NoError(t, err)
		assert.Contains(t, answer, "call 108 immediately")
		assert.Contains(t, answer, "twilio 500")
	})
}

func TestFindNearbySpecialists_Deterministic(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, nil)

	first, err := h.FindNearbySpecialists(toolCtx(), LocationInput{Location: "Pune"})
	require.NoError(t, err)
	second, err := h.FindNearbySpecialists(toolCtx(), LocationInput{Location: "Pune"})
	require.NoError(t, err)

	assert.Equal(t, first, second, "lookup must be pure")
	assert.Contains(t, first, "Pune")
	assert.Contains(t, first, "Dr. Sarah Johnson")
}

func TestScheduleAppointmentHelper(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, nil)

	answer, err := h.ScheduleAppointmentHelper(toolCtx(), AppointmentInput{AppointmentType: "cardiology"})
	require.NoError(t, err)
	assert.Contains(t, answer, "schedule a routine appointment")
	assert.Contains(t, answer, "Urgent care")
}

func TestTranscribeVoiceMessage(t *testing.T) {
	t.Parallel()

	h := newTestHandler(nil, nil, nil)

	answer, err := h.TranscribeVoiceMessage(toolCtx(), VoiceMessageInput{Description: "my recording"})
	require.NoError(t, err)
	assert.Contains(t, answer, "voice input feature")
}

func TestToolNames_MatchRegistrations(t *testing.T) {
	t.Parallel()

	names := ToolNames()
	assert.Len(t, names, 7)
	assert.Contains(t, names, "ask_medical_specialist")
	assert.Contains(t, names, "analyze_medical_image")
	assert.Contains(t, names, "emergency_call_tool")
}

func TestTruncate(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", truncate("short", 100))
	long := strings.Repeat("a", 150)
	got := truncate(long, 100)
	assert.Equal(t, strings.Repeat("a", 100)+"...", got)
}
