package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/opencare/medagent/internal/emergency"
	"github.com/opencare/medagent/internal/log"
	"github.com/opencare/medagent/internal/staging"
)

// fakeRunner scripts a single agent run.
type fakeRunner struct {
	outcome *Outcome
	err     error
	block   chan struct{} // when non-nil, Run waits for it to close

	lastInstruction string
	lastStagingKey  string
	sawStagingKey   bool
}

func (f *fakeRunner) Run(ctx context.Context, instruction string) (*Outcome, error) {
	f.lastInstruction = instruction
	f.lastStagingKey, f.sawStagingKey = staging.FromContext(ctx)
	if f.block != nil {
		<-f.block
	}
	return f.outcome, f.err
}

// memStore records staging traffic in memory.
type memStore struct {
	entries   map[string][]byte
	putErr    error
	discarded []string
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string][]byte)}
}

func (m *memStore) Put(key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[key] = data
	return nil
}

func (m *memStore) Discard(key string) {
	delete(m.entries, key)
	m.discarded = append(m.discarded, key)
}

func newTestOrchestrator(runner Runner, images ImageStore, timeout time.Duration) *Orchestrator {
	return NewOrchestrator(runner, images, emergency.NewKeywordDetector(), timeout, 2, log.NewNop())
}

func TestHandle_Success(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{Text: "Drink fluids and rest."}}
	o := newTestOrchestrator(runner, newMemStore(), time.Second)

	res := o.Handle(context.Background(), Query{Message: "I have a mild cold"})

	assert.Equal(t, "Drink fluids and rest.", res.Response)
	assert.Equal(t, SourceAgent, res.ToolUsed)
	assert.Equal(t, SourceAgent, res.Source)
	assert.Equal(t, []string{"medical_agent"}, res.AllToolsUsed)
	assert.False(t, res.HasEmergency)
	assert.Equal(t, "I have a mild cold", runner.lastInstruction)
}

func TestHandle_EmptyResponseFallback(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{}}
	o := newTestOrchestrator(runner, newMemStore(), time.Second)

	res := o.Handle(context.Background(), Query{Message: "hello"})
	assert.Equal(t, emptyResponseFallback, res.Response)
}

func TestHandle_ReportsRunnerTools(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{
		Text:      "done",
		ToolsUsed: []string{"ask_medical_specialist"},
	}}
	o := newTestOrchestrator(runner, newMemStore(), time.Second)

	res := o.Handle(context.Background(), Query{Message: "hi"})
	assert.Equal(t, []string{"ask_medical_specialist"}, res.AllToolsUsed)
}

func TestHandle_EmergencyScan(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		message string
		want    bool
	}{
		{"plain question", "what vitamins help immunity", false},
		{"chest pain", "I have chest pain right now", true},
		{"uppercase keyword", "This is URGENT", true},
		{"bleeding", "my cut will not stop bleeding", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			runner := &fakeRunner{outcome: &Outcome{Text: "ok"}}
			o := newTestOrchestrator(runner, newMemStore(), time.Second)

			res := o.Handle(context.Background(), Query{Message: tc.message})
			assert.Equal(t, tc.want, res.HasEmergency)
		})
	}
}

func TestHandle_EmergencyScanUsesOriginalMessage(t *testing.T) {
	t.Parallel()

	// Image context mentions "uploaded" formats etc. but the scan must only
	// see the user's own words.
	runner := &fakeRunner{outcome: &Outcome{Text: "ok"}}
	o := newTestOrchestrator(runner, newMemStore(), time.Second)

	res := o.Handle(context.Background(), Query{
		Message:      "what is this",
		HasImage:     true,
		ImageContext: "Image processing error: severe corruption",
		ImageBytes:   []byte("img"),
	})

	assert.False(t, res.HasEmergency)
	assert.Equal(t, "what is this [Image uploaded: Image processing error: severe corruption]", runner.lastInstruction)
}

func TestHandle_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	block := make(chan struct{})
	runner := &fakeRunner{outcome: &Outcome{Text: "too late"}, block: block}
	o := newTestOrchestrator(runner, newMemStore(), 10*time.Millisecond)

	res := o.Handle(context.Background(), Query{Message: "slow question"})

	assert.Equal(t, timeoutResponse, res.Response)
	assert.Equal(t, SourceTimeout, res.ToolUsed)
	assert.Equal(t, SourceTimeout, res.Source)
	assert.Equal(t, []string{SourceTimeout}, res.AllToolsUsed)
	assert.False(t, res.HasEmergency)

	// Release the in-flight run so goleak sees a clean exit.
	close(block)
}

func TestHandle_RunnerError(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{err: errors.New("model unavailable")}
	o := newTestOrchestrator(runner, newMemStore(), time.Second)

	res := o.Handle(context.Background(), Query{Message: "severe pain"})

	assert.Contains(t, res.Response, "I encountered an issue processing your request")
	assert.Contains(t, res.Response, "model unavailable")
	assert.Equal(t, SourceError, res.ToolUsed)
	assert.Equal(t, SourceError, res.Source)
	assert.Empty(t, res.AllToolsUsed)
	assert.False(t, res.HasEmergency, "failures never set the emergency flag")
}

func TestHandle_StagesAndDiscardsImage(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{Text: "ok"}}
	store := newMemStore()
	o := newTestOrchestrator(runner, store, time.Second)

	res := o.Handle(context.Background(), Query{
		Message:      "read this prescription",
		HasImage:     true,
		ImageContext: "Medical image uploaded - Format: PNG, Size: (10, 10)",
		ImageBytes:   []byte("png-bytes"),
	})

	require.Equal(t, SourceAgent, res.Source)
	require.True(t, runner.sawStagingKey, "staging key must reach the runner context")
	assert.Len(t, store.discarded, 1)
	assert.Equal(t, runner.lastStagingKey, store.discarded[0])
	assert.Empty(t, store.entries, "staged image must not outlive the query")
}

func TestHandle_NoImageSkipsStaging(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{Text: "ok"}}
	store := newMemStore()
	o := newTestOrchestrator(runner, store, time.Second)

	o.Handle(context.Background(), Query{Message: "no image here"})

	assert.False(t, runner.sawStagingKey)
	assert.Empty(t, store.entries)
	assert.Empty(t, store.discarded)
}

func TestHandle_ConcurrentQueriesGetDistinctKeys(t *testing.T) {
	t.Parallel()

	store := newMemStore()
	runnerA := &fakeRunner{outcome: &Outcome{Text: "a"}}
	runnerB := &fakeRunner{outcome: &Outcome{Text: "b"}}

	oA := newTestOrchestrator(runnerA, store, time.Second)
	oB := newTestOrchestrator(runnerB, store, time.Second)

	q := Query{Message: "scan", HasImage: true, ImageContext: "ctx", ImageBytes: []byte("x")}
	oA.Handle(context.Background(), q)
	oB.Handle(context.Background(), q)

	require.True(t, runnerA.sawStagingKey)
	require.True(t, runnerB.sawStagingKey)
	assert.NotEqual(t, runnerA.lastStagingKey, runnerB.lastStagingKey)
}

func TestHandle_StagingFailureStillRuns(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{outcome: &Outcome{Text: "answered without image"}}
	store := newMemStore()
	store.putErr = errors.New("disk full")
	o := newTestOrchestrator(runner, store, time.Second)

	res := o.Handle(context.Background(), Query{
		Message:      "check this",
		HasImage:     true,
		ImageContext: "ctx",
		ImageBytes:   []byte("x"),
	})

	assert.Equal(t, SourceAgent, res.Source)
	assert.False(t, runner.sawStagingKey, "failed staging must not leak a key")
}
