package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemolabs/mnemo/internal/core/audit"
	"github.com/mnemolabs/mnemo/internal/core/models"
	"github.com/mnemolabs/mnemo/internal/core/narration"
	"github.com/mnemolabs/mnemo/internal/core/store"
)

type fakeGateway struct {
	analyze  func(ctx context.Context, docs []models.Document) (*models.AnalysisResult, error)
	converse func(ctx context.Context, history []models.ChatTurn, message string) (string, error)
}

func (f *fakeGateway) Analyze(ctx context.Context, docs []models.Document) (*models.AnalysisResult, error) {
	return f.analyze(ctx, docs)
}

func (f *fakeGateway) Converse(ctx context.Context, history []models.ChatTurn, message string) (string, error) {
	return f.converse(ctx, history, message)
}

func (f *fakeGateway) Name() string { return "fake" }

type recordingAudit struct {
	mu     sync.Mutex
	events []string
	fields []audit.Fields
}

func (r *recordingAudit) Emit(event string, fields audit.Fields) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	r.fields = append(r.fields, fields)
}

func (r *recordingAudit) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// nullSynth narrates instantly, recording what it spoke.
type nullSynth struct {
	mu     sync.Mutex
	spoken []string
}

func (n *nullSynth) Voices(context.Context) ([]narration.Voice, error) {
	return []narration.Voice{{ID: "test", Language: "en-GB", Gender: "female"}}, nil
}

func (n *nullSynth) Speak(_ context.Context, _ narration.Voice, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
	return nil
}

func (n *nullSynth) Pause() error  { return nil }
func (n *nullSynth) Resume() error { return nil }

func (n *nullSynth) spokenTexts() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.spoken...)
}

func acmeResult() *models.AnalysisResult {
	return &models.AnalysisResult{
		BusinessName:    "Acme",
		FundingCapacity: 15000,
		Insights:        []string{"Strong monthly revenue"},
		Risks:           []string{"High dependency on a single client"},
		Chart: models.ChartSeries{
			Labels:   []string{"Jan", "Feb"},
			Datasets: []models.Dataset{{Name: "Revenue", Points: []float64{120000, 110000}}},
		},
	}
}

func waitFor(t *testing.T, o *Orchestrator, cond func(models.Session) bool) models.Session {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s := o.Snapshot()
		if cond(s) {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached, final state: %+v", o.Snapshot())
	return models.Session{}
}

func tenLineStatement(t *testing.T) string {
	t.Helper()
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "2025-01 deposit 12000"
	}
	path := filepath.Join(t.TempDir(), "statement.txt")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644))
	return path
}

func TestSubmitFilesSuccess(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{
		analyze: func(_ context.Context, docs []models.Document) (*models.AnalysisResult, error) {
			<-gate
			if len(docs) != 1 || docs[0].Name != "statement.txt" {
				t.Errorf("unexpected documents: %+v", docs)
			}
			return acmeResult(), nil
		},
	}
	events := &recordingAudit{}
	synth := &nullSynth{}
	o := New(Config{
		Gateway:  gw,
		Store:    store.NewMemory(),
		Narrator: narration.NewEngine(synth, narration.DefaultPreference),
		Audit:    events,
	})

	require.NoError(t, o.SubmitFiles(context.Background(), []string{tenLineStatement(t)}))

	// The Landing -> Analyzing transition is synchronous.
	assert.Equal(t, models.PhaseAnalyzing, o.Snapshot().Phase)
	close(gate)

	s := waitFor(t, o, func(s models.Session) bool { return s.Phase == models.PhaseDashboard })
	require.NotNil(t, s.Analysis)
	assert.Equal(t, "Acme", s.Analysis.BusinessName)
	require.Len(t, s.Transcript, 1)
	assert.Equal(t, models.RoleModel, s.Transcript[0].Role)
	assert.Contains(t, s.Transcript[0].Text, "Acme")
	assert.Contains(t, s.Transcript[0].Text, "$15,000")

	// The seed turn is narrated.
	waitForCond(t, func() bool { return len(synth.spokenTexts()) == 1 })
	assert.Equal(t, s.Transcript[0].Text, synth.spokenTexts()[0])

	waitForCond(t, func() bool {
		names := events.names()
		return len(names) == 2 && names[0] == audit.EventAnalysisStarted && names[1] == audit.EventAnalysisComplete
	})
}

func waitForCond(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached")
}

func TestSubmitRejectsEmptyUpload(t *testing.T) {
	events := &recordingAudit{}
	o := New(Config{Gateway: &fakeGateway{}, Store: store.NewMemory(), Audit: events})

	err := o.SubmitFiles(context.Background(), nil)
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, models.PhaseLanding, o.Snapshot().Phase)
	assert.Empty(t, events.names(), "no remote call, no audit events")
}

func TestAnalyzeFailureReturnsToLanding(t *testing.T) {
	gw := &fakeGateway{
		analyze: func(context.Context, []models.Document) (*models.AnalysisResult, error) {
			return nil, errors.New("quota exceeded")
		},
	}
	events := &recordingAudit{}
	st := store.NewMemory()
	o := New(Config{Gateway: gw, Store: st, Audit: events})

	require.NoError(t, o.SubmitFiles(context.Background(), []string{tenLineStatement(t)}))

	s := waitFor(t, o, func(s models.Session) bool { return s.Phase == models.PhaseLanding })
	assert.Nil(t, s.Analysis, "no partial analysis is ever shown")
	assert.Empty(t, s.Transcript)

	waitForCond(t, func() bool {
		names := events.names()
		return len(names) == 2 && names[1] == audit.EventAnalysisError
	})

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved, "a failed analysis must not persist anything")
}

func TestReadFailureAbortsAnalysis(t *testing.T) {
	gw := &fakeGateway{
		analyze: func(context.Context, []models.Document) (*models.AnalysisResult, error) {
			t.Error("analyze must not run when a file read fails")
			return nil, nil
		},
	}
	o := New(Config{Gateway: gw, Store: store.NewMemory()})

	require.NoError(t, o.SubmitFiles(context.Background(), []string{filepath.Join(t.TempDir(), "missing.txt")}))
	waitFor(t, o, func(s models.Session) bool { return s.Phase == models.PhaseLanding })
}

// dashboardOrchestrator returns an orchestrator already in the
// dashboard phase.
func dashboardOrchestrator(t *testing.T, gw *fakeGateway, st store.Store, events audit.Emitter) *Orchestrator {
	t.Helper()
	prevAnalyze := gw.analyze
	gw.analyze = func(context.Context, []models.Document) (*models.AnalysisResult, error) {
		return acmeResult(), nil
	}
	if events == nil {
		events = audit.Nop{}
	}
	o := New(Config{Gateway: gw, Store: st, Audit: events})
	require.NoError(t, o.SubmitDocuments(context.Background(), []models.Document{{Name: "s.txt", RawText: "data"}}))
	waitFor(t, o, func(s models.Session) bool { return s.Phase == models.PhaseDashboard })
	gw.analyze = prevAnalyze
	return o
}

func TestSendMessageSuccess(t *testing.T) {
	var gotHistory []models.ChatTurn
	var gotMessage string
	gw := &fakeGateway{
		converse: func(_ context.Context, history []models.ChatTurn, message string) (string, error) {
			gotHistory = append([]models.ChatTurn(nil), history...)
			gotMessage = message
			return "The funding capacity is based on average deposits.", nil
		},
	}
	o := dashboardOrchestrator(t, gw, store.NewMemory(), nil)

	require.NoError(t, o.SendMessage(context.Background(), "How was the capacity computed?"))

	s := waitFor(t, o, func(s models.Session) bool { return len(s.Transcript) == 3 })
	assert.Equal(t, models.RoleUser, s.Transcript[1].Role)
	assert.Equal(t, models.RoleModel, s.Transcript[2].Role)
	assert.Equal(t, "The funding capacity is based on average deposits.", s.Transcript[2].Text)

	// The gateway saw the transcript as it stood before the new user
	// turn: just the seed, with the message passed separately.
	require.Len(t, gotHistory, 1)
	assert.Equal(t, models.RoleModel, gotHistory[0].Role)
	assert.Equal(t, "How was the capacity computed?", gotMessage)
}

func TestSendMessageFailureAppendsFallback(t *testing.T) {
	gw := &fakeGateway{
		converse: func(context.Context, []models.ChatTurn, string) (string, error) {
			return "", errors.New("network down")
		},
	}
	events := &recordingAudit{}
	o := dashboardOrchestrator(t, gw, store.NewMemory(), events)
	before := len(o.Snapshot().Transcript)

	require.NoError(t, o.SendMessage(context.Background(), "hello?"))

	s := waitFor(t, o, func(s models.Session) bool { return len(s.Transcript) == before+2 })
	assert.Equal(t, models.PhaseDashboard, s.Phase, "phase unchanged on conversation failure")
	assert.Equal(t, models.RoleUser, s.Transcript[before].Role)
	assert.Equal(t, fallbackReply, s.Transcript[before+1].Text)

	waitForCond(t, func() bool {
		names := events.names()
		return len(names) >= 2 && names[len(names)-1] == audit.EventAIError
	})
}

func TestSendMessageRejectsBlank(t *testing.T) {
	o := dashboardOrchestrator(t, &fakeGateway{}, store.NewMemory(), nil)

	err := o.SendMessage(context.Background(), "   \n")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Len(t, o.Snapshot().Transcript, 1)
}

func TestUserTurnsKeepSubmissionOrder(t *testing.T) {
	release := map[string]chan struct{}{
		"A": make(chan struct{}),
		"B": make(chan struct{}),
	}
	gw := &fakeGateway{
		converse: func(_ context.Context, _ []models.ChatTurn, message string) (string, error) {
			<-release[message]
			return "reply to " + message, nil
		},
	}
	o := dashboardOrchestrator(t, gw, store.NewMemory(), nil)

	require.NoError(t, o.SendMessage(context.Background(), "A"))
	require.NoError(t, o.SendMessage(context.Background(), "B"))

	// Resolve the later call first.
	close(release["B"])
	waitFor(t, o, func(s models.Session) bool { return len(s.Transcript) == 4 })
	close(release["A"])
	s := waitFor(t, o, func(s models.Session) bool { return len(s.Transcript) == 5 })

	// User turns were appended eagerly at call time: A before B, no
	// matter which reply arrived first.
	assert.Equal(t, "A", s.Transcript[1].Text)
	assert.Equal(t, models.RoleUser, s.Transcript[1].Role)
	assert.Equal(t, "B", s.Transcript[2].Text)
	assert.Equal(t, models.RoleUser, s.Transcript[2].Role)
	assert.Equal(t, "reply to B", s.Transcript[3].Text)
	assert.Equal(t, "reply to A", s.Transcript[4].Text)
}

func TestResetDiscardsStaleAnalysis(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{
		analyze: func(context.Context, []models.Document) (*models.AnalysisResult, error) {
			<-gate
			return acmeResult(), nil
		},
	}
	st := store.NewMemory()
	o := New(Config{Gateway: gw, Store: st})

	require.NoError(t, o.SubmitFiles(context.Background(), []string{tenLineStatement(t)}))
	require.Equal(t, models.PhaseAnalyzing, o.Snapshot().Phase)

	o.Reset()
	assert.Equal(t, models.PhaseLanding, o.Snapshot().Phase)

	// The pending analyze call now resolves successfully; its result
	// belongs to a discarded session and must not resurrect it.
	close(gate)
	time.Sleep(100 * time.Millisecond)

	s := o.Snapshot()
	assert.Equal(t, models.PhaseLanding, s.Phase, "reset wins over a late analyze success")
	assert.Nil(t, s.Analysis)
	assert.Empty(t, s.Transcript)

	saved, err := st.Load()
	require.NoError(t, err)
	assert.Nil(t, saved)
}

func TestResetIsIdempotent(t *testing.T) {
	o := dashboardOrchestrator(t, &fakeGateway{}, store.NewMemory(), nil)

	o.Reset()
	first := o.Snapshot()
	o.Reset()
	second := o.Snapshot()

	assert.Equal(t, models.PhaseLanding, first.Phase)
	assert.Equal(t, first, second, "reset twice equals reset once")
}

func TestRehydrateRestoresPersistedSession(t *testing.T) {
	st := store.NewMemory()
	synthA := &nullSynth{}
	gw := &fakeGateway{
		analyze: func(context.Context, []models.Document) (*models.AnalysisResult, error) {
			return acmeResult(), nil
		},
		converse: func(context.Context, []models.ChatTurn, string) (string, error) {
			return "Deposits averaged 115k a month.", nil
		},
	}
	first := New(Config{Gateway: gw, Store: st, Narrator: narration.NewEngine(synthA, narration.DefaultPreference)})
	require.NoError(t, first.SubmitDocuments(context.Background(), []models.Document{{Name: "s.txt", RawText: "x"}}))
	waitFor(t, first, func(s models.Session) bool { return s.Phase == models.PhaseDashboard })
	require.NoError(t, first.SendMessage(context.Background(), "tell me more"))
	want := waitFor(t, first, func(s models.Session) bool { return len(s.Transcript) == 3 })

	// A fresh process comes up against the same store.
	synthB := &nullSynth{}
	second := New(Config{Gateway: gw, Store: st, Narrator: narration.NewEngine(synthB, narration.DefaultPreference)})
	second.Rehydrate()

	got := second.Snapshot()
	assert.Equal(t, want.Phase, got.Phase)
	assert.Equal(t, want.Analysis, got.Analysis)
	assert.Equal(t, want.Transcript, got.Transcript)

	assert.Empty(t, synthB.spokenTexts(), "narration is never replayed on rehydration")
}

func TestRehydrateWithNoStateStaysLanding(t *testing.T) {
	o := New(Config{Gateway: &fakeGateway{}, Store: store.NewMemory()})
	o.Rehydrate()
	assert.Equal(t, models.PhaseLanding, o.Snapshot().Phase)
}

func TestSubmitWhileAnalyzingRejected(t *testing.T) {
	gate := make(chan struct{})
	gw := &fakeGateway{
		analyze: func(context.Context, []models.Document) (*models.AnalysisResult, error) {
			<-gate
			return acmeResult(), nil
		},
	}
	o := New(Config{Gateway: gw, Store: store.NewMemory()})
	defer close(gate)

	require.NoError(t, o.SubmitFiles(context.Background(), []string{tenLineStatement(t)}))
	err := o.SubmitFiles(context.Background(), []string{tenLineStatement(t)})
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
}
