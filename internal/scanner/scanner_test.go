package scanner

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/engine"
	"github.com/EricMurray-e-m-dev/ComplianceMonkey/internal/models"
)

type fakeAnalyzer struct {
	issues []models.Issue
	err    error
	calls  int
	panics bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) ([]models.Issue, error) {
	f.calls++
	if f.panics {
		panic("nil map write")
	}
	return f.issues, f.err
}

type fakeInvoker struct {
	result *models.AgentResult
	err    error
	calls  int
	topic  string
}

func (f *fakeInvoker) Invoke(_ context.Context, req models.AgentRequest) (*models.AgentResult, error) {
	f.calls++
	f.topic = req.Topic
	return f.result, f.err
}

const sample = "card 4111111111111111 and password hunter2"

func TestScanner_BothRemoteTiersFailEqualsLocal(t *testing.T) {
	local := engine.NewDefault(nil)
	analyzer := &fakeAnalyzer{err: models.ErrClassifierUnavailable}
	invoker := &fakeInvoker{err: models.ErrAgentUnavailable}
	s := New(Options{UseClassifier: true, UseAgent: true}, analyzer, invoker, local, zap.NewNop())

	got := s.Scan(context.Background(), sample)

	if diff := cmp.Diff(local.ScanLocally(sample), got); diff != "" {
		t.Errorf("Scan() mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, analyzer.calls)
	assert.Equal(t, 1, invoker.calls)
}

func TestScanner_ClassifierZeroIssuesIsTerminal(t *testing.T) {
	analyzer := &fakeAnalyzer{issues: []models.Issue{}}
	invoker := &fakeInvoker{}
	s := New(Options{UseClassifier: true, UseAgent: true}, analyzer, invoker, engine.NewDefault(nil), nil)

	got := s.Scan(context.Background(), sample)

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, invoker.calls)
}

func TestScanner_ClassifierTakesPrecedence(t *testing.T) {
	want := []models.Issue{models.NewIssue(models.CategoryHIPAA, models.SeverityHigh, "from classifier")}
	invoker := &fakeInvoker{result: &models.AgentResult{Issues: []models.Issue{
		models.NewIssue(models.CategoryPCIDSS, models.SeverityMedium, "from agent"),
	}}}
	s := New(Options{UseClassifier: true, UseAgent: true}, &fakeAnalyzer{issues: want}, invoker, engine.NewDefault(nil), nil)

	assert.Equal(t, want, s.Scan(context.Background(), sample))
	assert.Zero(t, invoker.calls)
}

func TestScanner_AgentUsedWhenClassifierFails(t *testing.T) {
	want := []models.Issue{models.NewIssue(models.CategoryInfoSecurity, models.SeverityMedium, "from agent")}
	invoker := &fakeInvoker{result: &models.AgentResult{Issues: want}}
	s := New(Options{UseClassifier: true, UseAgent: true},
		&fakeAnalyzer{err: errors.New("timeout")}, invoker, engine.NewDefault(nil), nil)

	assert.Equal(t, want, s.Scan(context.Background(), sample))
	assert.Equal(t, models.TopicAutoPolicyMonitor, invoker.topic)
}

func TestScanner_AgentWithoutIssuesFallsThrough(t *testing.T) {
	local := engine.NewDefault(nil)
	invoker := &fakeInvoker{result: &models.AgentResult{Summary: "nothing"}}
	s := New(Options{UseAgent: true}, nil, invoker, local, nil)

	assert.Equal(t, local.ScanLocally(sample), s.Scan(context.Background(), sample))
}

func TestScanner_PanicIsRecovered(t *testing.T) {
	local := engine.NewDefault(nil)
	s := New(Options{UseClassifier: true}, &fakeAnalyzer{panics: true}, nil, local, nil)

	assert.NotPanics(t, func() {
		assert.Equal(t, local.ScanLocally(sample), s.Scan(context.Background(), sample))
	})
}

func TestScanner_DisabledTiersAreSkipped(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	invoker := &fakeInvoker{}
	s := New(Options{}, analyzer, invoker, engine.NewDefault(nil), nil)

	assert.Equal(t, []string{"local"}, s.Sources())
	s.Scan(context.Background(), sample)
	assert.Zero(t, analyzer.calls)
	assert.Zero(t, invoker.calls)
}

func TestScanner_SourceOrder(t *testing.T) {
	s := New(Options{UseClassifier: true, UseAgent: true}, &fakeAnalyzer{}, &fakeInvoker{}, engine.NewDefault(nil), nil)

	assert.Equal(t, []string{"classifier", "agent", "local"}, s.Sources())
}

func TestScanner_EmptyContent(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	s := New(Options{UseClassifier: true}, analyzer, nil, engine.NewDefault(nil), nil)

	got := s.Scan(context.Background(), "")

	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Zero(t, analyzer.calls)
}
