package session

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/netauto-dev/netauto/pkg/util"
)

// fakeClient records the transport call sequence and fails on demand.
type fakeClient struct {
	calls []string
	diff  string
	fail  map[string]error
}

func (f *fakeClient) step(name string) error {
	f.calls = append(f.calls, name)
	if f.fail == nil {
		return nil
	}
	return f.fail[name]
}

func (f *fakeClient) SendCommand(_ context.Context, command string) (string, error) {
	return "", f.step("command " + command)
}

func (f *fakeClient) LoadConfig(_ context.Context, _ string, _ bool) error {
	return f.step("load")
}

func (f *fakeClient) DiffConfig(_ context.Context) (string, error) {
	if err := f.step("diff"); err != nil {
		return "", err
	}
	return f.diff, nil
}

func (f *fakeClient) CommitConfig(_ context.Context) error { return f.step("commit") }
func (f *fakeClient) AbortConfig(_ context.Context) error  { return f.step("abort") }
func (f *fakeClient) Close() error                         { return nil }

func assertCalls(t *testing.T, got, want []string) {
	t.Helper()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("call sequence = %v, want %v", got, want)
	}
}

func TestDryRun_NeverCommits(t *testing.T) {
	fc := &fakeClient{diff: "+ hostname l1"}
	s := New("l1", fc)

	diff, err := s.DryRun(context.Background(), "hostname l1")
	if err != nil {
		t.Fatalf("DryRun() error: %v", err)
	}
	if diff != "+ hostname l1" {
		t.Errorf("DryRun() diff = %q, want %q", diff, "+ hostname l1")
	}

	assertCalls(t, fc.calls, []string{"load", "diff", "abort"})
	if s.State() != StateAborted {
		t.Errorf("state = %s, want %s", s.State(), StateAborted)
	}
}

func TestDryRun_EmptyDiffStillAborts(t *testing.T) {
	fc := &fakeClient{diff: ""}
	s := New("l1", fc)

	diff, err := s.DryRun(context.Background(), "cfg")
	if err != nil {
		t.Fatalf("DryRun() error: %v", err)
	}
	if diff != "" {
		t.Errorf("DryRun() diff = %q, want empty", diff)
	}
	assertCalls(t, fc.calls, []string{"load", "diff", "abort"})
}

func TestCommitRun_DiffBeforeCommit(t *testing.T) {
	fc := &fakeClient{diff: "+ vlan 100"}
	s := New("l1", fc)

	diff, err := s.CommitRun(context.Background(), "vlan 100")
	if err != nil {
		t.Fatalf("CommitRun() error: %v", err)
	}
	if diff != "+ vlan 100" {
		t.Errorf("CommitRun() diff = %q, want %q", diff, "+ vlan 100")
	}

	assertCalls(t, fc.calls, []string{"load", "diff", "commit"})
	if s.State() != StateCommitted {
		t.Errorf("state = %s, want %s", s.State(), StateCommitted)
	}
}

func TestCommitRun_LoadFailureSkipsCommit(t *testing.T) {
	loadErr := util.NewTransportError("l1", "load config", errors.New("rejected"))
	fc := &fakeClient{fail: map[string]error{"load": loadErr}}
	s := New("l1", fc)

	_, err := s.CommitRun(context.Background(), "cfg")
	if !errors.Is(err, util.ErrTransport) {
		t.Errorf("CommitRun() error = %v, want transport error", err)
	}

	assertCalls(t, fc.calls, []string{"load"})
	if s.State() != StateFailed {
		t.Errorf("state = %s, want %s", s.State(), StateFailed)
	}
}

func TestCommitRun_DiffFailureAbortsNotCommits(t *testing.T) {
	diffErr := util.NewTransportError("l1", "diff config", errors.New("timeout"))
	fc := &fakeClient{fail: map[string]error{"diff": diffErr}}
	s := New("l1", fc)

	_, err := s.CommitRun(context.Background(), "cfg")
	if !errors.Is(err, util.ErrTransport) {
		t.Errorf("CommitRun() error = %v, want transport error", err)
	}

	// Best-effort cleanup abort, never commit.
	assertCalls(t, fc.calls, []string{"load", "diff", "abort"})
	if s.State() != StateFailed {
		t.Errorf("state = %s, want %s", s.State(), StateFailed)
	}
}

func TestCommitRun_CommitFailureSurfacesWithDiff(t *testing.T) {
	commitErr := util.NewTransportError("l1", "commit config", errors.New("refused"))
	fc := &fakeClient{diff: "+ x", fail: map[string]error{"commit": commitErr}}
	s := New("l1", fc)

	diff, err := s.CommitRun(context.Background(), "cfg")
	if err == nil {
		t.Fatal("CommitRun() should surface the commit failure")
	}
	if diff != "+ x" {
		t.Errorf("CommitRun() diff = %q, want the pre-commit diff preserved", diff)
	}
	assertCalls(t, fc.calls, []string{"load", "diff", "commit", "abort"})
}

func TestDryRun_CleanupFailureDoesNotMaskOriginal(t *testing.T) {
	diffErr := util.NewTransportError("l1", "diff config", errors.New("timeout"))
	fc := &fakeClient{fail: map[string]error{
		"diff":  diffErr,
		"abort": errors.New("abort also failed"),
	}}
	s := New("l1", fc)

	_, err := s.DryRun(context.Background(), "cfg")
	if !errors.Is(err, util.ErrTransport) {
		t.Fatalf("DryRun() error = %v, want the original diff error", err)
	}
	var tErr *util.TransportError
	if !errors.As(err, &tErr) || tErr.Op != "diff config" {
		t.Errorf("DryRun() error = %v, want the diff failure, not the cleanup failure", err)
	}
	assertCalls(t, fc.calls, []string{"load", "diff", "abort"})
}

func TestSequencingGuards(t *testing.T) {
	ctx := context.Background()

	s := New("l1", &fakeClient{})
	if _, err := s.Diff(ctx); err == nil {
		t.Error("Diff() from idle should fail")
	}

	s = New("l1", &fakeClient{})
	if err := s.Commit(ctx); err == nil {
		t.Error("Commit() from idle should fail")
	}

	// Abort from idle: nothing staged, no device call, terminal state.
	fc := &fakeClient{}
	s = New("l1", fc)
	if err := s.Abort(ctx); err != nil {
		t.Errorf("Abort() from idle should succeed, got %v", err)
	}
	if len(fc.calls) != 0 {
		t.Errorf("Abort() from idle made device calls: %v", fc.calls)
	}
	if s.State() != StateAborted {
		t.Errorf("state = %s, want %s", s.State(), StateAborted)
	}

	// Terminal states reject further transitions.
	if err := s.Abort(ctx); err == nil {
		t.Error("Abort() from aborted should fail")
	}
}
