package operations

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/netauto-dev/netauto/pkg/inventory"
	"github.com/netauto-dev/netauto/pkg/render"
	"github.com/netauto-dev/netauto/pkg/transport"
)

// fakeClient is a scriptable transport.Client that records the staged
// protocol calls it receives.
type fakeClient struct {
	mu      sync.Mutex
	calls   []string
	diff    string
	listing string
	failOn  map[string]error
	aborted int
}

func (c *fakeClient) call(name string) error {
	c.mu.Lock()
	c.calls = append(c.calls, name)
	c.mu.Unlock()
	if c.failOn != nil {
		return c.failOn[name]
	}
	return nil
}

func (c *fakeClient) SendCommand(ctx context.Context, command string) (string, error) {
	if err := c.call("send"); err != nil {
		return "", err
	}
	if strings.HasSuffix(command, "abort") {
		c.mu.Lock()
		c.aborted++
		c.mu.Unlock()
		return "", nil
	}
	return c.listing, nil
}

func (c *fakeClient) LoadConfig(ctx context.Context, config string, replace bool) error {
	return c.call("load")
}

func (c *fakeClient) DiffConfig(ctx context.Context) (string, error) {
	if err := c.call("diff"); err != nil {
		return "", err
	}
	return c.diff, nil
}

func (c *fakeClient) CommitConfig(ctx context.Context) error { return c.call("commit") }
func (c *fakeClient) AbortConfig(ctx context.Context) error  { return c.call("abort") }
func (c *fakeClient) Close() error                           { return nil }

func (c *fakeClient) callSequence() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// fakeDialer hands out one scripted client per host name.
type fakeDialer struct {
	clients map[string]*fakeClient
	refuse  map[string]error
}

func (d *fakeDialer) Dial(ctx context.Context, ep transport.Endpoint) (transport.Client, error) {
	if err := d.refuse[ep.Name]; err != nil {
		return nil, err
	}
	c, ok := d.clients[ep.Name]
	if !ok {
		return nil, fmt.Errorf("no fake client for %s", ep.Name)
	}
	return c, nil
}

func testHost(name string) *inventory.Host {
	return &inventory.Host{
		Name:     name,
		Hostname: name,
		Platform: "arista_eos",
		Data:     map[string]string{"role": "leaf"},
	}
}

// newTestRunner wires a Runner against fake transports with configs
// pre-generated for the given hosts.
func newTestRunner(t *testing.T, dialer *fakeDialer, hosts ...*inventory.Host) *Runner {
	t.Helper()
	outDir := t.TempDir()
	for _, h := range hosts {
		path := filepath.Join(outDir, h.Hostname+".cfg")
		if err := os.WriteFile(path, []byte("hostname "+h.Hostname+"\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	return NewRunner(RunnerConfig{
		Dialer:   dialer,
		Renderer: render.NewRenderer(t.TempDir(), outDir),
		User:     "tester",
		Workers:  4,
	})
}

func TestPush_DryRunNeverCommits(t *testing.T) {
	client := &fakeClient{diff: "+ntp server 10.0.0.1"}
	dialer := &fakeDialer{clients: map[string]*fakeClient{"l1": client}}
	hosts := []*inventory.Host{testHost("l1")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.Push(context.Background(), hosts, ModeDryRun)
	if res.Failed() {
		t.Fatalf("Push() failed: %+v", res.Results)
	}
	if !res.DryRun {
		t.Error("result should be marked dry-run")
	}

	want := []string{"load", "diff", "abort"}
	if got := client.callSequence(); !equalSeq(got, want) {
		t.Errorf("call sequence = %v, want %v", got, want)
	}
	if dr := res.Result("l1"); dr == nil || dr.Diff != "+ntp server 10.0.0.1" {
		t.Errorf("Result(l1) = %+v, want the diff attached", dr)
	}
}

func TestPush_CommitRun(t *testing.T) {
	client := &fakeClient{diff: "+ntp server 10.0.0.1"}
	dialer := &fakeDialer{clients: map[string]*fakeClient{"l1": client}}
	hosts := []*inventory.Host{testHost("l1")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.Push(context.Background(), hosts, ModeCommit)
	if res.Failed() {
		t.Fatalf("Push() failed: %+v", res.Results)
	}

	want := []string{"load", "diff", "commit"}
	if got := client.callSequence(); !equalSeq(got, want) {
		t.Errorf("call sequence = %v, want %v", got, want)
	}
	if dr := res.Result("l1"); dr.Message != "configuration committed" {
		t.Errorf("Result(l1).Message = %q", dr.Message)
	}
}

func TestPush_EmptyDiffSkipsInDryRun(t *testing.T) {
	client := &fakeClient{diff: "  \n"}
	dialer := &fakeDialer{clients: map[string]*fakeClient{"l1": client}}
	hosts := []*inventory.Host{testHost("l1")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.Push(context.Background(), hosts, ModeDryRun)
	dr := res.Result("l1")
	if dr == nil || dr.Status != StatusSkipped {
		t.Fatalf("Result(l1) = %+v, want SKIPPED", dr)
	}
	// The session must still have been aborted on the device.
	if got := client.callSequence(); !equalSeq(got, []string{"load", "diff", "abort"}) {
		t.Errorf("call sequence = %v", got)
	}
}

func TestPush_HostIsolation(t *testing.T) {
	clients := map[string]*fakeClient{
		"a1": {diff: "+a"},
		"b1": {diff: "+b", failOn: map[string]error{"diff": errors.New("device reset")}},
		"c1": {diff: "+c"},
	}
	dialer := &fakeDialer{clients: clients}
	hosts := []*inventory.Host{testHost("a1"), testHost("b1"), testHost("c1")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.Push(context.Background(), hosts, ModeDryRun)

	wantStatus := map[string]string{"a1": StatusSuccess, "b1": StatusFailed, "c1": StatusSuccess}
	for name, want := range wantStatus {
		if dr := res.Result(name); dr == nil || dr.Status != want {
			t.Errorf("Result(%s) = %+v, want %s", name, dr, want)
		}
	}
	if res.SuccessCount() != 2 || res.FailedCount() != 1 {
		t.Errorf("counts = %d/%d, want 2 success 1 failed", res.SuccessCount(), res.FailedCount())
	}

	// The failed host must have cleaned up its staged session.
	if got := clients["b1"].callSequence(); !equalSeq(got, []string{"load", "diff", "abort"}) {
		t.Errorf("b1 call sequence = %v, want cleanup abort after diff failure", got)
	}
}

func TestPush_MissingConfigFails(t *testing.T) {
	dialer := &fakeDialer{clients: map[string]*fakeClient{}}
	hosts := []*inventory.Host{testHost("l1")}
	// No pre-generated config for l1.
	r := newTestRunner(t, dialer)

	res := r.Push(context.Background(), hosts, ModeDryRun)
	dr := res.Result("l1")
	if dr == nil || dr.Status != StatusFailed {
		t.Fatalf("Result(l1) = %+v, want FAILED", dr)
	}
	if !strings.Contains(dr.Message, "generated config must exist") {
		t.Errorf("Message = %q, want the precondition named", dr.Message)
	}
}

func TestPush_DialFailure(t *testing.T) {
	dialer := &fakeDialer{
		clients: map[string]*fakeClient{},
		refuse:  map[string]error{"l1": errors.New("connection refused")},
	}
	hosts := []*inventory.Host{testHost("l1")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.Push(context.Background(), hosts, ModeDryRun)
	if dr := res.Result("l1"); dr == nil || dr.Status != StatusFailed {
		t.Errorf("Result(l1) = %+v, want FAILED", dr)
	}
}

const abortableListing = `Maximum number of completed sessions: 1
  Name                 State           User       Terminal
  -------------------- --------------- ---------- ----------
  netauto_1730000000   pending
  jdoe-maintenance     completed       jdoe       vty4
`

func TestSessionList(t *testing.T) {
	clients := map[string]*fakeClient{
		"l1": {listing: abortableListing},
		"l2": {listing: ""},
	}
	dialer := &fakeDialer{clients: clients}
	hosts := []*inventory.Host{testHost("l1"), testHost("l2")}
	r := newTestRunner(t, dialer, hosts...)

	res, listings := r.SessionList(context.Background(), hosts)
	if res.Failed() {
		t.Fatalf("SessionList() failed: %+v", res.Results)
	}
	if len(listings) != 2 {
		t.Fatalf("listings = %d hosts, want 2", len(listings))
	}
	if listings[0].Hostname != "l1" || len(listings[0].Sessions) != 2 {
		t.Errorf("l1 listing = %+v", listings[0])
	}
	if len(listings[1].Sessions) != 0 {
		t.Errorf("l2 listing = %+v, want empty", listings[1])
	}
}

func TestSessionAbort_SkipsSessionFreeHosts(t *testing.T) {
	clients := map[string]*fakeClient{
		"l1": {listing: abortableListing},
		"l2": {listing: ""},
	}
	dialer := &fakeDialer{clients: clients}
	hosts := []*inventory.Host{testHost("l1"), testHost("l2")}
	r := newTestRunner(t, dialer, hosts...)

	res := r.SessionAbort(context.Background(), hosts)
	if res.Failed() {
		t.Fatalf("SessionAbort() failed: %+v", res.Results)
	}

	// l2 had no sessions: it does not appear in the aggregate.
	if res.Total() != 1 {
		t.Fatalf("Total() = %d, want 1 (session-free host excluded)", res.Total())
	}
	dr := res.Result("l1")
	if dr == nil || dr.Message != "aborted 2 sessions" {
		t.Errorf("Result(l1) = %+v", dr)
	}
	if clients["l1"].aborted != 2 {
		t.Errorf("l1 aborted %d sessions on device, want 2", clients["l1"].aborted)
	}
}

func TestSessionAbortNamed(t *testing.T) {
	client := &fakeClient{listing: abortableListing}
	dialer := &fakeDialer{clients: map[string]*fakeClient{"l1": client}}
	hosts := []*inventory.Host{testHost("l1")}
	r := newTestRunner(t, dialer, hosts...)

	dr := r.SessionAbortNamed(context.Background(), hosts[0], []string{"jdoe-maintenance"})
	if dr.Status != StatusSuccess || dr.Message != "aborted 1 sessions" {
		t.Errorf("SessionAbortNamed() = %+v", dr)
	}
	if client.aborted != 1 {
		t.Errorf("device saw %d aborts, want 1", client.aborted)
	}
}

func TestRenderOperation(t *testing.T) {
	hosts := []*inventory.Host{testHost("l1"), testHost("l2")}

	tmplDir := t.TempDir()
	outDir := t.TempDir()
	tmpl := filepath.Join(tmplDir, "leaves.tmpl")
	if err := os.WriteFile(tmpl, []byte("hostname {{.Name}}\n"), 0644); err != nil {
		t.Fatal(err)
	}

	r := NewRunner(RunnerConfig{
		Renderer: render.NewRenderer(tmplDir, outDir),
		Workers:  2,
	})

	res, err := r.Render(context.Background(), hosts)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if res.Failed() || res.SuccessCount() != 2 {
		t.Fatalf("Render() results = %+v", res.Results)
	}
	for _, h := range hosts {
		if _, err := os.Stat(filepath.Join(outDir, h.Hostname+".cfg")); err != nil {
			t.Errorf("config for %s not written: %v", h.Name, err)
		}
	}
}

func TestRenderOperation_UnmappedRoleSkips(t *testing.T) {
	tmplDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmplDir, "leaves.tmpl"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	r := NewRunner(RunnerConfig{
		Renderer: render.NewRenderer(tmplDir, t.TempDir()),
		Workers:  2,
	})

	fw := testHost("fw1")
	fw.Data["role"] = "firewall"
	res, err := r.Render(context.Background(), []*inventory.Host{fw})
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if dr := res.Result("fw1"); dr == nil || dr.Status != StatusSkipped {
		t.Errorf("Result(fw1) = %+v, want SKIPPED for an unmapped role", dr)
	}
}

func TestRender_BadTemplatesDirFailsUpfront(t *testing.T) {
	r := NewRunner(RunnerConfig{
		Renderer: render.NewRenderer(filepath.Join(t.TempDir(), "nosuch"), t.TempDir()),
		Workers:  2,
	})
	if _, err := r.Render(context.Background(), []*inventory.Host{testHost("l1")}); err == nil {
		t.Error("Render() should fail before fan-out on a missing templates dir")
	}
}

func TestOrchestrator_CancelledContextSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := NewOrchestrator(2, 0)
	hosts := []*inventory.Host{testHost("l1"), testHost("l2")}
	res := o.Run(ctx, "push", hosts, func(ctx context.Context, h *inventory.Host) *DeviceResult {
		t.Errorf("host %s dispatched after cancellation", h.Name)
		return Failed(h.Name, nil)
	})

	if res.SkippedCount() != 2 {
		t.Errorf("SkippedCount() = %d, want 2", res.SkippedCount())
	}
}

func equalSeq(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
