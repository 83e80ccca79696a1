package control

import (
	"context"
	"sync"
)

// MockRunner implements Runner for tests: it records invocations and serves
// canned responses keyed by command name.
type MockRunner struct {
	mu    sync.Mutex
	Calls []MockCall
	// Responses maps a command name to its canned outcome.
	Responses map[string]MockResponse
	// Block, when set, makes Run wait for context expiry to exercise the
	// execution timeout path.
	Block bool
}

type MockCall struct {
	Name string
	Args []string
}

type MockResponse struct {
	Stdout []byte
	Stderr []byte
	Err    error
}

func NewMockRunner() *MockRunner {
	return &MockRunner{Responses: make(map[string]MockResponse)}
}

func (m *MockRunner) record(name string, args []string) {
	m.mu.Lock()
	m.Calls = append(m.Calls, MockCall{Name: name, Args: args})
	m.mu.Unlock()
}

func (m *MockRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	m.record(name, args)
	if m.Block {
		<-ctx.Done()
		return nil, nil, ctx.Err()
	}
	resp := m.Responses[name]
	return resp.Stdout, resp.Stderr, resp.Err
}

func (m *MockRunner) Start(name string, args ...string) error {
	m.record(name, args)
	return m.Responses[name].Err
}

// LastCall returns the most recent invocation, if any.
func (m *MockRunner) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return MockCall{}, false
	}
	return m.Calls[len(m.Calls)-1], true
}

// MockController implements Controller for dispatcher and router tests. It
// counts invocations per operation and returns a fixed result.
type MockController struct {
	mu sync.Mutex
	// CallCounts maps operation name to invocation count.
	CallCounts map[string]int
	// Reply is returned from every operation.
	Reply Result
}

func NewMockController() *MockController {
	return &MockController{
		CallCounts: make(map[string]int),
		Reply:      Result{Succeeded: true, Message: "ok"},
	}
}

func (m *MockController) call(op string) Result {
	m.mu.Lock()
	m.CallCounts[op]++
	m.mu.Unlock()
	return m.Reply
}

// TotalCalls sums invocations across all operations.
func (m *MockController) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.CallCounts {
		total += n
	}
	return total
}

func (m *MockController) Name() string { return "mock" }

func (m *MockController) VolumeUp(context.Context, int) Result   { return m.call("volume-up") }
func (m *MockController) VolumeDown(context.Context, int) Result { return m.call("volume-down") }
func (m *MockController) VolumeSet(context.Context, int) Result  { return m.call("volume-set") }
func (m *MockController) Mute(context.Context) Result            { return m.call("mute") }
func (m *MockController) Unmute(context.Context) Result          { return m.call("unmute") }
func (m *MockController) Screenshot(context.Context, string) Result {
	return m.call("screenshot")
}
func (m *MockController) LockScreen(context.Context) Result { return m.call("lock-screen") }

func (m *MockController) CreateFile(context.Context, string, string) Result {
	return m.call("create-file")
}
func (m *MockController) ReadFile(context.Context, string) Result { return m.call("read-file") }
func (m *MockController) WriteFile(context.Context, string, string) Result {
	return m.call("write-file")
}
func (m *MockController) DeleteFile(context.Context, string) Result { return m.call("delete-file") }
func (m *MockController) ListFiles(context.Context, string) Result  { return m.call("list-files") }

func (m *MockController) OpenApplication(context.Context, string) Result {
	return m.call("open-application")
}
func (m *MockController) CloseApplication(context.Context, string) Result {
	return m.call("close-application")
}

func (m *MockController) PlayMedia(context.Context, string) Result { return m.call("play-media") }
func (m *MockController) PauseMedia(context.Context) Result        { return m.call("pause-media") }
func (m *MockController) StopMedia(context.Context) Result         { return m.call("stop-media") }

func (m *MockController) CurrentTime(context.Context) Result {
	res := m.call("current-time")
	if res.Succeeded && res.Output == "" {
		res.Output = "2024-01-01T00:00:00Z"
	}
	return res
}
func (m *MockController) CurrentDate(context.Context) Result { return m.call("current-date") }
func (m *MockController) Processes(context.Context) Result   { return m.call("processes") }
