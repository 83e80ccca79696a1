// Package control executes primitive operations against the host operating
// system. One Controller variant exists per platform family; all variants
// honor the same contract: out-of-range volume levels are clamped, subprocess
// failures become failure results rather than errors, and every OS call is
// bounded by the configured execution timeout.
package control

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	defaultExecTimeout = 15 * time.Second

	timeFormat = time.RFC3339
	dateFormat = "2006-01-02"
)

// Controller is the capability set shared by every platform variant.
type Controller interface {
	Name() string

	VolumeUp(ctx context.Context, amount int) Result
	VolumeDown(ctx context.Context, amount int) Result
	VolumeSet(ctx context.Context, level int) Result
	Mute(ctx context.Context) Result
	Unmute(ctx context.Context) Result
	Screenshot(ctx context.Context, path string) Result
	LockScreen(ctx context.Context) Result

	CreateFile(ctx context.Context, path, content string) Result
	ReadFile(ctx context.Context, path string) Result
	WriteFile(ctx context.Context, path, content string) Result
	DeleteFile(ctx context.Context, path string) Result
	ListFiles(ctx context.Context, dir string) Result

	OpenApplication(ctx context.Context, name string) Result
	CloseApplication(ctx context.Context, name string) Result

	PlayMedia(ctx context.Context, path string) Result
	PauseMedia(ctx context.Context) Result
	StopMedia(ctx context.Context) Result

	CurrentTime(ctx context.Context) Result
	CurrentDate(ctx context.Context) Result
	Processes(ctx context.Context) Result
}

// Options tune controller construction. Zero values select defaults.
type Options struct {
	// Runner overrides subprocess execution, mainly for tests.
	Runner Runner
	// ExecTimeout bounds each OS call.
	ExecTimeout time.Duration
	// ScreenshotDir receives screenshots when no path is requested.
	ScreenshotDir string
	// WorkspaceRoot confines file operations when non-empty.
	WorkspaceRoot string
}

// New selects the variant for the current platform. Unrecognized platforms
// fall back to the POSIX variant; selection never fails.
func New(logger *log.Logger, opts Options) Controller {
	return forPlatform(logger, runtime.GOOS, opts)
}

func forPlatform(logger *log.Logger, goos string, opts Options) Controller {
	base := newHostOps(opts)
	switch goos {
	case "windows":
		logger.Printf("controller selected platform=windows")
		return &windowsController{hostOps: base}
	case "darwin":
		logger.Printf("controller selected platform=darwin")
		return &darwinController{hostOps: base}
	case "linux":
		logger.Printf("controller selected platform=posix")
		return &posixController{hostOps: base}
	default:
		logger.Printf("controller fallback platform=%s using=posix", goos)
		return &posixController{hostOps: base}
	}
}

// hostOps carries the platform-neutral half of the capability set: file
// operations, clock queries and shared wiring for the shell-based variants.
type hostOps struct {
	runner        Runner
	timeout       time.Duration
	files         fileOps
	screenshotDir string
}

func newHostOps(opts Options) hostOps {
	runner := opts.Runner
	if runner == nil {
		runner = NewRunner()
	}
	timeout := opts.ExecTimeout
	if timeout <= 0 {
		timeout = defaultExecTimeout
	}
	dir := opts.ScreenshotDir
	if dir == "" {
		dir = os.TempDir()
	}
	return hostOps{
		runner:        runner,
		timeout:       timeout,
		files:         fileOps{root: opts.WorkspaceRoot},
		screenshotDir: dir,
	}
}

func (h hostOps) CreateFile(_ context.Context, path, content string) Result {
	return h.files.create(path, content)
}

func (h hostOps) ReadFile(_ context.Context, path string) Result {
	return h.files.read(path)
}

func (h hostOps) WriteFile(_ context.Context, path, content string) Result {
	return h.files.write(path, content)
}

func (h hostOps) DeleteFile(_ context.Context, path string) Result {
	return h.files.delete(path)
}

func (h hostOps) ListFiles(_ context.Context, dir string) Result {
	return h.files.list(dir)
}

func (h hostOps) CurrentTime(_ context.Context) Result {
	now := time.Now()
	return okOutput(fmt.Sprintf("the time is %s", now.Format("15:04:05")), now.Format(timeFormat))
}

func (h hostOps) CurrentDate(_ context.Context) Result {
	now := time.Now()
	return okOutput(fmt.Sprintf("today is %s", now.Format("Monday, January 2 2006")), now.Format(dateFormat))
}

// screenshotPath synthesizes a destination when none was requested and makes
// sure the parent directory exists.
func (h hostOps) screenshotPath(path string) (string, error) {
	if path == "" {
		path = filepath.Join(h.screenshotDir, fmt.Sprintf("screenshot_%d.png", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	return path, nil
}

// clampLevel keeps absolute volume levels inside [0,100]. Out-of-range input
// is an expected condition, not an error.
func clampLevel(level int) int {
	if level < 0 {
		return 0
	}
	if level > 100 {
		return 100
	}
	return level
}

// clampStep keeps relative volume steps inside (0,100].
func clampStep(amount int) int {
	if amount <= 0 {
		return 10
	}
	if amount > 100 {
		return 100
	}
	return amount
}

func withOutput(res Result, output string) Result {
	if res.Succeeded {
		res.Output = output
	}
	return res
}
