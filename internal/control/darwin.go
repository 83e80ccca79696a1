package control

import (
	"context"
	"fmt"
)

// darwinController drives macOS through osascript and the standard command
// line tools.
type darwinController struct {
	hostOps
}

func (c *darwinController) Name() string { return "darwin" }

func (c *darwinController) osascript(ctx context.Context, okMessage, script string) Result {
	res := runCommand(ctx, c.runner, c.timeout, okMessage, "osascript", "-e", script)
	return withOutput(res, "")
}

func (c *darwinController) VolumeUp(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	script := fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) + %d)", amount)
	return c.osascript(ctx, fmt.Sprintf("volume increased by %d%%", amount), script)
}

func (c *darwinController) VolumeDown(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	script := fmt.Sprintf("set volume output volume ((output volume of (get volume settings)) - %d)", amount)
	return c.osascript(ctx, fmt.Sprintf("volume decreased by %d%%", amount), script)
}

func (c *darwinController) VolumeSet(ctx context.Context, level int) Result {
	level = clampLevel(level)
	return c.osascript(ctx, fmt.Sprintf("volume set to %d%%", level),
		fmt.Sprintf("set volume output volume %d", level))
}

func (c *darwinController) Mute(ctx context.Context) Result {
	return c.osascript(ctx, "audio muted", "set volume output muted true")
}

func (c *darwinController) Unmute(ctx context.Context) Result {
	return c.osascript(ctx, "audio unmuted", "set volume output muted false")
}

func (c *darwinController) Screenshot(ctx context.Context, path string) Result {
	dest, err := c.screenshotPath(path)
	if err != nil {
		return fail("screenshot failed", err.Error())
	}
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("screenshot saved to %s", dest),
		"screencapture", "-x", dest)
	return withOutput(res, dest)
}

func (c *darwinController) LockScreen(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "screen locked",
		"pmset", "displaysleepnow")
	return withOutput(res, "")
}

func (c *darwinController) OpenApplication(ctx context.Context, name string) Result {
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("opened %s", name),
		"open", "-a", name)
	return withOutput(res, "")
}

func (c *darwinController) CloseApplication(ctx context.Context, name string) Result {
	return c.osascript(ctx, fmt.Sprintf("closed %s", name),
		fmt.Sprintf("tell application %q to quit", name))
}

func (c *darwinController) PlayMedia(ctx context.Context, path string) Result {
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("playing %s", path),
		"open", path)
	return withOutput(res, "")
}

func (c *darwinController) PauseMedia(ctx context.Context) Result {
	return c.osascript(ctx, "media paused", `tell application "Music" to pause`)
}

func (c *darwinController) StopMedia(ctx context.Context) Result {
	return c.osascript(ctx, "media stopped", `tell application "Music" to stop`)
}

func (c *darwinController) Processes(ctx context.Context) Result {
	return runCommand(ctx, c.runner, c.timeout, "process listing",
		"ps", "-axco", "pid,command")
}
