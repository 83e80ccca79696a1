package control

import (
	"context"
	"fmt"
)

// posixController drives a PulseAudio/systemd-flavored desktop. It is also
// the fallback for unrecognized platforms.
type posixController struct {
	hostOps
}

func (c *posixController) Name() string { return "posix" }

func (c *posixController) VolumeUp(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("volume increased by %d%%", amount),
		"pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("+%d%%", amount))
	return withOutput(res, "")
}

func (c *posixController) VolumeDown(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("volume decreased by %d%%", amount),
		"pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("-%d%%", amount))
	return withOutput(res, "")
}

func (c *posixController) VolumeSet(ctx context.Context, level int) Result {
	level = clampLevel(level)
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("volume set to %d%%", level),
		"pactl", "set-sink-volume", "@DEFAULT_SINK@", fmt.Sprintf("%d%%", level))
	return withOutput(res, "")
}

func (c *posixController) Mute(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "audio muted",
		"pactl", "set-sink-mute", "@DEFAULT_SINK@", "1")
	return withOutput(res, "")
}

func (c *posixController) Unmute(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "audio unmuted",
		"pactl", "set-sink-mute", "@DEFAULT_SINK@", "0")
	return withOutput(res, "")
}

func (c *posixController) Screenshot(ctx context.Context, path string) Result {
	dest, err := c.screenshotPath(path)
	if err != nil {
		return fail("screenshot failed", err.Error())
	}
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("screenshot saved to %s", dest),
		"scrot", dest)
	return withOutput(res, dest)
}

func (c *posixController) LockScreen(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "screen locked",
		"loginctl", "lock-session")
	return withOutput(res, "")
}

func (c *posixController) OpenApplication(_ context.Context, name string) Result {
	return startCommand(c.runner, fmt.Sprintf("opened %s", name), name)
}

func (c *posixController) CloseApplication(ctx context.Context, name string) Result {
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("closed %s", name),
		"pkill", "-f", name)
	return withOutput(res, "")
}

func (c *posixController) PlayMedia(_ context.Context, path string) Result {
	return startCommand(c.runner, fmt.Sprintf("playing %s", path), "xdg-open", path)
}

func (c *posixController) PauseMedia(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "media paused",
		"playerctl", "pause")
	return withOutput(res, "")
}

func (c *posixController) StopMedia(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "media stopped",
		"playerctl", "stop")
	return withOutput(res, "")
}

func (c *posixController) Processes(ctx context.Context) Result {
	return runCommand(ctx, c.runner, c.timeout, "process listing",
		"ps", "-eo", "pid,comm")
}
