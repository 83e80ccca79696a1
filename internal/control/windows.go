package control

import (
	"context"
	"fmt"
)

// windowsController drives Windows through PowerShell and the stock command
// line tools. Volume stepping uses the virtual media keys (175 up, 174 down,
// 173 mute), which is what the host exposes without extra tooling.
type windowsController struct {
	hostOps
}

func (c *windowsController) Name() string { return "windows" }

func (c *windowsController) powershell(ctx context.Context, okMessage, script string) Result {
	res := runCommand(ctx, c.runner, c.timeout, okMessage, "powershell", "-NoProfile", "-Command", script)
	return withOutput(res, "")
}

func (c *windowsController) sendKeys(ctx context.Context, okMessage string, key, presses int) Result {
	script := fmt.Sprintf(
		"$shell = New-Object -ComObject WScript.Shell; for ($i = 0; $i -lt %d; $i++) { $shell.SendKeys([char]%d) }",
		presses, key)
	return c.powershell(ctx, okMessage, script)
}

func (c *windowsController) VolumeUp(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	// Each media-key press moves the system volume by 2%.
	return c.sendKeys(ctx, fmt.Sprintf("volume increased by %d%%", amount), 175, (amount+1)/2)
}

func (c *windowsController) VolumeDown(ctx context.Context, amount int) Result {
	amount = clampStep(amount)
	return c.sendKeys(ctx, fmt.Sprintf("volume decreased by %d%%", amount), 174, (amount+1)/2)
}

func (c *windowsController) VolumeSet(ctx context.Context, level int) Result {
	level = clampLevel(level)
	script := fmt.Sprintf(
		"$shell = New-Object -ComObject WScript.Shell; for ($i = 0; $i -lt 50; $i++) { $shell.SendKeys([char]174) }; for ($i = 0; $i -lt %d; $i++) { $shell.SendKeys([char]175) }",
		(level+1)/2)
	return c.powershell(ctx, fmt.Sprintf("volume set to %d%%", level), script)
}

func (c *windowsController) Mute(ctx context.Context) Result {
	return c.sendKeys(ctx, "audio muted", 173, 1)
}

func (c *windowsController) Unmute(ctx context.Context) Result {
	return c.sendKeys(ctx, "audio unmuted", 173, 1)
}

func (c *windowsController) Screenshot(ctx context.Context, path string) Result {
	dest, err := c.screenshotPath(path)
	if err != nil {
		return fail("screenshot failed", err.Error())
	}
	script := fmt.Sprintf(
		"Add-Type -AssemblyName System.Windows.Forms,System.Drawing; $b = [System.Windows.Forms.Screen]::PrimaryScreen.Bounds; $bmp = New-Object System.Drawing.Bitmap $b.Width, $b.Height; $g = [System.Drawing.Graphics]::FromImage($bmp); $g.CopyFromScreen($b.Location, [System.Drawing.Point]::Empty, $b.Size); $bmp.Save(%q)",
		dest)
	res := c.powershell(ctx, fmt.Sprintf("screenshot saved to %s", dest), script)
	return withOutput(res, dest)
}

func (c *windowsController) LockScreen(ctx context.Context) Result {
	res := runCommand(ctx, c.runner, c.timeout, "screen locked",
		"rundll32.exe", "user32.dll,LockWorkStation")
	return withOutput(res, "")
}

func (c *windowsController) OpenApplication(_ context.Context, name string) Result {
	return startCommand(c.runner, fmt.Sprintf("opened %s", name), "cmd", "/C", "start", "", name)
}

func (c *windowsController) CloseApplication(ctx context.Context, name string) Result {
	res := runCommand(ctx, c.runner, c.timeout, fmt.Sprintf("closed %s", name),
		"taskkill", "/IM", name, "/F")
	return withOutput(res, "")
}

func (c *windowsController) PlayMedia(_ context.Context, path string) Result {
	return startCommand(c.runner, fmt.Sprintf("playing %s", path), "cmd", "/C", "start", "", path)
}

func (c *windowsController) PauseMedia(ctx context.Context) Result {
	// 179 is the play/pause media key.
	return c.sendKeys(ctx, "media paused", 179, 1)
}

func (c *windowsController) StopMedia(ctx context.Context) Result {
	// 178 is the stop media key.
	return c.sendKeys(ctx, "media stopped", 178, 1)
}

func (c *windowsController) Processes(ctx context.Context) Result {
	return runCommand(ctx, c.runner, c.timeout, "process listing", "tasklist")
}
