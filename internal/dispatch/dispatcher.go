// Package dispatch maps resolved intents onto controller operations. The
// (category, action) table is a closed enumeration: strings that do not match
// a registered handler are rejected before anything reaches the controller.
package dispatch

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/spf13/cast"

	"github.com/echocommand/echod/internal/control"
	"github.com/echocommand/echod/internal/history"
	"github.com/echocommand/echod/internal/intent"
	"github.com/echocommand/echod/internal/session"
)

const defaultVolumeStep = 10

type handlerKey struct {
	category intent.Category
	action   string
}

type handlerFunc func(ctx context.Context, in intent.Intent) control.Result

// Dispatcher validates intent parameters, times execution, and records every
// outcome. It never lets a controller panic escape to the router.
type Dispatcher struct {
	logger     *log.Logger
	controller control.Controller
	sessions   *session.Registry
	recorder   *history.Recorder
	handlers   map[handlerKey]handlerFunc
}

func New(logger *log.Logger, controller control.Controller, sessions *session.Registry, recorder *history.Recorder) *Dispatcher {
	d := &Dispatcher{
		logger:     logger,
		controller: controller,
		sessions:   sessions,
		recorder:   recorder,
	}
	d.handlers = map[handlerKey]handlerFunc{
		{intent.CategorySystemControl, "volume-up"}:   d.volumeUp,
		{intent.CategorySystemControl, "volume-down"}: d.volumeDown,
		{intent.CategorySystemControl, "volume-set"}:  d.volumeSet,
		{intent.CategorySystemControl, "mute"}:        d.mute,
		{intent.CategorySystemControl, "unmute"}:      d.unmute,
		{intent.CategorySystemControl, "screenshot"}:  d.screenshot,
		{intent.CategorySystemControl, "lock-screen"}: d.lockScreen,

		{intent.CategoryFileOperation, "create"}: d.fileCreate,
		{intent.CategoryFileOperation, "read"}:   d.fileRead,
		{intent.CategoryFileOperation, "write"}:  d.fileWrite,
		{intent.CategoryFileOperation, "delete"}: d.fileDelete,
		{intent.CategoryFileOperation, "list"}:   d.fileList,

		{intent.CategoryApplication, "open"}:  d.appOpen,
		{intent.CategoryApplication, "close"}: d.appClose,

		{intent.CategoryMedia, "play"}:  d.mediaPlay,
		{intent.CategoryMedia, "pause"}: d.mediaPause,
		{intent.CategoryMedia, "stop"}:  d.mediaStop,

		{intent.CategoryQuery, "time"}:      d.queryTime,
		{intent.CategoryQuery, "date"}:      d.queryDate,
		{intent.CategoryQuery, "processes"}: d.queryProcesses,
	}
	return d
}

// Dispatch executes one intent for the given session. The returned result
// always carries the wall-clock duration, and bookkeeping (command counter,
// execution record) runs whether the command succeeded or failed.
func (d *Dispatcher) Dispatch(ctx context.Context, in intent.Intent, sessionID string) control.Result {
	started := time.Now()

	res := d.run(ctx, in)
	res.Duration = time.Since(started)
	if res.Succeeded {
		res.FailureDetail = ""
	} else if res.FailureDetail == "" {
		res.FailureDetail = res.Message
	}

	d.sessions.IncrementCommands(sessionID)
	d.recorder.Record(sessionID, in, res)

	d.logger.Printf("dispatch session_id=%s category=%s action=%s succeeded=%t duration=%s",
		sessionID, in.Category, in.Action, res.Succeeded, res.Duration)
	return res
}

func (d *Dispatcher) run(ctx context.Context, in intent.Intent) (res control.Result) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Printf("handler panic category=%s action=%s panic=%v", in.Category, in.Action, r)
			res = control.Result{
				Succeeded:     false,
				Message:       "command execution failed",
				FailureDetail: fmt.Sprint(r),
			}
		}
	}()

	handler, ok := d.handlers[handlerKey{in.Category, in.Action}]
	if !ok {
		return control.Result{
			Succeeded:     false,
			Message:       fmt.Sprintf("unknown action %s/%s", in.Category, in.Action),
			FailureDetail: "no handler registered",
		}
	}
	return handler(ctx, in)
}

// stringParam fetches a required string parameter. The caller reports the
// missing field without invoking the controller.
func stringParam(in intent.Intent, key string) (string, bool) {
	v, ok := in.Parameters[key]
	if !ok {
		return "", false
	}
	s := cast.ToString(v)
	return s, s != ""
}

func intParam(in intent.Intent, key string, fallback int) int {
	v, ok := in.Parameters[key]
	if !ok {
		return fallback
	}
	return cast.ToInt(v)
}

func missing(key string) control.Result {
	return control.Result{
		Succeeded:     false,
		Message:       fmt.Sprintf("missing required parameter %q", key),
		FailureDetail: "parameter validation failed",
	}
}

func (d *Dispatcher) volumeUp(ctx context.Context, in intent.Intent) control.Result {
	return d.controller.VolumeUp(ctx, intParam(in, "amount", defaultVolumeStep))
}

func (d *Dispatcher) volumeDown(ctx context.Context, in intent.Intent) control.Result {
	return d.controller.VolumeDown(ctx, intParam(in, "amount", defaultVolumeStep))
}

func (d *Dispatcher) volumeSet(ctx context.Context, in intent.Intent) control.Result {
	if _, ok := in.Parameters["level"]; !ok {
		return missing("level")
	}
	return d.controller.VolumeSet(ctx, intParam(in, "level", 0))
}

func (d *Dispatcher) mute(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.Mute(ctx)
}

func (d *Dispatcher) unmute(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.Unmute(ctx)
}

func (d *Dispatcher) screenshot(ctx context.Context, in intent.Intent) control.Result {
	path, _ := stringParam(in, "path")
	return d.controller.Screenshot(ctx, path)
}

func (d *Dispatcher) lockScreen(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.LockScreen(ctx)
}

func (d *Dispatcher) fileCreate(ctx context.Context, in intent.Intent) control.Result {
	path, ok := stringParam(in, "path")
	if !ok {
		return missing("path")
	}
	content, _ := stringParam(in, "content")
	return d.controller.CreateFile(ctx, path, content)
}

func (d *Dispatcher) fileRead(ctx context.Context, in intent.Intent) control.Result {
	path, ok := stringParam(in, "path")
	if !ok {
		return missing("path")
	}
	return d.controller.ReadFile(ctx, path)
}

func (d *Dispatcher) fileWrite(ctx context.Context, in intent.Intent) control.Result {
	path, ok := stringParam(in, "path")
	if !ok {
		return missing("path")
	}
	content, _ := stringParam(in, "content")
	return d.controller.WriteFile(ctx, path, content)
}

func (d *Dispatcher) fileDelete(ctx context.Context, in intent.Intent) control.Result {
	path, ok := stringParam(in, "path")
	if !ok {
		return missing("path")
	}
	return d.controller.DeleteFile(ctx, path)
}

func (d *Dispatcher) fileList(ctx context.Context, in intent.Intent) control.Result {
	dir, ok := stringParam(in, "path")
	if !ok {
		dir = "."
	}
	return d.controller.ListFiles(ctx, dir)
}

func (d *Dispatcher) appOpen(ctx context.Context, in intent.Intent) control.Result {
	name, ok := stringParam(in, "name")
	if !ok {
		return missing("name")
	}
	return d.controller.OpenApplication(ctx, name)
}

func (d *Dispatcher) appClose(ctx context.Context, in intent.Intent) control.Result {
	name, ok := stringParam(in, "name")
	if !ok {
		return missing("name")
	}
	return d.controller.CloseApplication(ctx, name)
}

func (d *Dispatcher) mediaPlay(ctx context.Context, in intent.Intent) control.Result {
	path, ok := stringParam(in, "path")
	if !ok {
		return missing("path")
	}
	return d.controller.PlayMedia(ctx, path)
}

func (d *Dispatcher) mediaPause(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.PauseMedia(ctx)
}

func (d *Dispatcher) mediaStop(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.StopMedia(ctx)
}

func (d *Dispatcher) queryTime(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.CurrentTime(ctx)
}

func (d *Dispatcher) queryDate(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.CurrentDate(ctx)
}

func (d *Dispatcher) queryProcesses(ctx context.Context, _ intent.Intent) control.Result {
	return d.controller.Processes(ctx)
}
