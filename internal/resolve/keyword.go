// Package resolve provides local collaborator implementations: a rule-based
// intent resolver and a passthrough transcriber. They let the daemon run
// without any cloud service and stand in for the real resolution backends in
// tests.
package resolve

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/echocommand/echod/internal/intent"
)

// ErrNoIntent is returned when no rule matches the utterance.
var ErrNoIntent = errors.New("no intent matched")

type rule struct {
	keywords []string
	category intent.Category
	action   string
}

// Ordered: more specific phrases first so "volume up" wins over "volume".
var rules = []rule{
	{[]string{"volume up", "louder", "turn it up"}, intent.CategorySystemControl, "volume-up"},
	{[]string{"volume down", "quieter", "turn it down"}, intent.CategorySystemControl, "volume-down"},
	{[]string{"set volume", "volume to"}, intent.CategorySystemControl, "volume-set"},
	{[]string{"unmute"}, intent.CategorySystemControl, "unmute"},
	{[]string{"mute"}, intent.CategorySystemControl, "mute"},
	{[]string{"screenshot", "screen shot", "capture the screen"}, intent.CategorySystemControl, "screenshot"},
	{[]string{"lock the screen", "lock screen", "lock my computer"}, intent.CategorySystemControl, "lock-screen"},
	{[]string{"pause"}, intent.CategoryMedia, "pause"},
	{[]string{"stop the music", "stop playing", "stop playback"}, intent.CategoryMedia, "stop"},
	{[]string{"what time", "current time"}, intent.CategoryQuery, "time"},
	{[]string{"what date", "today's date", "what day"}, intent.CategoryQuery, "date"},
	{[]string{"running processes", "list processes"}, intent.CategoryQuery, "processes"},
	{[]string{"list files", "show files"}, intent.CategoryFileOperation, "list"},
}

var numberPattern = regexp.MustCompile(`\d+`)

// Keyword is a rule-based Resolver. It covers the parameterless core of the
// action vocabulary; utterances it cannot place yield ErrNoIntent rather
// than a guess.
type Keyword struct{}

func NewKeyword() *Keyword { return &Keyword{} }

func (k *Keyword) Resolve(_ context.Context, text string) (intent.Intent, error) {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if lowered == "" {
		return intent.Intent{}, ErrNoIntent
	}

	for _, r := range rules {
		for _, kw := range r.keywords {
			if !strings.Contains(lowered, kw) {
				continue
			}
			in := intent.Intent{
				Category:   r.category,
				Action:     r.action,
				Parameters: map[string]any{},
				Confidence: 0.9,
			}
			if r.action == "volume-set" {
				level, ok := firstNumber(lowered)
				if !ok {
					continue
				}
				in.Parameters["level"] = level
			}
			return in, nil
		}
	}

	if name, ok := strings.CutPrefix(lowered, "open "); ok && name != "" {
		return intent.Intent{
			Category:   intent.CategoryApplication,
			Action:     "open",
			Parameters: map[string]any{"name": strings.TrimSpace(name)},
			Confidence: 0.8,
		}, nil
	}
	if name, ok := strings.CutPrefix(lowered, "close "); ok && name != "" {
		return intent.Intent{
			Category:   intent.CategoryApplication,
			Action:     "close",
			Parameters: map[string]any{"name": strings.TrimSpace(name)},
			Confidence: 0.8,
		}, nil
	}
	if path, ok := strings.CutPrefix(lowered, "play "); ok && path != "" {
		return intent.Intent{
			Category:   intent.CategoryMedia,
			Action:     "play",
			Parameters: map[string]any{"path": strings.TrimSpace(path)},
			Confidence: 0.8,
		}, nil
	}

	return intent.Intent{}, ErrNoIntent
}

func firstNumber(text string) (int, bool) {
	match := numberPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	n, err := strconv.Atoi(match)
	if err != nil {
		return 0, false
	}
	return n, true
}
