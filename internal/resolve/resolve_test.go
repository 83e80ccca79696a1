package resolve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echocommand/echod/internal/intent"
)

func TestKeywordRules(t *testing.T) {
	cases := []struct {
		text     string
		category intent.Category
		action   string
	}{
		{"turn the volume up please", intent.CategorySystemControl, "volume-up"},
		{"make it quieter", intent.CategorySystemControl, "volume-down"},
		{"mute the sound", intent.CategorySystemControl, "mute"},
		{"unmute everything", intent.CategorySystemControl, "unmute"},
		{"take a screenshot", intent.CategorySystemControl, "screenshot"},
		{"lock the screen now", intent.CategorySystemControl, "lock-screen"},
		{"pause the song", intent.CategoryMedia, "pause"},
		{"stop the music", intent.CategoryMedia, "stop"},
		{"what time is it", intent.CategoryQuery, "time"},
		{"what day is it today", intent.CategoryQuery, "date"},
		{"list processes", intent.CategoryQuery, "processes"},
		{"list files here", intent.CategoryFileOperation, "list"},
	}
	k := NewKeyword()
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			in, err := k.Resolve(context.Background(), tc.text)
			require.NoError(t, err)
			assert.Equal(t, tc.category, in.Category)
			assert.Equal(t, tc.action, in.Action)
			assert.InDelta(t, 0.9, in.Confidence, 0.001)
		})
	}
}

func TestKeywordVolumeSetExtractsLevel(t *testing.T) {
	k := NewKeyword()

	in, err := k.Resolve(context.Background(), "set volume to 45 percent")
	require.NoError(t, err)
	assert.Equal(t, "volume-set", in.Action)
	assert.Equal(t, 45, in.Parameters["level"])

	// Without a number the phrase cannot become a volume-set intent.
	_, err = k.Resolve(context.Background(), "set volume to eleven")
	assert.ErrorIs(t, err, ErrNoIntent)
}

func TestKeywordPrefixRules(t *testing.T) {
	k := NewKeyword()

	in, err := k.Resolve(context.Background(), "open Firefox")
	require.NoError(t, err)
	assert.Equal(t, intent.CategoryApplication, in.Category)
	assert.Equal(t, "open", in.Action)
	assert.Equal(t, "firefox", in.Parameters["name"])
	assert.InDelta(t, 0.8, in.Confidence, 0.001)

	in, err = k.Resolve(context.Background(), "close slack")
	require.NoError(t, err)
	assert.Equal(t, "close", in.Action)
	assert.Equal(t, "slack", in.Parameters["name"])

	in, err = k.Resolve(context.Background(), "play ~/music/track.mp3")
	require.NoError(t, err)
	assert.Equal(t, intent.CategoryMedia, in.Category)
	assert.Equal(t, "play", in.Action)
	assert.Equal(t, "~/music/track.mp3", in.Parameters["path"])
}

func TestKeywordNoMatch(t *testing.T) {
	k := NewKeyword()
	for _, text := range []string{"", "   ", "order a pizza"} {
		_, err := k.Resolve(context.Background(), text)
		assert.ErrorIs(t, err, ErrNoIntent, "text %q", text)
	}
}

func TestPassthroughAcceptsText(t *testing.T) {
	p := NewPassthrough()

	text, err := p.Transcribe(context.Background(), []byte("  mute the sound \n"), 16000)
	require.NoError(t, err)
	assert.Equal(t, "mute the sound", text)
}

func TestPassthroughRejectsBinary(t *testing.T) {
	p := NewPassthrough()

	cases := map[string][]byte{
		"invalid utf8":  {0xff, 0xfe, 0x01},
		"control bytes": []byte("hello\x00world"),
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			text, err := p.Transcribe(context.Background(), payload, 16000)
			require.NoError(t, err)
			assert.Empty(t, text)
		})
	}
}
