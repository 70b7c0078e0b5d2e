package ctxwin

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayush844/ctxwin/config"
	"github.com/ayush844/ctxwin/tokens"
	"github.com/ayush844/ctxwin/utils"
	"github.com/ayush844/ctxwin/window"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CTXWIN_CAPACITY",
		"CTXWIN_MODEL",
		"CTXWIN_COUNTER",
		"CTXWIN_CHARS_PER_TOKEN",
		"CTXWIN_TOKENS_PER_MINUTE",
		"CTXWIN_LOG_LEVEL",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

// oneTokenPerRune makes costs easy to reason about in tests.
func oneTokenPerRune() *tokens.EstimatingCounter {
	return tokens.NewEstimatingCounterWithRatio(1)
}

func newTestConversation(t *testing.T, capacity int) *Conversation {
	t.Helper()
	clearEnv(t)
	conv, err := NewConversationWithCounter(oneTokenPerRune(),
		config.SetCapacity(capacity),
		config.SetLogLevel(utils.LogLevelOff),
	)
	require.NoError(t, err)
	return conv
}

func TestNewConversation(t *testing.T) {
	t.Run("capacity derived from model", func(t *testing.T) {
		clearEnv(t)
		conv, err := NewConversation(
			config.SetModel("gpt-4"),
			config.SetLogLevel(utils.LogLevelOff),
		)
		require.NoError(t, err)
		assert.Equal(t, tokens.GetModelLimit("gpt-4"), conv.Capacity())
	})

	t.Run("explicit capacity wins", func(t *testing.T) {
		clearEnv(t)
		conv, err := NewConversation(
			config.SetCapacity(512),
			config.SetLogLevel(utils.LogLevelOff),
		)
		require.NoError(t, err)
		assert.Equal(t, 512, conv.Capacity())
	})

	t.Run("invalid config rejected", func(t *testing.T) {
		clearEnv(t)
		_, err := NewConversation(config.SetCounter("magic"))
		require.Error(t, err)
	})

	t.Run("nil counter rejected", func(t *testing.T) {
		clearEnv(t)
		_, err := NewConversationWithCounter(nil)
		require.Error(t, err)
	})
}

func TestConversationAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("add and render history", func(t *testing.T) {
		conv := newTestConversation(t, 100)
		_, err := conv.Add(ctx, RoleUser, "Hello")
		require.NoError(t, err)
		_, err = conv.Add(ctx, RoleAssistant, "Hi there!")
		require.NoError(t, err)

		history := conv.History()
		assert.Contains(t, history, "user: Hello")
		assert.Contains(t, history, "assistant: Hi there!")
		assert.Equal(t, len("Hello")+len("Hi there!"), conv.TotalCost())
	})

	t.Run("oldest turn evicted first", func(t *testing.T) {
		conv := newTestConversation(t, 12)
		_, err := conv.Add(ctx, RoleUser, "first") // 5 tokens
		require.NoError(t, err)
		_, err = conv.Add(ctx, RoleAssistant, "second") // 6 tokens
		require.NoError(t, err)

		result, err := conv.Add(ctx, RoleUser, "third") // 5 tokens, evicts "first"
		require.NoError(t, err)
		require.Len(t, result.Evicted, 1)

		history := conv.History()
		assert.NotContains(t, history, "first")
		assert.Contains(t, history, "second")
		assert.Contains(t, history, "third")

		messages := conv.Messages()
		require.Len(t, messages, 2)
		assert.Equal(t, "second", messages[0].Content)
		assert.Equal(t, "third", messages[1].Content)
	})

	t.Run("messages stay aligned with window entries", func(t *testing.T) {
		conv := newTestConversation(t, 10)
		inputs := []string{"aaaa", "bbb", "cc", "ddddd", "e"}
		for _, in := range inputs {
			_, err := conv.Add(ctx, RoleUser, in)
			require.NoError(t, err)
		}

		messages := conv.Messages()
		entries := conv.Window().Snapshot()
		require.Equal(t, len(entries), len(messages))
		for i := range messages {
			assert.Equal(t, entries[i].Seq, messages[i].Seq)
			assert.Equal(t, entries[i].Cost, messages[i].Cost)
			assert.Equal(t, len(messages[i].Content), messages[i].Cost)
		}
	})

	t.Run("oversized content rejected without state change", func(t *testing.T) {
		conv := newTestConversation(t, 5)
		_, err := conv.Add(ctx, RoleUser, "this is far too long")
		require.Error(t, err)
		assert.True(t, window.IsEntryExceedsCapacity(err))
		assert.Empty(t, conv.Messages())
		assert.Equal(t, 0, conv.TotalCost())
	})

	t.Run("invalid role rejected", func(t *testing.T) {
		conv := newTestConversation(t, 100)
		_, err := conv.Add(ctx, Role("narrator"), "once upon a time")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid role")
	})
}

func TestConversationClear(t *testing.T) {
	conv := newTestConversation(t, 100)
	_, err := conv.Add(context.Background(), RoleUser, "Hello")
	require.NoError(t, err)

	conv.Clear()
	assert.Empty(t, conv.Messages())
	assert.Equal(t, 0, conv.TotalCost())
	assert.Equal(t, 100, conv.RemainingCapacity())
	assert.Empty(t, conv.History())
}

func TestConversationTranscript(t *testing.T) {
	conv := newTestConversation(t, 100)
	_, err := conv.Add(context.Background(), RoleSystem, "be helpful")
	require.NoError(t, err)

	tr := conv.Transcript()
	assert.Equal(t, 100, tr.Capacity)
	require.Len(t, tr.Entries, 1)
	assert.Equal(t, RoleSystem, tr.Entries[0].Role)
	assert.Equal(t, len("be helpful"), tr.TotalCost)
}

func TestConversationSpendLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("spend within budget passes", func(t *testing.T) {
		clearEnv(t)
		conv, err := NewConversationWithCounter(oneTokenPerRune(),
			config.SetCapacity(1000),
			config.SetTokensPerMinute(600),
			config.SetLogLevel(utils.LogLevelOff),
		)
		require.NoError(t, err)

		_, err = conv.Add(ctx, RoleUser, strings.Repeat("a", 100))
		require.NoError(t, err)
	})

	t.Run("canceled context aborts the wait", func(t *testing.T) {
		clearEnv(t)
		conv, err := NewConversationWithCounter(oneTokenPerRune(),
			config.SetCapacity(1000),
			config.SetTokensPerMinute(120),
			config.SetLogLevel(utils.LogLevelOff),
		)
		require.NoError(t, err)

		// Drain the burst budget.
		_, err = conv.Add(ctx, RoleUser, strings.Repeat("a", 120))
		require.NoError(t, err)

		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err = conv.Add(canceled, RoleUser, strings.Repeat("b", 60))
		require.Error(t, err)
		// The failed add must not have touched the window.
		assert.Len(t, conv.Messages(), 1)
	})
}
