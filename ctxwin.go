// Package ctxwin tracks how much of a model's context window a
// conversation has consumed. It wraps a token-budget window that
// evicts the oldest content first, together with the counters that
// turn message text into token costs.
package ctxwin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ayush844/ctxwin/config"
	"github.com/ayush844/ctxwin/tokens"
	"github.com/ayush844/ctxwin/utils"
	"github.com/ayush844/ctxwin/window"
)

// Type aliases to bridge the root and window packages.
type (
	Role         = window.Role
	Entry        = window.Entry
	AppendResult = window.AppendResult
)

const (
	RoleSystem    = window.RoleSystem
	RoleUser      = window.RoleUser
	RoleAssistant = window.RoleAssistant
)

// Message is one conversation turn with its content and the cost the
// counter assigned to it. Seq matches the window entry's sequence.
type Message struct {
	Role    Role
	Content string
	Cost    int
	Seq     uint64
}

// Conversation binds a counter and a budget window together: each Add
// counts the content, spends it against the optional rate limiter, and
// appends it to the window, dropping the oldest turns when the window
// overflows.
type Conversation struct {
	mu       sync.Mutex
	win      *window.Window
	counter  tokens.Counter
	limiter  *tokens.SpendLimiter
	logger   utils.Logger
	messages []Message
}

// NewConversation builds a conversation from the environment config
// plus any options. Capacity zero derives the window size from the
// model's known context window.
func NewConversation(opts ...config.ConfigOption) (*Conversation, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	counter, err := counterFor(cfg)
	if err != nil {
		return nil, err
	}
	return newConversation(cfg, counter)
}

// NewConversationWithCounter is like NewConversation but uses the
// caller's counter instead of one built from the config.
func NewConversationWithCounter(counter tokens.Counter, opts ...config.ConfigOption) (*Conversation, error) {
	if counter == nil {
		return nil, fmt.Errorf("counter must not be nil")
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	config.ApplyOptions(cfg, opts...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return newConversation(cfg, counter)
}

func newConversation(cfg *config.Config, counter tokens.Counter) (*Conversation, error) {
	logger := utils.NewLogger(cfg.LogLevel)

	capacity := cfg.Capacity
	if capacity == 0 {
		capacity = tokens.GetModelLimit(cfg.Model)
		logger.Debug("derived capacity from model", "model", cfg.Model, "capacity", capacity)
	}

	win, err := window.New(capacity, logger)
	if err != nil {
		return nil, err
	}

	var limiter *tokens.SpendLimiter
	if cfg.TokensPerMinute > 0 {
		limiter = tokens.NewSpendLimiter(cfg.TokensPerMinute)
	}

	return &Conversation{
		win:     win,
		counter: counter,
		limiter: limiter,
		logger:  logger,
	}, nil
}

func counterFor(cfg *config.Config) (tokens.Counter, error) {
	switch cfg.Counter {
	case config.CounterEncoding:
		counter, err := tokens.NewEncodingCounter(cfg.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create encoding counter: %w", err)
		}
		return counter, nil
	default:
		return tokens.NewEstimatingCounterWithRatio(cfg.CharsPerToken), nil
	}
}

// Add counts content, waits for spend budget if a limiter is
// configured, and appends the turn to the window. The context is
// honored only while waiting on the limiter; the window mutation
// itself is synchronous.
func (c *Conversation) Add(ctx context.Context, role Role, content string) (AppendResult, error) {
	if !role.Valid() {
		return AppendResult{}, fmt.Errorf("invalid role: %q", role)
	}

	cost := c.counter.Count(content)
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, cost); err != nil {
			return AppendResult{}, err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	result, err := c.win.Append(role, cost)
	if err != nil {
		return AppendResult{}, err
	}

	// Eviction is strictly oldest-first, so evicted turns are a prefix
	// of the retained messages.
	c.messages = c.messages[len(result.Evicted):]
	c.messages = append(c.messages, Message{
		Role:    role,
		Content: content,
		Cost:    cost,
		Seq:     result.Entry.Seq,
	})

	c.logger.Debug("added message",
		"role", role, "cost", cost,
		"evicted", len(result.Evicted), "total_cost", result.TotalCost)
	return result, nil
}

// History renders the retained turns as "role: content" lines, oldest
// first.
func (c *Conversation) History() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, msg := range c.messages {
		fmt.Fprintf(&b, "%s: %s\n", msg.Role, msg.Content)
	}
	return b.String()
}

// Messages returns a copy of the retained turns, oldest first.
func (c *Conversation) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.messages...)
}

// TotalCost returns the summed cost of the retained turns.
func (c *Conversation) TotalCost() int {
	return c.win.TotalCost()
}

// RemainingCapacity returns how much cost the window can still take
// without evicting.
func (c *Conversation) RemainingCapacity() int {
	return c.win.RemainingCapacity()
}

// Capacity returns the window capacity.
func (c *Conversation) Capacity() int {
	return c.win.Capacity()
}

// Clear disposes of all retained turns.
func (c *Conversation) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = nil
	c.win.Clear()
}

// Window exposes the underlying budget window for direct bookkeeping.
func (c *Conversation) Window() *window.Window {
	return c.win
}

// Transcript exports the underlying window state.
func (c *Conversation) Transcript() window.Transcript {
	return c.win.Transcript()
}
