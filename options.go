package ctxwin

import (
	"github.com/ayush844/ctxwin/config"
	"github.com/ayush844/ctxwin/utils"
)

// Re-exports so callers can configure a conversation without importing
// the config and utils packages directly.

type ConfigOption = config.ConfigOption

var (
	SetCapacity        = config.SetCapacity
	SetModel           = config.SetModel
	SetCounter         = config.SetCounter
	SetCharsPerToken   = config.SetCharsPerToken
	SetTokensPerMinute = config.SetTokensPerMinute
	SetLogLevel        = config.SetLogLevel
)

const (
	CounterHeuristic = config.CounterHeuristic
	CounterEncoding  = config.CounterEncoding
)

type LogLevel = utils.LogLevel

const (
	LogLevelOff   = utils.LogLevelOff
	LogLevelError = utils.LogLevelError
	LogLevelWarn  = utils.LogLevelWarn
	LogLevelInfo  = utils.LogLevelInfo
	LogLevelDebug = utils.LogLevelDebug
)
