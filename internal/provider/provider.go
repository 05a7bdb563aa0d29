package provider

import (
	"errors"

	"go.uber.org/zap"
)

// ErrModelClient wraps every failure of a model call. The turn loop does not recover it.
var ErrModelClient = errors.New("model client error")

// Names accepted by config.
const (
	NameAnthropic = "anthropic"
	NameOpenAI    = "openai"
)

// emptyReplyText stands in for a stored turn with no content. Both APIs reject empty
// messages, and dropping the turn would break role alternation.
const emptyReplyText = "(no reply)"

const (
	DefaultMaxTokens   int64   = 1024
	DefaultTemperature float64 = 0
)

type settings struct {
	model       string
	maxTokens   int64
	temperature float64
	logger      *zap.Logger
}

// Option configures a model adapter.
type Option func(*settings)

func WithModel(m string) Option {
	return func(s *settings) {
		if m != "" {
			s.model = m
		}
	}
}

func WithMaxTokens(n int64) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

func WithTemperature(t float64) Option {
	return func(s *settings) { s.temperature = t }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

func newSettings(defaultModel string, opts []Option) settings {
	s := settings{
		model:       defaultModel,
		maxTokens:   DefaultMaxTokens,
		temperature: DefaultTemperature,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(&s)
	}
	return s
}
