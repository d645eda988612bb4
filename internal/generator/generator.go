package generator

import (
	"context"
	"strings"
	"time"
)

// Source says how a commit message was produced.
type Source string

const (
	// SourceSummarized means the external service summarized the diff.
	SourceSummarized Source = "summarized"
	// SourceFallback means the message is the local wall-clock timestamp.
	SourceFallback Source = "fallback"
)

// Message is the outcome of message generation. The fallback branch is a
// first-class result, not an error: generation always yields some message.
type Message struct {
	Text           string
	Source         Source
	FallbackReason string
}

// TimestampFormat matches the layout used for fallback commit messages.
const TimestampFormat = "2006-01-02 15:04:05"

// ReasonNoCredential is the fallback reason when no API key is configured.
// This path is the expected default, not a failure.
const ReasonNoCredential = "no API key configured"

// Generator produces one-line commit messages from diff text. With no API
// key configured it always takes the timestamp path and never goes on the
// network.
type Generator struct {
	client *openAIClient
	now    func() time.Time
}

// Config holds the summarization settings, usually from env.
type Config struct {
	APIKey   string
	Model    string
	Endpoint string
	Timeout  time.Duration
}

// New builds a Generator. An empty APIKey disables remote summarization.
func New(cfg Config) *Generator {
	g := &Generator{now: time.Now}
	if cfg.APIKey != "" {
		g.client = newOpenAIClient(cfg)
	}
	return g
}

// Generate returns a commit message for the given diff text. A single
// attempt is made against the summarization service; any failure falls back
// to the timestamp.
func (g *Generator) Generate(ctx context.Context, diff string) Message {
	if g.client == nil {
		return g.fallback(ReasonNoCredential)
	}

	summary, err := g.client.Summarize(ctx, diff)
	if err != nil {
		return g.fallback(err.Error())
	}

	text := singleLine(summary)
	if text == "" {
		return g.fallback("service returned an empty summary")
	}

	return Message{Text: text, Source: SourceSummarized}
}

func (g *Generator) fallback(reason string) Message {
	return Message{
		Text:           g.now().Format(TimestampFormat),
		Source:         SourceFallback,
		FallbackReason: reason,
	}
}

// singleLine trims surrounding whitespace and collapses any internal
// newlines so the result is usable as a one-line commit message.
func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
