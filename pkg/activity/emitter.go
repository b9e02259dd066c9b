package activity

import (
	"context"
	"strings"
)

// DefaultChannel is stamped on events that carry no channel.
const DefaultChannel = "props"

// Emitter delivers events to a fixed set of hooks on one channel.
type Emitter struct {
	hooks   Hooks
	channel string
}

// NewEmitter returns an emitter for hooks. An empty channel falls back to
// DefaultChannel.
func NewEmitter(channel string, hooks ...Hook) *Emitter {
	channel = strings.TrimSpace(channel)
	if channel == "" {
		channel = DefaultChannel
	}
	return &Emitter{hooks: Hooks(hooks).Compact(), channel: channel}
}

// Enabled reports whether Emit would reach any hook.
func (e *Emitter) Enabled() bool {
	return e != nil && len(e.hooks) > 0
}

func (e *Emitter) Channel() string {
	if e == nil {
		return ""
	}
	return e.channel
}

// Emit stamps the emitter's channel when event has none and notifies every
// hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if strings.TrimSpace(event.Channel) == "" {
		event.Channel = e.channel
	}
	return e.hooks.Notify(ctx, event)
}
