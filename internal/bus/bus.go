// Package bus carries the command/event surface between the replay service
// and its collaborators (capture engine, review UI, persistence). It is
// in-process: collaborators publish commands and subscribe to events, and the
// service replies per command and broadcasts progress.
package bus

import (
	"context"
	"sync"

	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

// Command is one inbound request. ID is collaborator-assigned and echoed in
// the Reply; redelivered IDs are dropped by the dedupe cache.
type Command struct {
	ID   string
	Name string // protocol.Cmd*

	// START_PLAYBACK payload.
	Steps           []protocol.StepRecord
	ContinueOnError bool
}

// Reply is the direct response to one command.
type Reply struct {
	CommandID string
	OK        bool
	Code      string // protocol error code when !OK
	Detail    string
	Status    *protocol.Status // GET_STATUS result
	SessionID string           // set by START_PLAYBACK
}

// Event is a broadcast notification. Exactly one payload field is set,
// matching Name.
type Event struct {
	Name             string // protocol.Event*
	StepRecorded     *protocol.StepRecord
	StepComplete     *protocol.StepComplete
	PlaybackComplete *protocol.PlaybackComplete
}

// EventHandler receives broadcast events. Handlers must not block.
type EventHandler func(Event)

// MessageBus routes commands to the replay service and broadcasts events to
// subscribers.
type MessageBus struct {
	commands chan Command
	replies  chan Reply

	subscribers map[string]EventHandler
	subMu       sync.RWMutex

	closeOnce sync.Once
}

func New() *MessageBus {
	return &MessageBus{
		commands:    make(chan Command, 100),
		replies:     make(chan Reply, 100),
		subscribers: make(map[string]EventHandler),
	}
}

// PublishCommand queues a command for the service.
func (mb *MessageBus) PublishCommand(cmd Command) {
	mb.commands <- cmd
}

// ConsumeCommand blocks until a command is available or ctx is cancelled.
func (mb *MessageBus) ConsumeCommand(ctx context.Context) (Command, bool) {
	select {
	case cmd, ok := <-mb.commands:
		return cmd, ok
	case <-ctx.Done():
		return Command{}, false
	}
}

// PublishReply queues a reply for the command's sender.
func (mb *MessageBus) PublishReply(r Reply) {
	mb.replies <- r
}

// ConsumeReply blocks until a reply is available or ctx is cancelled.
func (mb *MessageBus) ConsumeReply(ctx context.Context) (Reply, bool) {
	select {
	case r, ok := <-mb.replies:
		return r, ok
	case <-ctx.Done():
		return Reply{}, false
	}
}

// Subscribe registers an event subscriber under id, replacing any previous
// handler with the same id.
func (mb *MessageBus) Subscribe(id string, handler EventHandler) {
	mb.subMu.Lock()
	defer mb.subMu.Unlock()
	mb.subscribers[id] = handler
}

// Unsubscribe removes an event subscriber.
func (mb *MessageBus) Unsubscribe(id string) {
	mb.subMu.Lock()
	defer mb.subMu.Unlock()
	delete(mb.subscribers, id)
}

// Broadcast sends an event to all subscribers.
func (mb *MessageBus) Broadcast(event Event) {
	mb.subMu.RLock()
	defer mb.subMu.RUnlock()
	for _, handler := range mb.subscribers {
		handler(event)
	}
}

// Close shuts down the bus.
func (mb *MessageBus) Close() {
	mb.closeOnce.Do(func() {
		close(mb.commands)
		close(mb.replies)
	})
}
