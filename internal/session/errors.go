package session

import (
	"context"
	"errors"

	"github.com/nextlevelbuilder/stepreplay/internal/replay"
	"github.com/nextlevelbuilder/stepreplay/internal/resolver"
	"github.com/nextlevelbuilder/stepreplay/pkg/dom"
	"github.com/nextlevelbuilder/stepreplay/pkg/protocol"
)

var (
	// ErrResumeFailed means the execution context could not be
	// re-established after a mid-sequence teardown.
	ErrResumeFailed = errors.New("could not resume after environment teardown")

	// ErrAlreadyRunning is returned when a second playback is started
	// while one is active. One session per controlling process.
	ErrAlreadyRunning = errors.New("a playback session is already running")
)

// ErrorCode maps an action error onto the protocol taxonomy.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled):
		return protocol.ErrPlaybackCancelled
	case errors.Is(err, resolver.ErrNotFound):
		return protocol.ErrElementNotFound
	case errors.Is(err, resolver.ErrNotVisible):
		return protocol.ErrElementNotVisible
	case errors.Is(err, replay.ErrUnsupportedAction):
		return protocol.ErrUnsupportedAction
	case errors.Is(err, replay.ErrPrecondition):
		return protocol.ErrActionPrecondition
	case errors.Is(err, replay.ErrNavigationTimeout):
		return protocol.ErrNavigationTimeout
	case errors.Is(err, ErrResumeFailed), errors.Is(err, dom.ErrContextDestroyed):
		return protocol.ErrEnvironmentLost
	default:
		return protocol.ErrInternal
	}
}
