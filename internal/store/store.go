// Package store defines persistence for recorded step lists. The review UI
// and capture engine exchange steps as files; the replay service only needs
// load and save.
package store

import "github.com/nextlevelbuilder/stepreplay/pkg/protocol"

// StepStore persists one ordered step list.
type StepStore interface {
	Load() ([]protocol.StepRecord, error)
	Save(steps []protocol.StepRecord) error
}
