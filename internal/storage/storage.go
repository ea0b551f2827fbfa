package storage

import "dotvest/internal/model"

// Storage defines a sink for committed settlement events.
type Storage interface {
	PutEventBatch(events []model.EventRecord) error
}
