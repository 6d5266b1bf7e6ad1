package storage

import (
	"errors"
	"log/slog"
)

// ErrNotFound is returned by document stores for absent documents.
var ErrNotFound = errors.New("document not found")

// Outcome labels for adapter operations.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultError       = "error"
	ResultUnavailable = "unavailable"
)

// OpRecorder counts adapter outcomes, e.g. as Prometheus counters.
type OpRecorder interface {
	RecordStoreOp(collection, op, result string)
}

// Observer reports adapter outcomes for one collection. Callers never see
// these errors; they exist only in the developer log and in metrics.
type Observer struct {
	collection string
	recorder   OpRecorder
}

// NewObserver creates an Observer. recorder may be nil.
func NewObserver(collection string, recorder OpRecorder) Observer {
	return Observer{collection: collection, recorder: recorder}
}

// Collection returns the observed collection name.
func (o Observer) Collection() string {
	return o.collection
}

func (o Observer) record(op, result string) {
	if o.recorder != nil {
		o.recorder.RecordStoreOp(o.collection, op, result)
	}
}

// Unavailable logs a call made without a store client.
func (o Observer) Unavailable(op string) {
	slog.Error("store_unavailable", "collection", o.collection, "op", op)
	o.record(op, ResultUnavailable)
}

// Done classifies err and reports it. Returns true when err is nil.
func (o Observer) Done(op, id string, err error) bool {
	switch {
	case err == nil:
		o.record(op, ResultOK)
		return true
	case errors.Is(err, ErrNotFound):
		slog.Warn("store_not_found", "collection", o.collection, "op", op, "id", id)
		o.record(op, ResultNotFound)
	default:
		slog.Error("store_op_failed", "collection", o.collection, "op", op, "id", id, "error", err)
		o.record(op, ResultError)
	}
	return false
}
