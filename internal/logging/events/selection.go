package events

import "github.com/atomicstack/node-browser/internal/logging"

type SelectionTracer struct{}

var Selection = SelectionTracer{}

func (SelectionTracer) Change(viewID, nodeID string, generation uint64) {
	logging.Trace("selection.change", map[string]interface{}{"view": viewID, "node": nodeID, "generation": generation})
}

func (SelectionTracer) Unchanged(viewID, nodeID string) {
	logging.Trace("selection.unchanged", map[string]interface{}{"view": viewID, "node": nodeID})
}
