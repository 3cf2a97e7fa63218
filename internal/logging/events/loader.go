package events

import "github.com/atomicstack/node-browser/internal/logging"

type LoaderTracer struct{}

type QueueTracer struct{}

type FrameTracer struct{}

var (
	Loader = LoaderTracer{}
	Queue  = QueueTracer{}
	Frame  = FrameTracer{}
)

func (LoaderTracer) Dispatch(viewID, nodeID string, generation uint64) {
	logging.Trace("loader.dispatch", map[string]interface{}{"view": viewID, "node": nodeID, "generation": generation})
}

func (LoaderTracer) CacheHit(viewID, nodeID string, generation uint64) {
	logging.Trace("loader.cache-hit", map[string]interface{}{"view": viewID, "node": nodeID, "generation": generation})
}

func (LoaderTracer) Supersede(viewID string, generation uint64) {
	logging.Trace("loader.supersede", map[string]interface{}{"view": viewID, "generation": generation})
}

func (LoaderTracer) Deliver(viewID, nodeID string, generation uint64) {
	logging.Trace("loader.deliver", map[string]interface{}{"view": viewID, "node": nodeID, "generation": generation})
}

func (LoaderTracer) Stale(viewID string, generation, current uint64) {
	logging.Trace("loader.stale", map[string]interface{}{"view": viewID, "generation": generation, "current": current})
}

func (QueueTracer) Drain(count int) {
	if count == 0 {
		return
	}
	logging.Trace("queue.drain", map[string]interface{}{"count": count})
}

func (QueueTracer) ActionPanic(err error) {
	logging.Trace("queue.action.panic", map[string]interface{}{"error": errString(err)})
}

func (FrameTracer) Overrun(frame uint64, elapsedMillis int64) {
	logging.Trace("frame.overrun", map[string]interface{}{"frame": frame, "elapsed_ms": elapsedMillis})
}
