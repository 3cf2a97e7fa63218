package events

import "github.com/atomicstack/node-browser/internal/logging"

type NodeTracer struct{}

var Node = NodeTracer{}

func (NodeTracer) ChildrenFailed(id, label string, err error) {
	logging.Trace("node.children.failed", map[string]interface{}{"node": id, "label": label, "error": errString(err)})
}

func (NodeTracer) DetailFailed(id, label string, err error) {
	logging.Trace("node.detail.failed", map[string]interface{}{"node": id, "label": label, "error": errString(err)})
}

func (NodeTracer) Invalidate(id, label string) {
	logging.Trace("node.invalidate", map[string]interface{}{"node": id, "label": label})
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
