package events

import "github.com/atomicstack/node-browser/internal/logging"

type UITracer struct{}

type FilterTracer struct{}

type ActionTracer struct{}

type CommandTracer struct{}

var (
	UI      = UITracer{}
	Filter  = FilterTracer{}
	Action  = ActionTracer{}
	Command = CommandTracer{}
)

func (UITracer) Click(viewID, nodeID, label string, modifier bool) {
	logging.Trace("ui.click", map[string]interface{}{
		"view":     viewID,
		"node":     nodeID,
		"label":    label,
		"modifier": modifier,
	})
}

func (UITracer) Cursor(viewID string, cursor int) {
	logging.Trace("ui.cursor", map[string]interface{}{"view": viewID, "cursor": cursor})
}

func (UITracer) SwitchView(viewID string) {
	logging.Trace("ui.view.switch", map[string]interface{}{"view": viewID})
}

func (UITracer) CloseView(viewID string) {
	logging.Trace("ui.view.close", map[string]interface{}{"view": viewID})
}

func (UITracer) OpenPrompt() {
	logging.Trace("ui.open.prompt", nil)
}

func (ActionTracer) Error(err error) {
	if err == nil {
		return
	}
	logging.Trace("action.error", map[string]interface{}{"error": err.Error()})
}

func (ActionTracer) Success(info string) {
	logging.Trace("action.success", map[string]interface{}{"info": info})
}

func (FilterTracer) Cleared(viewID string) {
	logging.Trace("filter.clear", map[string]interface{}{"view": viewID})
}

// Edit records one change to a view's filter query or caret.
func (FilterTracer) Edit(viewID, op, filter string, pos int) {
	logging.Trace("filter.edit", map[string]interface{}{"view": viewID, "op": op, "filter": filter, "cursor": pos})
}

func (CommandTracer) Queue(id, label string) {
	logging.Trace("command.queue", map[string]interface{}{"id": id, "label": label})
}

func (CommandTracer) Result(id, label, msgType string) {
	logging.Trace("command.result", map[string]interface{}{"id": id, "label": label, "msg": msgType})
}

func (CommandTracer) Skip(id, label string) {
	logging.Trace("command.skip", map[string]interface{}{"id": id, "label": label})
}
