package events

import "github.com/atomicstack/node-browser/internal/logging"

type BackendTracer struct{}

type ProviderTracer struct{}

var (
	Backend  = BackendTracer{}
	Provider = ProviderTracer{}
)

func (BackendTracer) Watch(path string) {
	logging.Trace("backend.watch", map[string]interface{}{"path": path})
}

func (BackendTracer) Change(path, op string) {
	logging.Trace("backend.change", map[string]interface{}{"path": path, "op": op})
}

func (BackendTracer) Reload(viewID, source string, err error) {
	logging.Trace("backend.reload", map[string]interface{}{"view": viewID, "source": source, "error": errString(err)})
}

func (ProviderTracer) Open(kind, source string) {
	logging.Trace("provider.open", map[string]interface{}{"kind": kind, "source": source})
}

func (ProviderTracer) OpenFailed(source string, err error) {
	logging.Trace("provider.open.failed", map[string]interface{}{"source": source, "error": errString(err)})
}
