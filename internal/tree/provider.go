package tree

// Provider is the capability every browsed entity implements. Entity kinds
// (packages, types, tables, columns, ...) are variants of this interface
// rather than subtypes of Node.
//
// Implementations must be safe to call from any goroutine and must not depend
// on UI state. DetailText may be slow.
type Provider interface {
	Label() string
	Children() ([]Provider, error)
	DetailText() (string, error)
}

// ProviderFunc adapts plain functions into a Provider. Useful for synthetic
// group nodes.
type ProviderFunc struct {
	Name     string
	ListFunc func() ([]Provider, error)
	TextFunc func() (string, error)
}

func (p ProviderFunc) Label() string {
	return p.Name
}

func (p ProviderFunc) Children() ([]Provider, error) {
	if p.ListFunc == nil {
		return nil, nil
	}
	return p.ListFunc()
}

func (p ProviderFunc) DetailText() (string, error) {
	if p.TextFunc == nil {
		return p.Name, nil
	}
	return p.TextFunc()
}
