package store

import "context"

// Unconfigured is selected in production when no backend is configured.
// Every call fails with ErrNotConfigured so writes surface a server error.
type Unconfigured struct{}

func (Unconfigured) Name() string { return "unconfigured" }

func (Unconfigured) Close() error { return nil }

func (Unconfigured) Get(context.Context, string, string) (*Snapshot, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) GetMany(context.Context, string, []string) (map[string]*Snapshot, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) Add(context.Context, string, Document) (string, error) {
	return "", ErrNotConfigured
}

func (Unconfigured) Set(context.Context, string, string, Document) error {
	return ErrNotConfigured
}

func (Unconfigured) Update(context.Context, string, string, Document) error {
	return ErrNotConfigured
}

func (Unconfigured) Delete(context.Context, string, string) error {
	return ErrNotConfigured
}

func (Unconfigured) Query(context.Context, string, Query) ([]*Snapshot, error) {
	return nil, ErrNotConfigured
}

func (Unconfigured) DeleteAtomic(context.Context, []Ref) error {
	return ErrNotConfigured
}
