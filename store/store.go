// Package store persists the workbench state as one JSON document.
package store

import (
	"context"

	"github.com/esporykhin/ai-product-framework/framework"
)

// Key is the storage key the browser build used; kept so exported
// localStorage dumps load unchanged.
const Key = "ai_framework_data_v7_clean"

// Store loads and saves the whole state. Load returns the default state
// when nothing was saved yet.
type Store interface {
	Load(ctx context.Context) (framework.State, error)
	Save(ctx context.Context, state framework.State) error
	Reset(ctx context.Context) error
}

func decode(data []byte) (framework.State, error) {
	if len(data) == 0 {
		return framework.DefaultState(), nil
	}
	return framework.DecodeState(data)
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*RedisStore)(nil)
)
