package middleware

import "github.com/aretw0/arbor/pkg/ports"

// Middleware allows wrapping a Store to add behavior.
type Middleware func(ports.Store) ports.Store

// Chain applies middlewares so that the first one listed is the outermost.
func Chain(store ports.Store, mws ...Middleware) ports.Store {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
