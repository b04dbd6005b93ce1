package directory

import "context"

type cacheBypassContextKey struct{}

// WithCacheBypass marks the context so ListItems skips both cache tiers
// and fetches straight from the repository, without writing back. Used by
// the admin UI's force-refresh preview.
func WithCacheBypass(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cacheBypassContextKey{}, true)
}

func cacheBypassFromContext(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	bypass, _ := ctx.Value(cacheBypassContextKey{}).(bool)
	return bypass
}
