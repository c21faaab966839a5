package loader

import (
	"context"
	"log"
	"net/http"
	"time"

	"memories/internal/models"

	"github.com/graph-gophers/dataloader"
)

type contextKey string

const key = contextKey("loaders")

// UserReader is the store capability the loaders batch against.
type UserReader interface {
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// Loaders holds the per-request data loaders.
type Loaders struct {
	UserByID *dataloader.Loader
}

// NewLoaders builds a fresh set of loaders. Each set caches for its own
// lifetime, so one is created per request.
func NewLoaders(store UserReader) *Loaders {
	batchFn := func(ctx context.Context, keys dataloader.Keys) []*dataloader.Result {
		ids := keys.Keys()

		users, err := store.GetUsersByIDs(ctx, ids)
		results := make([]*dataloader.Result, len(keys))
		if err != nil {
			for i := range results {
				results[i] = &dataloader.Result{Error: err}
			}
			return results
		}

		// Results must line up with keys
		for i, id := range ids {
			if u, ok := users[id]; ok {
				results[i] = &dataloader.Result{Data: u}
			} else {
				results[i] = &dataloader.Result{}
			}
		}
		return results
	}

	return &Loaders{
		UserByID: dataloader.NewBatchedLoader(batchFn, dataloader.WithWait(time.Millisecond)),
	}
}

// Middleware injects fresh loaders into every request context.
func Middleware(store UserReader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), key, NewLoaders(store))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// For returns the loaders attached to ctx, or nil.
func For(ctx context.Context) *Loaders {
	loaders, _ := ctx.Value(key).(*Loaders)
	return loaders
}

// WithLoaders attaches loaders to ctx outside of the HTTP middleware.
func WithLoaders(ctx context.Context, loaders *Loaders) context.Context {
	return context.WithValue(ctx, key, loaders)
}

// Users resolves ids in one batch. Users that no longer exist, or that fail
// to load, are missing from the result.
func (l *Loaders) Users(ctx context.Context, ids []string) map[string]*models.User {
	users := make(map[string]*models.User, len(ids))
	if len(ids) == 0 {
		return users
	}

	values, errs := l.UserByID.LoadMany(ctx, dataloader.NewKeysFromStrings(ids))()
	if err := firstError(errs); err != nil {
		log.Printf("Failed to load users, falling back to snapshots: %v", err)
	}
	for _, v := range values {
		if u, ok := v.(*models.User); ok && u != nil {
			users[u.ID] = u
		}
	}
	return users
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
