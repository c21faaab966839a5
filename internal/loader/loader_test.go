package loader

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"memories/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsers struct {
	mu    sync.Mutex
	calls [][]string
	users map[string]*models.User
	err   error
}

func (f *fakeUsers) GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, ids)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]*models.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

func TestUsersBatchesAndSkipsMissing(t *testing.T) {
	store := &fakeUsers{users: map[string]*models.User{
		"u1": {ID: "u1", Name: "Ana"},
		"u2": {ID: "u2", Name: "Bo"},
	}}
	loaders := NewLoaders(store)

	users := loaders.Users(context.Background(), []string{"u1", "u2", "gone"})
	require.Len(t, users, 2)
	assert.Equal(t, "Ana", users["u1"].Name)
	assert.Len(t, store.calls, 1)

	// Cached for the loader's lifetime
	again := loaders.Users(context.Background(), []string{"u1"})
	assert.Equal(t, "Ana", again["u1"].Name)
	assert.Len(t, store.calls, 1)
}

func TestUsersStoreErrorYieldsEmptyAndIsLogged(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	loaders := NewLoaders(&fakeUsers{err: errors.New("boom")})
	assert.Empty(t, loaders.Users(context.Background(), []string{"u1"}))
	assert.Contains(t, buf.String(), "boom")

	buf.Reset()
	assert.Empty(t, loaders.Users(context.Background(), nil))
	assert.Empty(t, buf.String())
}

func TestFirstError(t *testing.T) {
	boom := errors.New("boom")
	assert.NoError(t, firstError(nil))
	assert.NoError(t, firstError([]error{nil, nil}))
	assert.Equal(t, boom, firstError([]error{nil, boom, errors.New("later")}))
}

func TestMiddlewareAttachesLoaders(t *testing.T) {
	var seen *Loaders
	handler := Middleware(&fakeUsers{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = For(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotNil(t, seen)
	assert.Nil(t, For(context.Background()))
}
