package statesync_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstanikk/dopamine/internal/api"
	"github.com/rstanikk/dopamine/internal/kv"
	"github.com/rstanikk/dopamine/internal/models"
	"github.com/rstanikk/dopamine/internal/statesync"
)

func TestHTTPRemoteAgainstSyncHandler(t *testing.T) {
	ctx := context.Background()

	newServer := func(store kv.Store) *httptest.Server {
		handler := api.NewSyncHandler(store, nil)
		mux := http.NewServeMux()
		mux.HandleFunc("/api/sync", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				handler.GetState(w, r)
			case http.MethodPost:
				handler.PostState(w, r)
			}
		})
		return httptest.NewServer(mux)
	}

	t.Run("fetch of an empty server yields nil", func(t *testing.T) {
		server := newServer(kv.NewMemory())
		defer server.Close()
		remote := statesync.NewHTTPRemote(server.URL, server.Client())

		state, err := remote.Fetch(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
	})

	t.Run("push then fetch round-trips", func(t *testing.T) {
		server := newServer(kv.NewMemory())
		defer server.Close()
		remote := statesync.NewHTTPRemote(server.URL, server.Client())

		pushed := &models.AppState{Projects: []models.Project{{ID: "p1", Name: "Wedding edits"}}}
		require.NoError(t, remote.Push(ctx, pushed))

		fetched, err := remote.Fetch(ctx)
		require.NoError(t, err)
		require.NotNil(t, fetched)
		require.Len(t, fetched.Projects, 1)
		assert.Equal(t, "Wedding edits", fetched.Projects[0].Name)
	})

	t.Run("push without a storage backend still succeeds", func(t *testing.T) {
		server := newServer(kv.NewDisabled())
		defer server.Close()
		remote := statesync.NewHTTPRemote(server.URL, server.Client())

		require.NoError(t, remote.Push(ctx, &models.AppState{}))

		state, err := remote.Fetch(ctx)
		require.NoError(t, err)
		assert.Nil(t, state)
	})
}
