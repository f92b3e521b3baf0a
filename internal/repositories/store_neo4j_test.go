package repositories_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/stretchr/testify/require"
)

type call struct {
	statement string
	params    map[string]any
	write     bool
	inTx      bool
}

// fakeGateway records statements and answers them with respond.
type fakeGateway struct {
	mu      sync.Mutex
	calls   []call
	inTx    bool
	parent  *fakeGateway
	respond func(statement string, params map[string]any) ([]storage.Record, error)
}

func (g *fakeGateway) root() *fakeGateway {
	if g.parent != nil {
		return g.parent
	}
	return g
}

func (g *fakeGateway) record(statement string, params map[string]any, write bool) ([]storage.Record, error) {
	root := g.root()
	root.mu.Lock()
	root.calls = append(root.calls, call{statement: statement, params: params, write: write, inTx: g.inTx})
	root.mu.Unlock()

	if root.respond == nil {
		return nil, nil
	}
	return root.respond(statement, params)
}

func (g *fakeGateway) Query(_ context.Context, statement string, params map[string]any) ([]storage.Record, error) {
	return g.record(statement, params, false)
}

func (g *fakeGateway) Write(_ context.Context, statement string, params map[string]any) ([]storage.Record, error) {
	return g.record(statement, params, true)
}

func (g *fakeGateway) Transact(ctx context.Context, fn func(ctx context.Context, gw storage.Gateway) error) error {
	if g.inTx {
		return fn(ctx, g)
	}
	return fn(ctx, &fakeGateway{inTx: true, parent: g})
}

func TestNeo4jEnsureSchema(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	require.NoError(t, repositories.NewNeo4jStore(gw).EnsureSchema(context.Background()))

	var joined strings.Builder
	for _, c := range gw.calls {
		require.True(t, c.write)
		joined.WriteString(c.statement)
	}
	for _, name := range []string{"user_username", "user_email", "likes_pair", "follows_pair", "reward_user"} {
		require.Contains(t, joined.String(), name)
	}
}

func TestNeo4jPostRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	gw := &fakeGateway{respond: func(statement string, params map[string]any) ([]storage.Record, error) {
		if params["id"] != "p1" {
			return nil, nil
		}
		return []storage.Record{{
			"p": map[string]any{
				"id": "p1", "title": "Hello", "content": "world", "author_id": "u1",
				"created_at": created, "is_flagged": true,
			},
			"author_name": "alice",
		}}, nil
	}}
	posts := repositories.NewNeo4jStore(gw).Posts()

	view, err := posts.GetPostView(ctx, "p1")
	require.NoError(t, err)
	require.Equal(t, "alice", view.AuthorName)
	require.Equal(t, "Hello", view.Title)
	require.True(t, view.IsFlagged)
	require.Equal(t, created, view.CreatedAt)

	_, err = posts.GetPostByID(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = posts.CreatePost(ctx, &models.Post{Title: "t", Content: "c", AuthorID: "ghost"})
	require.ErrorIs(t, err, storage.ErrMissingReference)

	changed, err := posts.SetFlagged(ctx, "missing", true)
	require.NoError(t, err)
	require.False(t, changed)

	found, err := posts.SearchPosts(ctx, "  ")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestNeo4jSearchIsCaseFolded(t *testing.T) {
	t.Parallel()
	gw := &fakeGateway{}
	_, err := repositories.NewNeo4jStore(gw).Posts().SearchPosts(context.Background(), "HeLLo")
	require.NoError(t, err)
	require.Len(t, gw.calls, 1)
	require.Equal(t, "hello", gw.calls[0].params["q"])
	require.Contains(t, gw.calls[0].statement, "toLower(p.title) CONTAINS $q")
}

func TestNeo4jLikePair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := &fakeGateway{respond: func(statement string, _ map[string]any) ([]storage.Record, error) {
		if strings.Contains(statement, "CREATE (u)-[:LIKES") {
			return []storage.Record{{"id": "p1"}}, nil
		}
		if strings.Contains(statement, "DELETE l") {
			return []storage.Record{{"deleted": int64(0)}}, nil
		}
		return nil, nil
	}}
	likes := repositories.NewNeo4jStore(gw).Likes()

	require.NoError(t, likes.CreateLike(ctx, &models.Like{UserID: "u1", PostID: "p1"}))
	require.Equal(t, "u1:p1", gw.calls[0].params["pair"])

	require.ErrorIs(t, likes.DeleteLike(ctx, "u1", "p1"), storage.ErrNotFound)
}

func TestNeo4jTransactBindsRepositories(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	gw := &fakeGateway{respond: func(string, map[string]any) ([]storage.Record, error) {
		return []storage.Record{{"points": int64(5)}}, nil
	}}
	store := repositories.NewNeo4jStore(gw)
	boom := errors.New("boom")

	err := store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Rewards().Award(ctx, "u1", 5); err != nil {
			return err
		}
		return tx.Transact(ctx, func(ctx context.Context, inner repositories.Store) error {
			_, err := inner.Rewards().Balance(ctx, "u1")
			require.NoError(t, err)
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	require.Len(t, gw.calls, 2)
	for _, c := range gw.calls {
		require.True(t, c.inTx, c.statement)
	}
}

func TestNeo4jRejectsMistypedRecords(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	gw := &fakeGateway{respond: func(statement string, _ map[string]any) ([]storage.Record, error) {
		switch {
		case strings.Contains(statement, "count(l) AS likes"):
			return []storage.Record{{"likes": "seven"}}, nil
		case strings.Contains(statement, "DELETE l"):
			return []storage.Record{{"deleted": nil}}, nil
		}
		return []storage.Record{{
			"p":           map[string]any{"id": "p1", "title": "Hello", "content": "x", "author_id": "u1", "is_flagged": false},
			"author_name": "alice",
		}}, nil
	}}
	store := repositories.NewNeo4jStore(gw)

	_, err := store.Posts().GetPostView(ctx, "p1")
	require.ErrorIs(t, err, storage.ErrQuery)
	require.ErrorContains(t, err, "created_at")

	_, err = store.Likes().CountLikes(ctx, "p1")
	require.ErrorIs(t, err, storage.ErrQuery)

	err = store.Likes().DeleteLike(ctx, "u1", "p1")
	require.ErrorIs(t, err, storage.ErrQuery)
}
