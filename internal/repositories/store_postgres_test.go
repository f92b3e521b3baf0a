package repositories_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/anonto42/daoplus/backend/internal/testutil"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store repositories.Store, name string) *models.User {
	t.Helper()
	user := &models.User{Username: name, Email: name + "@example.com", PasswordHash: "x"}
	require.NoError(t, store.Users().CreateUser(context.Background(), user))
	return user
}

func seedPost(t *testing.T, store repositories.Store, author *models.User, title, content string) *models.Post {
	t.Helper()
	post := &models.Post{Title: title, Content: content, AuthorID: author.ID}
	require.NoError(t, store.Posts().CreatePost(context.Background(), post))
	return post
}

func TestUserUniqueness(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	seedUser(t, store, "alice")

	err := store.Users().CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	err = store.Users().CreateUser(ctx, &models.User{Username: "other", Email: "alice@example.com", PasswordHash: "x"})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	_, err = store.Users().GetUserByUsername(ctx, "nobody")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestLikeIsUniquePerPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	post := seedPost(t, store, alice, "t", "c")

	require.NoError(t, store.Likes().CreateLike(ctx, &models.Like{UserID: bob.ID, PostID: post.ID}))
	err := store.Likes().CreateLike(ctx, &models.Like{UserID: bob.ID, PostID: post.ID})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	err = store.Likes().CreateLike(ctx, &models.Like{UserID: bob.ID, PostID: "no-such-post"})
	require.ErrorIs(t, err, storage.ErrMissingReference)

	require.NoError(t, store.Likes().CreateLike(ctx, &models.Like{UserID: alice.ID, PostID: post.ID}))
	count, err := store.Likes().CountLikes(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	likes, err := store.Likes().ListLikesForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, likes, 2)
}

func TestFollowIsUniquePerPair(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")

	require.NoError(t, store.Follows().CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, FollowedID: bob.ID}))
	err := store.Follows().CreateFollow(ctx, &models.Follow{FollowerID: alice.ID, FollowedID: bob.ID})
	require.ErrorIs(t, err, storage.ErrDuplicate)

	require.NoError(t, store.Follows().CreateFollow(ctx, &models.Follow{FollowerID: bob.ID, FollowedID: alice.ID}))

	followers, err := store.Follows().CountFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, followers)
	following, err := store.Follows().CountFollowing(ctx, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, following)
}

func TestSetFlaggedIsCompareAndSet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	post := seedPost(t, store, alice, "t", "c")

	changed, err := store.Posts().SetFlagged(ctx, post.ID, true)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = store.Posts().SetFlagged(ctx, post.ID, true)
	require.NoError(t, err)
	require.False(t, changed)

	flagged, err := store.Posts().ListFlaggedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, "alice", flagged[0].AuthorName)

	changed, err = store.Posts().SetFlagged(ctx, post.ID, false)
	require.NoError(t, err)
	require.True(t, changed)

	changed, err = store.Posts().SetFlagged(ctx, "no-such-post", true)
	require.NoError(t, err)
	require.False(t, changed)
}

func TestSearchPostsEscapesWildcards(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	seedPost(t, store, alice, "snake_case names", "about identifiers")
	seedPost(t, store, alice, "snakeXcase", "no underscore here")
	seedPost(t, store, alice, `back\slash`, "path")

	found, err := store.Posts().SearchPosts(ctx, "_case")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "snake_case names", found[0].Title)

	found, err = store.Posts().SearchPosts(ctx, `k\s`)
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = store.Posts().SearchPosts(ctx, "IDENTIFIERS")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = store.Posts().SearchPosts(ctx, "   ")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestRewardLedgerRows(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")

	require.NoError(t, store.Rewards().Award(ctx, alice.ID, 10))
	require.NoError(t, store.Rewards().Award(ctx, alice.ID, 5))

	ok, err := store.Rewards().Deduct(ctx, alice.ID, 16)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = store.Rewards().Deduct(ctx, alice.ID, 15)
	require.NoError(t, err)
	require.True(t, ok)

	points, err := store.Rewards().Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, points)

	err = store.Rewards().Award(ctx, "no-such-user", 1)
	require.ErrorIs(t, err, storage.ErrMissingReference)
}

func TestNotificationsDeleteForTarget(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	post := seedPost(t, store, alice, "t", "c")

	for _, target := range []string{post.ID, post.ID, alice.ID} {
		require.NoError(t, store.Notifications().CreateNotification(ctx, &models.Notification{
			RecipientID: alice.ID,
			Action:      models.ActionLiked,
			TargetID:    target,
			TargetType:  models.TargetPost,
		}))
	}

	require.NoError(t, store.Notifications().DeleteForTarget(ctx, post.ID))
	left, err := store.Notifications().ListForRecipient(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, alice.ID, left[0].TargetID)
}

func TestTransactRollsBackAndJoins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	alice := seedUser(t, store, "alice")
	boom := errors.New("boom")

	err := store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		if err := tx.Rewards().Award(ctx, alice.ID, 10); err != nil {
			return err
		}
		return tx.Transact(ctx, func(ctx context.Context, inner repositories.Store) error {
			if err := inner.Rewards().Award(ctx, alice.ID, 1); err != nil {
				return err
			}
			return boom
		})
	})
	require.ErrorIs(t, err, boom)

	points, err := store.Rewards().Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, points)

	require.NoError(t, store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		return tx.Rewards().Award(ctx, alice.ID, 3)
	}))
	points, err = store.Rewards().Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 3, points)
}
