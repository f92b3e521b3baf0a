package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/anonto42/daoplus/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newService(t *testing.T) (*services.SocialGraphService, repositories.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	return services.NewSocialGraphService(store, zaptest.NewLogger(t)), store
}

func register(t *testing.T, svc *services.SocialGraphService, name string) *models.User {
	t.Helper()
	user, err := svc.RegisterUser(context.Background(), name, name+"@example.com", "password-"+name)
	require.NoError(t, err)
	return user
}

func balance(t *testing.T, svc *services.SocialGraphService, userID string) int64 {
	t.Helper()
	points, err := svc.Balance(context.Background(), userID)
	require.NoError(t, err)
	return points
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)

	alice := register(t, svc, "alice")
	require.NotEmpty(t, alice.ID)
	require.NotEqual(t, "password-alice", alice.PasswordHash)

	_, err := svc.RegisterUser(ctx, "alice", "other@example.com", "pw")
	require.ErrorIs(t, err, services.ErrDuplicateUser)
	require.Equal(t, services.KindConflict, services.KindOf(err))

	_, err = svc.RegisterUser(ctx, "", "x@example.com", "pw")
	require.ErrorIs(t, err, services.ErrInvalidInput)

	got, err := svc.Authenticate(ctx, "alice@example.com", "password-alice")
	require.NoError(t, err)
	require.Equal(t, alice.ID, got.ID)

	_, err = svc.Authenticate(ctx, "alice@example.com", "wrong")
	require.ErrorIs(t, err, services.ErrUnauthorized)

	_, err = svc.Authenticate(ctx, "nobody@example.com", "wrong")
	require.ErrorIs(t, err, services.ErrUnauthorized)
}

func TestCreatePostAwardsAuthor(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")

	post, err := svc.CreatePost(ctx, alice.ID, "  Hello  ", "first post")
	require.NoError(t, err)
	require.Equal(t, "Hello", post.Title)
	require.False(t, post.IsFlagged)
	require.Equal(t, services.PointsPost, balance(t, svc, alice.ID))

	view, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", view.AuthorName)

	_, err = svc.CreatePost(ctx, alice.ID, "", "no title")
	require.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.CreatePost(ctx, "missing-user", "t", "c")
	require.ErrorIs(t, err, services.ErrNotFound)
	require.Equal(t, services.PointsPost, balance(t, svc, alice.ID))
}

func TestUpdateAndDeletePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "title", "content")
	require.NoError(t, err)

	_, err = svc.UpdatePost(ctx, bob.ID, post.ID, "hijack", "x")
	require.ErrorIs(t, err, services.ErrUnauthorized)

	updated, err := svc.UpdatePost(ctx, alice.ID, post.ID, "new title", "new content")
	require.NoError(t, err)
	require.Equal(t, "new title", updated.Title)

	_, err = svc.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, bob.ID, post.ID, "nice")
	require.NoError(t, err)
	require.NoError(t, svc.FlagPost(ctx, post.ID))

	require.ErrorIs(t, svc.DeletePost(ctx, bob.ID, post.ID), services.ErrUnauthorized)
	require.NoError(t, svc.DeletePost(ctx, alice.ID, post.ID))

	_, err = svc.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, services.ErrNotFound)

	liked, err := store.Likes().HasUserLikedPost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.False(t, liked)

	comments, err := store.Comments().ListCommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, comments)

	notes, err := svc.Notifications(ctx, alice.ID)
	require.NoError(t, err)
	require.Empty(t, notes)

	require.ErrorIs(t, svc.DeletePost(ctx, alice.ID, post.ID), services.ErrNotFound)
}

func TestLikePost(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	like, err := svc.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, like.UserID)

	require.Equal(t, services.PointsPost+services.PointsLike, balance(t, svc, alice.ID))
	require.Zero(t, balance(t, svc, bob.ID))

	count, err := svc.LikeCount(ctx, post.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	notes, err := svc.Notifications(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, models.ActionLiked, notes[0].Action)
	require.Equal(t, post.ID, notes[0].TargetID)
	require.Equal(t, models.TargetPost, notes[0].TargetType)

	t.Run("second like is rejected without side effects", func(t *testing.T) {
		_, err := svc.LikePost(ctx, bob.ID, post.ID)
		require.ErrorIs(t, err, services.ErrAlreadyLiked)
		require.Equal(t, services.KindConflict, services.KindOf(err))

		require.Equal(t, services.PointsPost+services.PointsLike, balance(t, svc, alice.ID))
		count, err := svc.LikeCount(ctx, post.ID)
		require.NoError(t, err)
		require.EqualValues(t, 1, count)

		notes, err := svc.Notifications(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, notes, 1)
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := svc.LikePost(ctx, bob.ID, "no-such-post")
		require.ErrorIs(t, err, services.ErrNotFound)

		_, err = svc.LikeCount(ctx, "no-such-post")
		require.ErrorIs(t, err, services.ErrNotFound)
	})

	t.Run("unlike keeps awarded points", func(t *testing.T) {
		require.NoError(t, svc.UnlikePost(ctx, bob.ID, post.ID))
		require.ErrorIs(t, svc.UnlikePost(ctx, bob.ID, post.ID), services.ErrNotFound)

		liked, err := svc.HasLiked(ctx, bob.ID, post.ID)
		require.NoError(t, err)
		require.False(t, liked)
		require.Equal(t, services.PointsPost+services.PointsLike, balance(t, svc, alice.ID))
	})
}

func TestConcurrentLikesSucceedOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "race", "me")
	require.NoError(t, err)

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.LikePost(ctx, bob.ID, post.ID)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, services.ErrAlreadyLiked):
				conflicts++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, successes)
	require.Equal(t, workers-1, conflicts)
	require.Equal(t, services.PointsPost+services.PointsLike, balance(t, svc, alice.ID))

	notes, err := svc.Notifications(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
}

func TestFollowUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	_, err := svc.FollowUser(ctx, alice.ID, alice.ID)
	require.ErrorIs(t, err, services.ErrSelfFollow)
	require.Zero(t, balance(t, svc, alice.ID))

	_, err = svc.FollowUser(ctx, alice.ID, "no-such-user")
	require.ErrorIs(t, err, services.ErrNotFound)

	follow, err := svc.FollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Equal(t, bob.ID, follow.FollowedID)
	require.Equal(t, services.PointsFollow, balance(t, svc, alice.ID))
	require.Zero(t, balance(t, svc, bob.ID))

	notes, err := svc.Notifications(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, models.ActionFollowed, notes[0].Action)
	require.Equal(t, alice.ID, notes[0].TargetID)
	require.Equal(t, models.TargetUser, notes[0].TargetType)

	_, err = svc.FollowUser(ctx, alice.ID, bob.ID)
	require.ErrorIs(t, err, services.ErrAlreadyFollowing)
	require.Equal(t, services.PointsFollow, balance(t, svc, alice.ID))

	followers, err := svc.ListFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, followers, 1)
	require.Equal(t, "alice", followers[0].Username)

	following, err := svc.ListFollowing(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, following, 1)
	require.Equal(t, bob.ID, following[0].ID)

	_, err = svc.ListFollowers(ctx, "no-such-user")
	require.ErrorIs(t, err, services.ErrNotFound)

	require.NoError(t, svc.UnfollowUser(ctx, alice.ID, bob.ID))
	require.ErrorIs(t, svc.UnfollowUser(ctx, alice.ID, bob.ID), services.ErrNotFound)

	isFollowing, err := svc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.False(t, isFollowing)
}

func TestComments(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	comment, err := svc.CreateComment(ctx, bob.ID, post.ID, "great post")
	require.NoError(t, err)
	require.Equal(t, services.PointsComment, balance(t, svc, bob.ID))

	notes, err := svc.Notifications(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	require.Equal(t, models.ActionCommented, notes[0].Action)

	_, err = svc.CreateComment(ctx, bob.ID, post.ID, "   ")
	require.ErrorIs(t, err, services.ErrInvalidInput)

	_, err = svc.CreateComment(ctx, bob.ID, "no-such-post", "hi")
	require.ErrorIs(t, err, services.ErrNotFound)
	require.Equal(t, services.PointsComment, balance(t, svc, bob.ID))

	_, err = svc.UpdateComment(ctx, alice.ID, comment.ID, "edited")
	require.ErrorIs(t, err, services.ErrUnauthorized)

	edited, err := svc.UpdateComment(ctx, bob.ID, comment.ID, "edited")
	require.NoError(t, err)
	require.Equal(t, "edited", edited.Content)

	comments, err := svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, "edited", comments[0].Content)
	require.Equal(t, "bob", comments[0].AuthorName)

	require.ErrorIs(t, svc.DeleteComment(ctx, alice.ID, comment.ID), services.ErrUnauthorized)
	require.NoError(t, svc.DeleteComment(ctx, bob.ID, comment.ID))

	comments, err = svc.ListComments(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, comments)

	_, err = svc.ListComments(ctx, "no-such-post")
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestModeration(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")

	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	require.ErrorIs(t, svc.Moderate(ctx, post.ID, models.ModerationApprove), services.ErrNotFlagged)

	require.NoError(t, svc.FlagPost(ctx, post.ID))
	require.ErrorIs(t, svc.FlagPost(ctx, post.ID), services.ErrAlreadyFlagged)

	flagged, err := svc.ListFlaggedPosts(ctx)
	require.NoError(t, err)
	require.Len(t, flagged, 1)
	require.Equal(t, post.ID, flagged[0].ID)

	require.NoError(t, svc.Moderate(ctx, post.ID, models.ModerationApprove))
	view, err := svc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	require.False(t, view.IsFlagged)

	// Approval resets the state, so the post can be flagged again.
	require.NoError(t, svc.FlagPost(ctx, post.ID))

	err = svc.Moderate(ctx, post.ID, models.ModerationAction("ban"))
	require.ErrorIs(t, err, services.ErrInvalidAction)
	require.Equal(t, services.KindInvalidAction, services.KindOf(err))

	require.ErrorIs(t, svc.FlagPost(ctx, "no-such-post"), services.ErrNotFound)
	require.ErrorIs(t, svc.Moderate(ctx, "no-such-post", models.ModerationApprove), services.ErrNotFound)

	require.NoError(t, svc.Moderate(ctx, post.ID, models.ModerationDelete))
	_, err = svc.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
	require.ErrorIs(t, svc.Moderate(ctx, post.ID, models.ModerationDelete), services.ErrNotFound)
}

func TestSearchPosts(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")

	_, err := svc.CreatePost(ctx, alice.ID, "Golang tips", "channels and goroutines")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, alice.ID, "Cooking", "100% butter")
	require.NoError(t, err)

	found, err := svc.SearchPosts(ctx, "GOLANG")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Golang tips", found[0].Title)

	found, err = svc.SearchPosts(ctx, "0%")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = svc.SearchPosts(ctx, "%")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = svc.SearchPosts(ctx, "")
	require.NoError(t, err)
	require.Empty(t, found)

	all, err := svc.PostsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
}

func TestSearchHelloScenario(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")

	_, err := svc.CreatePost(ctx, alice.ID, "Hello World", "first")
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, alice.ID, "Goodbye", "last")
	require.NoError(t, err)

	found, err := svc.SearchPosts(ctx, "hello")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "Hello World", found[0].Title)
}

func TestRedeem(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, _ := newService(t)
	alice := register(t, svc, "alice")

	_, err := svc.Redeem(ctx, alice.ID, 1)
	require.ErrorIs(t, err, services.ErrInsufficientPoints)
	require.Equal(t, services.KindInsufficientPoints, services.KindOf(err))

	_, err = svc.CreatePost(ctx, alice.ID, "t", "c")
	require.NoError(t, err)

	left, err := svc.Redeem(ctx, alice.ID, 4)
	require.NoError(t, err)
	require.EqualValues(t, 6, left)

	_, err = svc.Redeem(ctx, alice.ID, 7)
	require.ErrorIs(t, err, services.ErrInsufficientPoints)
	require.EqualValues(t, 6, balance(t, svc, alice.ID))

	_, err = svc.Redeem(ctx, alice.ID, 0)
	require.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	svc, store := newService(t)
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)
	bobPost, err := svc.CreatePost(ctx, bob.ID, "Mine", "bob's")
	require.NoError(t, err)

	_, err = svc.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = svc.LikePost(ctx, alice.ID, bobPost.ID)
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, bob.ID, post.ID, "hi")
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, alice.ID, bobPost.ID, "on bob's post")
	require.NoError(t, err)
	_, err = svc.CreateComment(ctx, bob.ID, bobPost.ID, "reply")
	require.NoError(t, err)
	_, err = svc.FollowUser(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	_, err = svc.FollowUser(ctx, bob.ID, alice.ID)
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteUser(ctx, bob.ID, alice.ID), services.ErrUnauthorized)
	require.NoError(t, svc.DeleteUser(ctx, alice.ID, alice.ID))

	_, err = svc.GetUser(ctx, alice.ID)
	require.ErrorIs(t, err, services.ErrNotFound)
	_, err = svc.GetPost(ctx, post.ID)
	require.ErrorIs(t, err, services.ErrNotFound)

	count, err := svc.LikeCount(ctx, bobPost.ID)
	require.NoError(t, err)
	require.Zero(t, count)

	comments, err := store.Comments().ListCommentsForPost(ctx, post.ID)
	require.NoError(t, err)
	require.Empty(t, comments)

	comments, err = store.Comments().ListCommentsForPost(ctx, bobPost.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	require.Equal(t, bob.ID, comments[0].AuthorID)

	followers, err := svc.ListFollowers(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, followers)

	// bob's follow notification pointed at alice.
	notes, err := svc.Notifications(ctx, bob.ID)
	require.NoError(t, err)
	for _, n := range notes {
		require.NotEqual(t, alice.ID, n.TargetID)
	}

	points, err := store.Rewards().Balance(ctx, alice.ID)
	require.NoError(t, err)
	require.Zero(t, points)
}

// failingStore wraps a Store so that every notification write fails, inside
// transactions as well.
type failingStore struct {
	repositories.Store
}

func (s failingStore) Notifications() repositories.NotificationRepository {
	return failingNotifications{s.Store.Notifications()}
}

func (s failingStore) Transact(ctx context.Context, fn func(ctx context.Context, tx repositories.Store) error) error {
	return s.Store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		return fn(ctx, failingStore{tx})
	})
}

var errSinkDown = errors.New("notification sink down")

type failingNotifications struct {
	repositories.NotificationRepository
}

func (failingNotifications) CreateNotification(context.Context, *models.Notification) error {
	return errSinkDown
}

func TestCompositeOperationsRollBack(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := services.NewSocialGraphService(store, zaptest.NewLogger(t))
	broken := services.NewSocialGraphService(failingStore{store}, zaptest.NewLogger(t))

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")
	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	t.Run("like", func(t *testing.T) {
		_, err := broken.LikePost(ctx, bob.ID, post.ID)
		require.ErrorIs(t, err, errSinkDown)
		require.Equal(t, services.KindStorage, services.KindOf(err))

		liked, err := svc.HasLiked(ctx, bob.ID, post.ID)
		require.NoError(t, err)
		require.False(t, liked)
		require.Equal(t, services.PointsPost, balance(t, svc, alice.ID))
	})

	t.Run("follow", func(t *testing.T) {
		_, err := broken.FollowUser(ctx, bob.ID, alice.ID)
		require.ErrorIs(t, err, errSinkDown)

		following, err := svc.IsFollowing(ctx, bob.ID, alice.ID)
		require.NoError(t, err)
		require.False(t, following)
		require.Zero(t, balance(t, svc, bob.ID))
	})

	t.Run("comment", func(t *testing.T) {
		_, err := broken.CreateComment(ctx, bob.ID, post.ID, "hi")
		require.ErrorIs(t, err, errSinkDown)

		comments, err := svc.ListComments(ctx, post.ID)
		require.NoError(t, err)
		require.Empty(t, comments)
		require.Zero(t, balance(t, svc, bob.ID))
	})

	// A later like through the healthy service behaves as if nothing happened.
	_, err = svc.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, services.PointsPost+services.PointsLike, balance(t, svc, alice.ID))
}

// Not parallel: reads the process-wide reward counter.
func TestRewardMetricsWaitForCommit(t *testing.T) {
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := services.NewSocialGraphService(store, zaptest.NewLogger(t))
	broken := services.NewSocialGraphService(failingStore{store}, zaptest.NewLogger(t))

	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")
	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	before := services.RewardPointsTotal("awarded")

	_, err = broken.LikePost(ctx, bob.ID, post.ID)
	require.ErrorIs(t, err, errSinkDown)
	_, err = broken.FollowUser(ctx, bob.ID, alice.ID)
	require.ErrorIs(t, err, errSinkDown)
	_, err = broken.CreateComment(ctx, bob.ID, post.ID, "hi")
	require.ErrorIs(t, err, errSinkDown)
	require.Equal(t, before, services.RewardPointsTotal("awarded"))

	_, err = svc.LikePost(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	require.Equal(t, before+float64(services.PointsLike), services.RewardPointsTotal("awarded"))
}
