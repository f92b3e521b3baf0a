package services_test

import (
	"context"
	"testing"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/services"
	"github.com/anonto42/daoplus/backend/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNotificationEmitter(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := testutil.NewStore(t)
	svc := services.NewSocialGraphService(store, zaptest.NewLogger(t))
	alice := register(t, svc, "alice")
	bob := register(t, svc, "bob")

	emitter := services.NewNotificationEmitter(store, zaptest.NewLogger(t))

	_, err := emitter.Record(ctx, alice.ID, models.Action("poked"), bob.ID, models.TargetUser)
	require.ErrorIs(t, err, services.ErrInvalidInput)

	first, err := emitter.Record(ctx, alice.ID, models.ActionFollowed, bob.ID, models.TargetUser)
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	second, err := emitter.Record(ctx, alice.ID, models.ActionFollowed, bob.ID, models.TargetUser)
	require.NoError(t, err)

	notes, err := emitter.ListForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)

	empty, err := emitter.ListForUser(ctx, bob.ID)
	require.NoError(t, err)
	require.Empty(t, empty)

	post, err := svc.CreatePost(ctx, alice.ID, "Hello", "world")
	require.NoError(t, err)

	t.Run("only the recipient may edit", func(t *testing.T) {
		edit := &models.Notification{ID: first.ID, Action: models.ActionLiked, TargetID: post.ID, TargetType: models.TargetPost}
		require.ErrorIs(t, emitter.Update(ctx, bob.ID, edit), services.ErrUnauthorized)
		require.NoError(t, emitter.Update(ctx, alice.ID, edit))

		got, err := store.Notifications().GetNotificationByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, models.ActionLiked, got.Action)
		require.Equal(t, post.ID, got.TargetID)
		require.Equal(t, alice.ID, got.RecipientID)
	})

	t.Run("edits keep the target referenced", func(t *testing.T) {
		cases := []struct {
			name string
			edit models.Notification
		}{
			{"missing post", models.Notification{Action: models.ActionLiked, TargetID: "no-such-post", TargetType: models.TargetPost}},
			{"missing user", models.Notification{Action: models.ActionFollowed, TargetID: "no-such-user", TargetType: models.TargetUser}},
			{"like on a user", models.Notification{Action: models.ActionLiked, TargetID: bob.ID, TargetType: models.TargetUser}},
			{"follow of a post", models.Notification{Action: models.ActionFollowed, TargetID: post.ID, TargetType: models.TargetPost}},
			{"unknown target type", models.Notification{Action: models.ActionCommented, TargetID: post.ID, TargetType: "story"}},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				edit := tc.edit
				edit.ID = first.ID
				require.ErrorIs(t, emitter.Update(ctx, alice.ID, &edit), services.ErrInvalidInput)
			})
		}

		got, err := store.Notifications().GetNotificationByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, models.ActionLiked, got.Action)
		require.Equal(t, post.ID, got.TargetID)
		require.Equal(t, models.TargetPost, got.TargetType)
	})

	t.Run("records need an existing target", func(t *testing.T) {
		_, err := emitter.Record(ctx, alice.ID, models.ActionCommented, "no-such-post", models.TargetPost)
		require.ErrorIs(t, err, services.ErrInvalidInput)

		_, err = emitter.Record(ctx, alice.ID, models.ActionFollowed, post.ID, models.TargetPost)
		require.ErrorIs(t, err, services.ErrInvalidInput)
	})

	t.Run("only the recipient may delete", func(t *testing.T) {
		require.ErrorIs(t, emitter.Delete(ctx, bob.ID, second.ID), services.ErrUnauthorized)
		require.NoError(t, emitter.Delete(ctx, alice.ID, second.ID))
		require.ErrorIs(t, emitter.Delete(ctx, alice.ID, second.ID), services.ErrNotFound)
	})
}
