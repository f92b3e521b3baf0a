package services

import (
	"context"
	"errors"
	"strings"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/repositories"
	"github.com/anonto42/daoplus/backend/internal/storage"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SocialGraphService implements the operations that touch more than one
// entity: likes, follows, posting, commenting and moderation. Each composite
// operation runs in one store transaction, so the edge, the award and the
// notification are committed together or not at all.
type SocialGraphService struct {
	store    repositories.Store
	validate *validator.Validate
	logger   *zap.Logger
}

func NewSocialGraphService(store repositories.Store, logger *zap.Logger) *SocialGraphService {
	return &SocialGraphService{
		store:    store,
		validate: validator.New(),
		logger:   logger.Named("social_graph"),
	}
}

func (s *SocialGraphService) ledger(store repositories.Store) *RewardLedger {
	return NewRewardLedger(store.Rewards(), s.logger.Named("ledger"))
}

func (s *SocialGraphService) notifier(store repositories.Store) *NotificationEmitter {
	return NewNotificationEmitter(store, s.logger.Named("notifications"))
}

// transact runs fn in one store transaction. Ledger metrics are published
// only after the transaction commits.
func (s *SocialGraphService) transact(ctx context.Context, fn func(ctx context.Context, tx repositories.Store, ledger *RewardLedger) error) error {
	var ledger *RewardLedger
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		ledger = s.ledger(tx).deferMetrics()
		return fn(ctx, tx, ledger)
	})
	if err == nil && ledger != nil {
		ledger.flushMetrics()
	}
	return err
}

// Ledger returns the reward ledger outside of any transaction.
func (s *SocialGraphService) Ledger() *RewardLedger { return s.ledger(s.store) }

// Notifier returns the notification emitter outside of any transaction.
func (s *SocialGraphService) Notifier() *NotificationEmitter { return s.notifier(s.store) }

func (s *SocialGraphService) done(action string, err error, fields ...zap.Field) error {
	err = translate(err)
	observe(action, err)

	switch {
	case err == nil:
		s.logger.Debug(action, fields...)
	case KindOf(err) == KindStorage:
		s.logger.Error(action+" failed", append(fields, zap.Error(err))...)
	default:
		s.logger.Debug(action+" rejected", append(fields, zap.Error(err))...)
	}
	return err
}

// --- users ---

func (s *SocialGraphService) RegisterUser(ctx context.Context, username, email, password string) (*models.User, error) {
	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, invalid("username, email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, invalid("password cannot be hashed: %v", err)
	}

	user := &models.User{Username: username, Email: email, PasswordHash: string(hash)}
	err = s.store.Users().CreateUser(ctx, user)
	if errors.Is(err, storage.ErrDuplicate) {
		err = ErrDuplicateUser
	}
	if err = s.done("register_user", err, zap.String("username", username)); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate returns the user whose email and password match.
func (s *SocialGraphService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, translate(err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrUnauthorized
	}
	return user, nil
}

func (s *SocialGraphService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.store.Users().GetUserByID(ctx, id)
	return user, translate(err)
}

func (s *SocialGraphService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.store.Users().GetUsers(ctx)
	return users, translate(err)
}

// UpdateUser changes the non-empty profile fields of the acting user.
func (s *SocialGraphService) UpdateUser(ctx context.Context, actorID, username, email string) (*models.User, error) {
	var user *models.User
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if user, err = tx.Users().GetUserByID(ctx, actorID); err != nil {
			return err
		}
		if v := strings.TrimSpace(username); v != "" {
			user.Username = v
		}
		if v := strings.TrimSpace(email); v != "" {
			user.Email = v
		}
		err = tx.Users().UpdateUser(ctx, user)
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrDuplicateUser
		}
		return err
	})
	if err = s.done("update_user", err, zap.String("user_id", actorID)); err != nil {
		return nil, err
	}
	return user, nil
}

// GrantModerator marks the user as a moderator.
func (s *SocialGraphService) GrantModerator(ctx context.Context, userID string) error {
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		user, err := tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		user.IsModerator = true
		return tx.Users().UpdateUser(ctx, user)
	})
	return s.done("grant_moderator", err, zap.String("user_id", userID))
}

// DeleteUser removes the acting user's account and everything they own.
func (s *SocialGraphService) DeleteUser(ctx context.Context, actorID, userID string) error {
	if actorID != userID {
		return s.done("delete_user", ErrUnauthorized, zap.String("user_id", userID))
	}
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		return tx.Users().DeleteUser(ctx, userID)
	})
	return s.done("delete_user", err, zap.String("user_id", userID))
}

func (s *SocialGraphService) ListFollowers(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.store.Users().GetUserByID(ctx, userID); err != nil {
		return nil, translate(err)
	}
	users, err := s.store.Follows().GetFollowers(ctx, userID)
	return users, translate(err)
}

func (s *SocialGraphService) ListFollowing(ctx context.Context, userID string) ([]models.User, error) {
	if _, err := s.store.Users().GetUserByID(ctx, userID); err != nil {
		return nil, translate(err)
	}
	users, err := s.store.Follows().GetFollowing(ctx, userID)
	return users, translate(err)
}

// --- posts ---

// CreatePost stores the post and awards its author PointsPost.
func (s *SocialGraphService) CreatePost(ctx context.Context, authorID, title, content string) (*models.Post, error) {
	post := &models.Post{
		Title:    strings.TrimSpace(title),
		Content:  strings.TrimSpace(content),
		AuthorID: authorID,
	}
	if err := s.validate.Struct(post); err != nil {
		return nil, s.done("create_post", invalid("%v", err))
	}

	err := s.transact(ctx, func(ctx context.Context, tx repositories.Store, ledger *RewardLedger) error {
		if err := tx.Posts().CreatePost(ctx, post); err != nil {
			return err
		}
		return ledger.Award(ctx, authorID, PointsPost)
	})
	if err = s.done("create_post", err, zap.String("author_id", authorID)); err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces the title and content. Only the author may edit.
func (s *SocialGraphService) UpdatePost(ctx context.Context, actorID, postID, title, content string) (*models.Post, error) {
	var post *models.Post
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if post, err = tx.Posts().GetPostByID(ctx, postID); err != nil {
			return err
		}
		if post.AuthorID != actorID {
			return ErrUnauthorized
		}

		post.Title, post.Content = strings.TrimSpace(title), strings.TrimSpace(content)
		if err := s.validate.Struct(post); err != nil {
			return invalid("%v", err)
		}
		return tx.Posts().UpdatePost(ctx, post)
	})
	if err = s.done("update_post", err, zap.String("post_id", postID)); err != nil {
		return nil, err
	}
	return post, nil
}

// DeletePost removes the post and its comments, likes and notifications.
// Only the author may delete, whatever the moderation state.
func (s *SocialGraphService) DeletePost(ctx context.Context, actorID, postID string) error {
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		post, err := tx.Posts().GetPostByID(ctx, postID)
		if err != nil {
			return err
		}
		if post.AuthorID != actorID {
			return ErrUnauthorized
		}
		return tx.Posts().DeletePost(ctx, postID)
	})
	return s.done("delete_post", err, zap.String("post_id", postID))
}

func (s *SocialGraphService) GetPost(ctx context.Context, postID string) (*models.PostView, error) {
	post, err := s.store.Posts().GetPostView(ctx, postID)
	return post, translate(err)
}

func (s *SocialGraphService) ListPosts(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.store.Posts().ListPosts(ctx)
	return posts, translate(err)
}

func (s *SocialGraphService) PostsByAuthor(ctx context.Context, authorID string) ([]models.PostView, error) {
	if _, err := s.store.Users().GetUserByID(ctx, authorID); err != nil {
		return nil, translate(err)
	}
	posts, err := s.store.Posts().GetPostsByAuthor(ctx, authorID)
	return posts, translate(err)
}

// SearchPosts matches query against titles and contents, ignoring case.
// An empty query returns no posts.
func (s *SocialGraphService) SearchPosts(ctx context.Context, query string) ([]models.PostView, error) {
	posts, err := s.store.Posts().SearchPosts(ctx, query)
	return posts, translate(err)
}

// --- comments ---

// CreateComment stores the comment, awards its author PointsComment and
// notifies the post's author.
func (s *SocialGraphService) CreateComment(ctx context.Context, authorID, postID, content string) (*models.Comment, error) {
	comment := &models.Comment{
		Content:  strings.TrimSpace(content),
		AuthorID: authorID,
		PostID:   postID,
	}
	if err := s.validate.Struct(comment); err != nil {
		return nil, s.done("create_comment", invalid("%v", err))
	}

	err := s.transact(ctx, func(ctx context.Context, tx repositories.Store, ledger *RewardLedger) error {
		post, err := tx.Posts().GetPostByID(ctx, postID)
		if err != nil {
			return err
		}
		if err := tx.Comments().CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := ledger.Award(ctx, authorID, PointsComment); err != nil {
			return err
		}
		_, err = s.notifier(tx).Record(ctx, post.AuthorID, models.ActionCommented, post.ID, models.TargetPost)
		return err
	})
	if err = s.done("create_comment", err, zap.String("post_id", postID)); err != nil {
		return nil, err
	}
	return comment, nil
}

// UpdateComment replaces the content and refreshes created_at. Only the
// comment's author may edit.
func (s *SocialGraphService) UpdateComment(ctx context.Context, actorID, commentID, content string) (*models.Comment, error) {
	var comment *models.Comment
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		var err error
		if comment, err = tx.Comments().GetCommentByID(ctx, commentID); err != nil {
			return err
		}
		if comment.AuthorID != actorID {
			return ErrUnauthorized
		}

		comment.Content = strings.TrimSpace(content)
		if err := s.validate.Struct(comment); err != nil {
			return invalid("%v", err)
		}
		return tx.Comments().UpdateComment(ctx, comment)
	})
	if err = s.done("update_comment", err, zap.String("comment_id", commentID)); err != nil {
		return nil, err
	}
	return comment, nil
}

func (s *SocialGraphService) DeleteComment(ctx context.Context, actorID, commentID string) error {
	err := s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
		comment, err := tx.Comments().GetCommentByID(ctx, commentID)
		if err != nil {
			return err
		}
		if comment.AuthorID != actorID {
			return ErrUnauthorized
		}
		return tx.Comments().DeleteComment(ctx, commentID)
	})
	return s.done("delete_comment", err, zap.String("comment_id", commentID))
}

// ListComments returns a post's comments, oldest first.
func (s *SocialGraphService) ListComments(ctx context.Context, postID string) ([]models.CommentView, error) {
	if _, err := s.store.Posts().GetPostByID(ctx, postID); err != nil {
		return nil, translate(err)
	}
	comments, err := s.store.Comments().ListCommentsForPost(ctx, postID)
	return comments, translate(err)
}

// --- likes ---

// LikePost creates the like edge, awards the post's author PointsLike and
// notifies them. A second like by the same user fails with ErrAlreadyLiked.
func (s *SocialGraphService) LikePost(ctx context.Context, userID, postID string) (*models.Like, error) {
	like := &models.Like{UserID: userID, PostID: postID}
	err := s.transact(ctx, func(ctx context.Context, tx repositories.Store, ledger *RewardLedger) error {
		post, err := tx.Posts().GetPostByID(ctx, postID)
		if err != nil {
			return err
		}

		err = tx.Likes().CreateLike(ctx, like)
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrAlreadyLiked
		}
		if err != nil {
			return err
		}

		if err := ledger.Award(ctx, post.AuthorID, PointsLike); err != nil {
			return err
		}
		_, err = s.notifier(tx).Record(ctx, post.AuthorID, models.ActionLiked, post.ID, models.TargetPost)
		return err
	})
	if err = s.done("like_post", err, zap.String("user_id", userID), zap.String("post_id", postID)); err != nil {
		return nil, err
	}
	return like, nil
}

// UnlikePost removes the like edge. Points already awarded are kept.
func (s *SocialGraphService) UnlikePost(ctx context.Context, userID, postID string) error {
	err := s.store.Likes().DeleteLike(ctx, userID, postID)
	return s.done("unlike_post", err, zap.String("user_id", userID), zap.String("post_id", postID))
}

func (s *SocialGraphService) LikeCount(ctx context.Context, postID string) (int64, error) {
	if _, err := s.store.Posts().GetPostByID(ctx, postID); err != nil {
		return 0, translate(err)
	}
	count, err := s.store.Likes().CountLikes(ctx, postID)
	return count, translate(err)
}

func (s *SocialGraphService) HasLiked(ctx context.Context, userID, postID string) (bool, error) {
	liked, err := s.store.Likes().HasUserLikedPost(ctx, userID, postID)
	return liked, translate(err)
}

// --- follows ---

// FollowUser creates the follow edge, awards the follower PointsFollow and
// notifies the followed user.
func (s *SocialGraphService) FollowUser(ctx context.Context, followerID, followedID string) (*models.Follow, error) {
	fields := []zap.Field{zap.String("follower_id", followerID), zap.String("followed_id", followedID)}
	if followerID == followedID {
		return nil, s.done("follow_user", ErrSelfFollow, fields...)
	}

	follow := &models.Follow{FollowerID: followerID, FollowedID: followedID}
	err := s.transact(ctx, func(ctx context.Context, tx repositories.Store, ledger *RewardLedger) error {
		if _, err := tx.Users().GetUserByID(ctx, followedID); err != nil {
			return err
		}

		err := tx.Follows().CreateFollow(ctx, follow)
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrAlreadyFollowing
		}
		if err != nil {
			return err
		}

		if err := ledger.Award(ctx, followerID, PointsFollow); err != nil {
			return err
		}
		_, err = s.notifier(tx).Record(ctx, followedID, models.ActionFollowed, followerID, models.TargetUser)
		return err
	})
	if err = s.done("follow_user", err, fields...); err != nil {
		return nil, err
	}
	return follow, nil
}

// UnfollowUser removes the follow edge. Points already awarded are kept.
func (s *SocialGraphService) UnfollowUser(ctx context.Context, followerID, followedID string) error {
	err := s.store.Follows().DeleteFollow(ctx, followerID, followedID)
	return s.done("unfollow_user", err, zap.String("follower_id", followerID), zap.String("followed_id", followedID))
}

func (s *SocialGraphService) IsFollowing(ctx context.Context, followerID, followedID string) (bool, error) {
	following, err := s.store.Follows().IsFollowing(ctx, followerID, followedID)
	return following, translate(err)
}

// --- moderation ---

// FlagPost moves a post from Unflagged to Flagged. Flagging a flagged post
// fails with ErrAlreadyFlagged.
func (s *SocialGraphService) FlagPost(ctx context.Context, postID string) error {
	err := s.setFlagged(ctx, postID, true, ErrAlreadyFlagged)
	return s.done("flag_post", err, zap.String("post_id", postID))
}

func (s *SocialGraphService) setFlagged(ctx context.Context, postID string, flagged bool, conflict error) error {
	changed, err := s.store.Posts().SetFlagged(ctx, postID, flagged)
	if err != nil || changed {
		return err
	}
	if _, err := s.store.Posts().GetPostByID(ctx, postID); err != nil {
		return err
	}
	return conflict
}

func (s *SocialGraphService) ListFlaggedPosts(ctx context.Context) ([]models.PostView, error) {
	posts, err := s.store.Posts().ListFlaggedPosts(ctx)
	return posts, translate(err)
}

// Moderate applies a moderator decision to a post. approve clears the flag
// and fails with ErrNotFlagged on an unflagged post; delete removes the post
// from either state. The caller must have verified moderator privilege.
func (s *SocialGraphService) Moderate(ctx context.Context, postID string, action models.ModerationAction) error {
	var err error
	switch action {
	case models.ModerationApprove:
		err = s.setFlagged(ctx, postID, false, ErrNotFlagged)
	case models.ModerationDelete:
		err = s.store.Transact(ctx, func(ctx context.Context, tx repositories.Store) error {
			return tx.Posts().DeletePost(ctx, postID)
		})
	default:
		err = ErrInvalidAction
	}

	err = s.done("moderate", err, zap.String("post_id", postID), zap.String("action", string(action)))
	if err == nil {
		s.logger.Info("post moderated", zap.String("post_id", postID), zap.String("action", string(action)))
	}
	return err
}

// --- ledger and notifications ---

func (s *SocialGraphService) Notifications(ctx context.Context, userID string) ([]models.Notification, error) {
	return s.Notifier().ListForUser(ctx, userID)
}

func (s *SocialGraphService) Balance(ctx context.Context, userID string) (int64, error) {
	return s.Ledger().Balance(ctx, userID)
}

// Redeem spends points from the user's balance and returns what is left.
func (s *SocialGraphService) Redeem(ctx context.Context, userID string, points int64) (int64, error) {
	ok, err := s.Ledger().Deduct(ctx, userID, points)
	if err == nil && !ok {
		err = ErrInsufficientPoints
	}
	if err = s.done("redeem", err, zap.String("user_id", userID), zap.Int64("points", points)); err != nil {
		return 0, err
	}
	return s.Balance(ctx, userID)
}
