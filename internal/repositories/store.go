package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store bundles the entity repositories of one backend.
//
// Transact runs fn in a single storage transaction; fn receives a Store whose
// repositories are bound to that transaction and must use it (and the ctx it
// is given) for every call. Calling Transact on a transaction-bound Store
// joins the outer transaction.
type Store interface {
	Users() UserRepository
	Posts() PostRepository
	Comments() CommentRepository
	Likes() LikeRepository
	Follows() FollowRepository
	Notifications() NotificationRepository
	Rewards() RewardRepository

	Transact(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
	EnsureSchema(ctx context.Context) error
}

func newID() string {
	return uuid.NewString()
}

func now() time.Time {
	return time.Now().UTC()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a LIKE pattern matching q anywhere, case folded.
func containsPattern(q string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
}

var (
	_ Store = (*PostgresStore)(nil)
	_ Store = (*Neo4jStore)(nil)
	_ Store = (*MongoStore)(nil)
)
