package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jStore is the graph-backed Store. Its relationship names and
// directions are the canonical schema:
//
//	(:Post)-[:CREATED_BY]->(:User)
//	(:User)-[:LIKES]->(:Post)
//	(:User)-[:FOLLOWS]->(:User)
//	(:Comment)-[:COMMENTED_BY]->(:User), (:Comment)-[:ON]->(:Post)
//	(:Notification)-[:SENT_TO]->(:User)
//	(:User)-[:HAS_REWARD]->(:Reward)
type Neo4jStore struct {
	gw storage.Gateway
}

func NewNeo4jStore(gw storage.Gateway) *Neo4jStore {
	return &Neo4jStore{gw: gw}
}

func (s *Neo4jStore) Users() UserRepository       { return NewNeo4jUserRepository(s.gw) }
func (s *Neo4jStore) Posts() PostRepository       { return NewNeo4jPostRepository(s.gw) }
func (s *Neo4jStore) Comments() CommentRepository { return NewNeo4jCommentRepository(s.gw) }
func (s *Neo4jStore) Likes() LikeRepository       { return NewNeo4jLikeRepository(s.gw) }
func (s *Neo4jStore) Follows() FollowRepository   { return NewNeo4jFollowRepository(s.gw) }
func (s *Neo4jStore) Rewards() RewardRepository   { return NewNeo4jRewardRepository(s.gw) }

func (s *Neo4jStore) Notifications() NotificationRepository {
	return NewNeo4jNotificationRepository(s.gw)
}

func (s *Neo4jStore) Transact(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.gw.Transact(ctx, func(ctx context.Context, gw storage.Gateway) error {
		return fn(ctx, &Neo4jStore{gw: gw})
	})
}

var neo4jSchema = []string{
	`CREATE CONSTRAINT user_id IF NOT EXISTS FOR (u:User) REQUIRE u.id IS UNIQUE`,
	`CREATE CONSTRAINT user_username IF NOT EXISTS FOR (u:User) REQUIRE u.username IS UNIQUE`,
	`CREATE CONSTRAINT user_email IF NOT EXISTS FOR (u:User) REQUIRE u.email IS UNIQUE`,
	`CREATE CONSTRAINT post_id IF NOT EXISTS FOR (p:Post) REQUIRE p.id IS UNIQUE`,
	`CREATE CONSTRAINT comment_id IF NOT EXISTS FOR (c:Comment) REQUIRE c.id IS UNIQUE`,
	`CREATE CONSTRAINT notification_id IF NOT EXISTS FOR (n:Notification) REQUIRE n.id IS UNIQUE`,
	`CREATE CONSTRAINT reward_user IF NOT EXISTS FOR (r:Reward) REQUIRE r.user_id IS UNIQUE`,
	`CREATE CONSTRAINT likes_pair IF NOT EXISTS FOR ()-[l:LIKES]-() REQUIRE l.pair IS UNIQUE`,
	`CREATE CONSTRAINT follows_pair IF NOT EXISTS FOR ()-[f:FOLLOWS]-() REQUIRE f.pair IS UNIQUE`,
	`CREATE INDEX notification_target IF NOT EXISTS FOR (n:Notification) ON (n.target_id)`,
	`CREATE INDEX post_flagged IF NOT EXISTS FOR (p:Post) ON (p.is_flagged)`,
}

// EnsureSchema creates the constraints that back id, username, email and
// edge-pair uniqueness. Each runs in its own transaction.
func (s *Neo4jStore) EnsureSchema(ctx context.Context) error {
	for _, statement := range neo4jSchema {
		if _, err := s.gw.Write(ctx, statement, nil); err != nil {
			return err
		}
	}
	return nil
}

func decodeAll[T any](records []storage.Record, fn func(storage.Record) (T, error)) ([]T, error) {
	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := fn(rec)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// requireDeleted expects a single `count(*) AS deleted` row and reports
// ErrNotFound when nothing was removed.
func requireDeleted(records []storage.Record) error {
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	deleted, err := storage.Value[int64](records[0], "deleted")
	if err != nil {
		return err
	}
	if deleted == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// scalar reads one column of the first row, or zero when there are no rows.
func scalar[T any](records []storage.Record, key string) (T, error) {
	if len(records) == 0 {
		var zero T
		return zero, nil
	}
	return storage.Value[T](records[0], key)
}
