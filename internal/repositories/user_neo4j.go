package repositories

import (
	"context"

	"github.com/anonto42/daoplus/backend/internal/models"
	"github.com/anonto42/daoplus/backend/internal/storage"
)

// Neo4jUserRepository stores users as (:User) nodes.
type Neo4jUserRepository struct {
	gw storage.Gateway
}

func NewNeo4jUserRepository(gw storage.Gateway) *Neo4jUserRepository {
	return &Neo4jUserRepository{gw: gw}
}

func userFromRecord(rec storage.Record) (models.User, error) {
	d := rec.Decode()
	user := models.User{
		ID:           d.String("id"),
		Username:     d.String("username"),
		Email:        d.String("email"),
		PasswordHash: d.String("password_hash"),
		IsModerator:  d.Bool("is_moderator"),
		CreatedAt:    d.Time("created_at"),
	}
	return user, d.Err()
}

func usersFromRecords(records []storage.Record) ([]models.User, error) {
	return decodeAll(records, func(rec storage.Record) (models.User, error) {
		d := rec.Decode()
		u := d.Map("u")
		if err := d.Err(); err != nil {
			return models.User{}, err
		}
		return userFromRecord(u)
	})
}

func (r *Neo4jUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	user.CreatedAt = now()

	_, err := r.gw.Write(ctx, `
		CREATE (u:User {
			id: $id, username: $username, email: $email,
			password_hash: $password_hash, is_moderator: $is_moderator, created_at: $created_at
		})`, map[string]any{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_moderator":  user.IsModerator,
		"created_at":    user.CreatedAt,
	})
	return err
}

func (r *Neo4jUserRepository) one(ctx context.Context, statement string, params map[string]any) (*models.User, error) {
	records, err := r.gw.Query(ctx, statement, params)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, storage.ErrNotFound
	}
	users, err := usersFromRecords(records[:1])
	if err != nil {
		return nil, err
	}
	return &users[0], nil
}

func (r *Neo4jUserRepository) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return r.one(ctx, `MATCH (u:User {id: $id}) RETURN u {.*} AS u`, map[string]any{"id": id})
}

func (r *Neo4jUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.one(ctx, `MATCH (u:User {email: $email}) RETURN u {.*} AS u`, map[string]any{"email": email})
}

func (r *Neo4jUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.one(ctx, `MATCH (u:User {username: $username}) RETURN u {.*} AS u`, map[string]any{"username": username})
}

func (r *Neo4jUserRepository) GetUsers(ctx context.Context) ([]models.User, error) {
	records, err := r.gw.Query(ctx, `MATCH (u:User) RETURN u {.*} AS u ORDER BY u.created_at ASC`, nil)
	if err != nil {
		return nil, err
	}
	return usersFromRecords(records)
}

func (r *Neo4jUserRepository) UpdateUser(ctx context.Context, user *models.User) error {
	records, err := r.gw.Write(ctx, `
		MATCH (u:User {id: $id})
		SET u.username = $username, u.email = $email,
			u.password_hash = $password_hash, u.is_moderator = $is_moderator
		RETURN u.id AS id`, map[string]any{
		"id":            user.ID,
		"username":      user.Username,
		"email":         user.Email,
		"password_hash": user.PasswordHash,
		"is_moderator":  user.IsModerator,
	})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (r *Neo4jUserRepository) DeleteUser(ctx context.Context, id string) error {
	return r.gw.Transact(ctx, func(ctx context.Context, gw storage.Gateway) error {
		records, err := gw.Query(ctx, `MATCH (u:User {id: $id}) RETURN u.id AS id`, map[string]any{"id": id})
		if err != nil {
			return err
		}
		if len(records) == 0 {
			return storage.ErrNotFound
		}

		statements := []string{
			`MATCH (c:Comment)-[:ON]->(:Post)-[:CREATED_BY]->(:User {id: $id}) DETACH DELETE c`,
			`MATCH (p:Post)-[:CREATED_BY]->(:User {id: $id})
			 MATCH (n:Notification {target_id: p.id}) DETACH DELETE n`,
			`MATCH (n:Notification) WHERE n.recipient_id = $id OR n.target_id = $id DETACH DELETE n`,
			`MATCH (p:Post)-[:CREATED_BY]->(:User {id: $id}) DETACH DELETE p`,
			`MATCH (c:Comment)-[:COMMENTED_BY]->(:User {id: $id}) DETACH DELETE c`,
			`MATCH (:User {id: $id})-[:HAS_REWARD]->(r:Reward) DETACH DELETE r`,
			`MATCH (u:User {id: $id}) DETACH DELETE u`,
		}
		for _, statement := range statements {
			if _, err := gw.Write(ctx, statement, map[string]any{"id": id}); err != nil {
				return err
			}
		}
		return nil
	})
}
