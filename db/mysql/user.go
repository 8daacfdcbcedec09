package mysql

import (
	"context"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type UserDB struct {
	sess db.Session
}

func getUserDB(sess db.Session) *UserDB {
	return &UserDB{sess}
}

func (udb *UserDB) CreateUser(ctx context.Context, user *model.User) error {
	_, err := udb.sess.Collection("person").
		Insert(user)
	if err != nil && appDb.IsDupKeyErr(err) {
		return appDb.ErrDuplicateEmail
	}
	return err
}

func (udb *UserDB) GetUserById(ctx context.Context, id string) (*model.User, error) {
	return udb.getUserWhere(ctx, "id = ?", id)
}

func (udb *UserDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return udb.getUserWhere(ctx, "LOWER(email) = LOWER(?)", email)
}

func (udb *UserDB) getUserWhere(ctx context.Context, cond string, arg interface{}) (*model.User, error) {
	var user model.User
	if err := udb.sess.SQL().
		Select("*").
		From("person").
		Where(cond, arg).
		IteratorContext(ctx).
		One(&user); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (udb *UserDB) ListUsers(ctx context.Context) ([]*model.User, error) {
	var users []*model.User
	return users, udb.sess.SQL().
		Select("*").
		From("person").
		OrderBy("created_at").
		IteratorContext(ctx).
		All(&users)
}

func (udb *UserDB) UpdateUser(ctx context.Context, id string, patch *appDb.ProfilePatch) (*model.User, error) {
	updates := map[string]interface{}{}
	setIfPresent(updates, "display_name", patch.DisplayName)
	setIfPresent(updates, "username", patch.Username)
	setIfPresent(updates, "bio", patch.Bio)
	setIfPresent(updates, "location", patch.Location)
	setIfPresent(updates, "website", patch.Website)
	setIfPresent(updates, "campus", patch.Campus)
	setIfPresent(updates, "avatar_url", patch.AvatarURL)
	setIfPresent(updates, "cover_url", patch.CoverURL)
	if len(updates) > 0 {
		if _, err := udb.sess.SQL().
			Update("person").
			Set(updates).
			Where("id = ?", id).
			ExecContext(ctx); err != nil {
			return nil, err
		}
	}
	return udb.GetUserById(ctx, id)
}

func setIfPresent(updates map[string]interface{}, column string, val *string) {
	if val != nil {
		updates[column] = *val
	}
}
