package mysql

import (
	"context"

	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type SessionDB struct {
	sess db.Session
}

func getSessionDB(sess db.Session) *SessionDB {
	return &SessionDB{sess}
}

// CreateSession inserts the new session and deletes every other session the
// user holds. A superseded token fails the middleware's liveness check.
func (sdb *SessionDB) CreateSession(ctx context.Context, session *model.Session) error {
	return sdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			DeleteFrom("session").
			Where("user_id = ?", session.UserId).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.Collection("session").Insert(session)
		return err
	}, nil)
}

func (sdb *SessionDB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	if err := sdb.sess.SQL().
		Select("*").
		From("session").
		Where("id = ?", id).
		IteratorContext(ctx).
		One(&session); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (sdb *SessionDB) DeleteSession(ctx context.Context, id string) error {
	_, err := sdb.sess.SQL().
		DeleteFrom("session").
		Where("id = ?", id).
		ExecContext(ctx)
	return err
}
