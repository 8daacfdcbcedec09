package mysql

import (
	"context"

	"github.com/google/uuid"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type NotificationDB struct {
	sess db.Session
}

func getNotificationDB(sess db.Session) *NotificationDB {
	return &NotificationDB{sess}
}

// AppendNotification inserts and prunes the recipient's list back down to the
// cap in the same transaction.
func (ndb *NotificationDB) AppendNotification(ctx context.Context, n *model.Notification) error {
	if n.Id == "" {
		n.Id = uuid.NewString()
	}
	return ndb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			InsertInto("notification").
			Columns("id", "recipient_id", "type", "actor_id", "target_id", "is_read").
			Values(n.Id, n.RecipientId, n.Type, n.ActorId, n.TargetId, n.Read).
			ExecContext(ctx); err != nil {
			return err
		}
		// MySQL can't delete from a table it subqueries, hence the derived
		// table.
		_, err := sess.SQL().ExecContext(ctx, db.Raw(`
DELETE FROM notification
	WHERE recipient_id = ?
	AND id NOT IN (
		SELECT id FROM (
			SELECT id FROM notification
				WHERE recipient_id = ?
				ORDER BY created_at DESC, id DESC
				LIMIT ?
		) AS keep
	)
`, n.RecipientId, n.RecipientId, model.MaxNotificationsPerUser))
		return err
	}, nil)
}

func (ndb *NotificationDB) GetNotificationsForUser(ctx context.Context, userId string) ([]*model.Notification, error) {
	var notifications []*model.Notification
	return notifications, ndb.sess.SQL().
		Select("*").
		From("notification").
		Where("recipient_id = ?", userId).
		OrderBy("created_at DESC", "id DESC").
		IteratorContext(ctx).
		All(&notifications)
}

func (ndb *NotificationDB) MarkNotificationsRead(ctx context.Context, userId string) error {
	_, err := ndb.sess.SQL().
		Update("notification").
		Set("is_read", true).
		Where("recipient_id = ?", userId).
		ExecContext(ctx)
	return err
}
