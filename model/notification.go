package model

import "time"

type NotificationType string

const (
	NotificationFollow  NotificationType = "follow"
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationPost    NotificationType = "post"
)

// MaxNotificationsPerUser caps the per-recipient list; appends prune the oldest
// entries past the cap.
const MaxNotificationsPerUser = 100

type Notification struct {
	Id          string           `db:"id" json:"id"`
	RecipientId string           `db:"recipient_id" json:"recipientId"`
	Type        NotificationType `db:"type" json:"type"`
	ActorId     string           `db:"actor_id" json:"actorId"`
	TargetId    string           `db:"target_id" json:"targetId,omitempty"`
	Read        bool             `db:"is_read" json:"read"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
}
