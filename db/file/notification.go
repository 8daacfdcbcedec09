package file

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/onemsu/onemsu-be/model"
)

func (fdb *FileDB) AppendNotification(ctx context.Context, n *model.Notification) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	if n.Id == "" {
		n.Id = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	fdb.data.Notifications = append(fdb.data.Notifications, n)

	// enforce the per-recipient cap, dropping oldest first
	count := 0
	for _, existing := range fdb.data.Notifications {
		if existing.RecipientId == n.RecipientId {
			count++
		}
	}
	if over := count - model.MaxNotificationsPerUser; over > 0 {
		kept := fdb.data.Notifications[:0]
		for _, existing := range fdb.data.Notifications {
			if over > 0 && existing.RecipientId == n.RecipientId {
				over--
				continue
			}
			kept = append(kept, existing)
		}
		fdb.data.Notifications = kept
	}
	return fdb.save()
}

func (fdb *FileDB) GetNotificationsForUser(ctx context.Context, userId string) ([]*model.Notification, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var notifications []*model.Notification
	// stored oldest-first; serve newest-first
	for i := len(fdb.data.Notifications) - 1; i >= 0; i-- {
		if fdb.data.Notifications[i].RecipientId == userId {
			n := *fdb.data.Notifications[i]
			notifications = append(notifications, &n)
		}
	}
	return notifications, nil
}

func (fdb *FileDB) MarkNotificationsRead(ctx context.Context, userId string) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	for _, n := range fdb.data.Notifications {
		if n.RecipientId == userId {
			n.Read = true
		}
	}
	return fdb.save()
}
