package mysql

import (
	"context"
	"time"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type ThreadDB struct {
	sess db.Session
}

func getThreadDB(sess db.Session) *ThreadDB {
	return &ThreadDB{sess}
}

// Threads store the pair in normalized order so the same two users always map
// to the same row.
type flattenedThread struct {
	Id           string    `db:"id"`
	ParticipantA string    `db:"participant_a"`
	ParticipantB string    `db:"participant_b"`
	LastMessage  string    `db:"last_message"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func buildThreadFromFlattened(thread *flattenedThread) *model.Thread {
	return &model.Thread{
		Id:             thread.Id,
		ParticipantIds: []string{thread.ParticipantA, thread.ParticipantB},
		LastMessage:    thread.LastMessage,
		UpdatedAt:      thread.UpdatedAt,
	}
}

func orderPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

func (tdb *ThreadDB) FindOrCreateThread(ctx context.Context, userA, userB string) (*model.Thread, bool, error) {
	first, second := orderPair(userA, userB)
	thread, err := tdb.getThreadWhere(ctx, "participant_a = ? AND participant_b = ?", first, second)
	if err != nil {
		return nil, false, err
	}
	if thread != nil {
		return thread, false, nil
	}

	threadId := uuid.NewString()
	if _, err := tdb.sess.SQL().
		InsertInto("thread").
		Columns("id", "participant_a", "participant_b", "last_message").
		Values(threadId, first, second, "").
		ExecContext(ctx); err != nil {
		// concurrent first message for the same pair
		if appDb.IsDupKeyErr(err) {
			thread, err := tdb.getThreadWhere(ctx, "participant_a = ? AND participant_b = ?", first, second)
			return thread, false, err
		}
		return nil, false, err
	}
	thread, err = tdb.GetThreadById(ctx, threadId)
	return thread, true, err
}

func (tdb *ThreadDB) GetThreadById(ctx context.Context, id string) (*model.Thread, error) {
	return tdb.getThreadWhere(ctx, "id = ?", id)
}

func (tdb *ThreadDB) getThreadWhere(ctx context.Context, cond string, args ...interface{}) (*model.Thread, error) {
	var thread flattenedThread
	if err := tdb.sess.SQL().
		Select("*").
		From("thread").
		Where(append([]interface{}{cond}, args...)...).
		IteratorContext(ctx).
		One(&thread); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildThreadFromFlattened(&thread), nil
}

func (tdb *ThreadDB) GetThreadsForUser(ctx context.Context, userId string) ([]*model.Thread, error) {
	var flattenedThreads []flattenedThread
	if err := tdb.sess.SQL().
		Select("*").
		From("thread").
		Where("participant_a = ? OR participant_b = ?", userId, userId).
		OrderBy("updated_at DESC").
		IteratorContext(ctx).
		All(&flattenedThreads); err != nil {
		return nil, err
	}
	threads := make([]*model.Thread, len(flattenedThreads))
	for i, flattened := range flattenedThreads {
		threads[i] = buildThreadFromFlattened(&flattened)
	}
	return threads, nil
}

func (tdb *ThreadDB) CreateMessage(ctx context.Context, req *appDb.CreateMessage) (string, error) {
	messageId := uuid.NewString()
	err := tdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			InsertInto("message").
			Columns("id", "thread_id", "sender_id", "text").
			Values(messageId, req.ThreadId, req.SenderId, req.Text).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			Update("thread").
			Set(map[string]interface{}{
				"last_message": req.Text,
				"updated_at":   time.Now(),
			}).
			Where("id = ?", req.ThreadId).
			ExecContext(ctx)
		return err
	}, nil)
	if err != nil {
		return "", err
	}
	return messageId, nil
}

type flattenedMessage struct {
	Id        string    `db:"id"`
	ThreadId  string    `db:"thread_id"`
	SenderId  string    `db:"sender_id"`
	Text      string    `db:"text"`
	Unsent    bool      `db:"unsent"`
	CreatedAt time.Time `db:"created_at"`
}

func (tdb *ThreadDB) GetMessages(ctx context.Context, threadId string) ([]*model.Message, error) {
	var flattenedMessages []flattenedMessage
	if err := tdb.sess.SQL().
		Select("*").
		From("message").
		Where("thread_id = ?", threadId).
		OrderBy("created_at").
		IteratorContext(ctx).
		All(&flattenedMessages); err != nil {
		return nil, err
	}

	seenBy, err := tdb.getSeenByForThread(ctx, threadId)
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, len(flattenedMessages))
	for i, flattened := range flattenedMessages {
		seen := seenBy[flattened.Id]
		if seen == nil {
			seen = []string{}
		}
		messages[i] = &model.Message{
			Id:        flattened.Id,
			ThreadId:  flattened.ThreadId,
			SenderId:  flattened.SenderId,
			Text:      flattened.Text,
			Unsent:    flattened.Unsent,
			SeenBy:    seen,
			CreatedAt: flattened.CreatedAt,
		}
	}
	return messages, nil
}

func (tdb *ThreadDB) getSeenByForThread(ctx context.Context, threadId string) (map[string][]string, error) {
	rows, err := tdb.sess.SQL().
		Select("ms.message_id", "ms.user_id").
		From("message_seen as ms").
		Join("message as m").On("ms.message_id = m.id").
		Where("m.thread_id = ?", threadId).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	seenBy := make(map[string][]string)
	for rows.Next() {
		var messageId, userId string
		if err := rows.Scan(&messageId, &userId); err != nil {
			return nil, err
		}
		seenBy[messageId] = append(seenBy[messageId], userId)
	}
	return seenBy, rows.Err()
}

func (tdb *ThreadDB) MarkMessageSeen(ctx context.Context, threadId, messageId, userId string) error {
	// The insert is guarded on the thread so a message id from another
	// thread is a no-op, matching the participant check upstream.
	_, err := tdb.sess.SQL().ExecContext(ctx,
		`INSERT INTO message_seen (message_id, user_id)
		 SELECT id, ? FROM message WHERE id = ? AND thread_id = ?`,
		userId, messageId, threadId)
	if err != nil && appDb.IsDupKeyErr(err) {
		return nil
	}
	return err
}

func (tdb *ThreadDB) UnsendMessage(ctx context.Context, threadId, messageId, senderId string) error {
	_, err := tdb.sess.SQL().
		Update("message").
		Set(map[string]interface{}{
			"text":   "",
			"unsent": true,
		}).
		Where("id = ? AND thread_id = ? AND sender_id = ?", messageId, threadId, senderId).
		ExecContext(ctx)
	return err
}
