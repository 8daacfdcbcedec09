package file

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func orderPair(userA, userB string) (string, string) {
	if userB < userA {
		return userB, userA
	}
	return userA, userB
}

func recToThread(rec *threadRec) *model.Thread {
	return &model.Thread{
		Id:             rec.Id,
		ParticipantIds: []string{rec.ParticipantA, rec.ParticipantB},
		LastMessage:    rec.LastMessage,
		UpdatedAt:      rec.UpdatedAt,
	}
}

func (fdb *FileDB) FindOrCreateThread(ctx context.Context, userA, userB string) (*model.Thread, bool, error) {
	first, second := orderPair(userA, userB)
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	for _, rec := range fdb.data.Threads {
		if rec.ParticipantA == first && rec.ParticipantB == second {
			return recToThread(rec), false, nil
		}
	}
	rec := &threadRec{
		Id:           uuid.NewString(),
		ParticipantA: first,
		ParticipantB: second,
		UpdatedAt:    time.Now(),
	}
	fdb.data.Threads = append(fdb.data.Threads, rec)
	if err := fdb.save(); err != nil {
		return nil, false, err
	}
	return recToThread(rec), true, nil
}

func (fdb *FileDB) GetThreadById(ctx context.Context, id string) (*model.Thread, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	if rec := fdb.findThread(id); rec != nil {
		return recToThread(rec), nil
	}
	return nil, nil
}

func (fdb *FileDB) findThread(id string) *threadRec {
	for _, rec := range fdb.data.Threads {
		if rec.Id == id {
			return rec
		}
	}
	return nil
}

func (fdb *FileDB) GetThreadsForUser(ctx context.Context, userId string) ([]*model.Thread, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var threads []*model.Thread
	for _, rec := range fdb.data.Threads {
		if rec.ParticipantA == userId || rec.ParticipantB == userId {
			threads = append(threads, recToThread(rec))
		}
	}
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].UpdatedAt.After(threads[j].UpdatedAt)
	})
	return threads, nil
}

func (fdb *FileDB) CreateMessage(ctx context.Context, req *appDb.CreateMessage) (string, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	thread := fdb.findThread(req.ThreadId)
	if thread == nil {
		return "", nil
	}
	rec := &messageRec{
		Id:        uuid.NewString(),
		ThreadId:  req.ThreadId,
		SenderId:  req.SenderId,
		Text:      req.Text,
		SeenBy:    []string{},
		CreatedAt: time.Now(),
	}
	fdb.data.Messages = append(fdb.data.Messages, rec)
	thread.LastMessage = req.Text
	thread.UpdatedAt = rec.CreatedAt
	if err := fdb.save(); err != nil {
		return "", err
	}
	return rec.Id, nil
}

func (fdb *FileDB) GetMessages(ctx context.Context, threadId string) ([]*model.Message, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var messages []*model.Message
	for _, rec := range fdb.data.Messages {
		if rec.ThreadId != threadId {
			continue
		}
		seen := rec.SeenBy
		if seen == nil {
			seen = []string{}
		}
		messages = append(messages, &model.Message{
			Id:        rec.Id,
			ThreadId:  rec.ThreadId,
			SenderId:  rec.SenderId,
			Text:      rec.Text,
			Unsent:    rec.Unsent,
			SeenBy:    seen,
			CreatedAt: rec.CreatedAt,
		})
	}
	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.Before(messages[j].CreatedAt)
	})
	return messages, nil
}

func (fdb *FileDB) MarkMessageSeen(ctx context.Context, threadId, messageId, userId string) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	for _, rec := range fdb.data.Messages {
		if rec.Id != messageId || rec.ThreadId != threadId {
			continue
		}
		for _, seen := range rec.SeenBy {
			if seen == userId {
				return nil
			}
		}
		rec.SeenBy = append(rec.SeenBy, userId)
		return fdb.save()
	}
	return nil
}

func (fdb *FileDB) UnsendMessage(ctx context.Context, threadId, messageId, senderId string) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	for _, rec := range fdb.data.Messages {
		if rec.Id == messageId && rec.ThreadId == threadId && rec.SenderId == senderId {
			rec.Text = ""
			rec.Unsent = true
			return fdb.save()
		}
	}
	return nil
}
