package file

import (
	"context"
	"strings"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func (fdb *FileDB) CreateUser(ctx context.Context, user *model.User) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	for _, rec := range fdb.data.Users {
		if strings.EqualFold(rec.Email, user.Email) {
			return appDb.ErrDuplicateEmail
		}
	}
	fdb.data.Users = append(fdb.data.Users, userToRec(user))
	return fdb.save()
}

func (fdb *FileDB) GetUserById(ctx context.Context, id string) (*model.User, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	if rec := fdb.findUser(id); rec != nil {
		return recToUser(rec), nil
	}
	return nil, nil
}

func (fdb *FileDB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	for _, rec := range fdb.data.Users {
		if strings.EqualFold(rec.Email, email) {
			return recToUser(rec), nil
		}
	}
	return nil, nil
}

func (fdb *FileDB) ListUsers(ctx context.Context) ([]*model.User, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	users := make([]*model.User, len(fdb.data.Users))
	for i, rec := range fdb.data.Users {
		users[i] = recToUser(rec)
	}
	return users, nil
}

func (fdb *FileDB) UpdateUser(ctx context.Context, id string, patch *appDb.ProfilePatch) (*model.User, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	rec := fdb.findUser(id)
	if rec == nil {
		return nil, nil
	}
	applyIfPresent(&rec.DisplayName, patch.DisplayName)
	applyIfPresent(&rec.Username, patch.Username)
	applyIfPresent(&rec.Bio, patch.Bio)
	applyIfPresent(&rec.Location, patch.Location)
	applyIfPresent(&rec.Website, patch.Website)
	applyIfPresent(&rec.Campus, patch.Campus)
	applyIfPresent(&rec.AvatarURL, patch.AvatarURL)
	applyIfPresent(&rec.CoverURL, patch.CoverURL)
	if err := fdb.save(); err != nil {
		return nil, err
	}
	return recToUser(rec), nil
}

func applyIfPresent(target *string, val *string) {
	if val != nil {
		*target = *val
	}
}

func (fdb *FileDB) CreateSession(ctx context.Context, session *model.Session) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	kept := fdb.data.Sessions[:0]
	for _, s := range fdb.data.Sessions {
		if s.UserId != session.UserId {
			kept = append(kept, s)
		}
	}
	fdb.data.Sessions = append(kept, session)
	return fdb.save()
}

func (fdb *FileDB) GetSession(ctx context.Context, id string) (*model.Session, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	for _, s := range fdb.data.Sessions {
		if s.Id == id {
			session := *s
			return &session, nil
		}
	}
	return nil, nil
}

func (fdb *FileDB) DeleteSession(ctx context.Context, id string) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	kept := fdb.data.Sessions[:0]
	for _, s := range fdb.data.Sessions {
		if s.Id != id {
			kept = append(kept, s)
		}
	}
	fdb.data.Sessions = kept
	return fdb.save()
}
