// Package file implements the store interfaces over a single JSON file. It is
// the fallback persistence mode when no MySQL host is configured: everything
// lives in DATA_DIR/db.json and every mutation rewrites the file under one
// lock.
package file

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

type userRec struct {
	Id             string    `json:"id"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"passwordHash"`
	DisplayName    string    `json:"displayName"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	Campus         string    `json:"campus"`
	AvatarURL      string    `json:"avatarUrl"`
	CoverURL       string    `json:"coverUrl"`
	FollowerCount  int       `json:"followers"`
	FollowingCount int       `json:"following"`
	NotifyFollows  bool      `json:"notifyFollows"`
	NotifyLikes    bool      `json:"notifyLikes"`
	CreatedAt      time.Time `json:"createdAt"`
}

type postRec struct {
	Id           string    `json:"id"`
	AuthorId     string    `json:"authorId"`
	GroupId      string    `json:"groupId,omitempty"`
	Campus       string    `json:"campus"`
	Text         string    `json:"text"`
	ImageURL     string    `json:"imageUrl,omitempty"`
	AudioURL     string    `json:"audioUrl,omitempty"`
	LikeCount    int       `json:"likeCount"`
	CommentCount int       `json:"commentCount"`
	CreatedAt    time.Time `json:"createdAt"`
}

type likeRec struct {
	PostId string `json:"postId"`
	UserId string `json:"userId"`
}

type commentRec struct {
	Id        string    `json:"id"`
	PostId    string    `json:"postId"`
	AuthorId  string    `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}

type followRec struct {
	FollowerId string    `json:"followerId"`
	FolloweeId string    `json:"followeeId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type blockRec struct {
	BlockerId string `json:"blockerId"`
	BlockedId string `json:"blockedId"`
}

type threadRec struct {
	Id           string    `json:"id"`
	ParticipantA string    `json:"participantA"`
	ParticipantB string    `json:"participantB"`
	LastMessage  string    `json:"lastMessage"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type messageRec struct {
	Id        string    `json:"id"`
	ThreadId  string    `json:"threadId"`
	SenderId  string    `json:"senderId"`
	Text      string    `json:"text"`
	Unsent    bool      `json:"unsent"`
	SeenBy    []string  `json:"seenBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type storeData struct {
	Users         []*userRec            `json:"users"`
	Sessions      []*model.Session      `json:"sessions"`
	Posts         []*postRec            `json:"posts"`
	Likes         []*likeRec            `json:"likes"`
	Comments      []*commentRec         `json:"comments"`
	Follows       []*followRec          `json:"follows"`
	Blocks        []*blockRec           `json:"blocks"`
	Threads       []*threadRec          `json:"threads"`
	Messages      []*messageRec         `json:"messages"`
	Notifications []*model.Notification `json:"notifications"`
	Groups        []*model.Group        `json:"groups"`
	Memberships   []*model.Membership   `json:"memberships"`
}

type FileDB struct {
	path string
	mu   sync.RWMutex
	data storeData
}

func GetDatabase(dataDir string) (appDb.Database, error) {
	fdb := &FileDB{path: filepath.Join(dataDir, "db.json")}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	if err := fdb.load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	return fdb, nil
}

func (fdb *FileDB) load() error {
	raw, err := os.ReadFile(fdb.path)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, &fdb.data)
}

// save must be called with the write lock held.
func (fdb *FileDB) save() error {
	raw, err := json.MarshalIndent(&fdb.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(fdb.path, raw, 0644)
}

func (fdb *FileDB) Close() error {
	return nil
}

func userToRec(user *model.User) *userRec {
	return &userRec{
		Id:             user.Id,
		Email:          user.Email,
		PasswordHash:   user.PasswordHash,
		DisplayName:    user.DisplayName,
		Username:       user.Username,
		Bio:            user.Bio,
		Location:       user.Location,
		Website:        user.Website,
		Campus:         user.Campus,
		AvatarURL:      user.AvatarURL,
		CoverURL:       user.CoverURL,
		FollowerCount:  user.FollowerCount,
		FollowingCount: user.FollowingCount,
		NotifyFollows:  user.NotifyFollows,
		NotifyLikes:    user.NotifyLikes,
		CreatedAt:      user.CreatedAt,
	}
}

func recToUser(rec *userRec) *model.User {
	return &model.User{
		Id:             rec.Id,
		Email:          rec.Email,
		PasswordHash:   rec.PasswordHash,
		DisplayName:    rec.DisplayName,
		Username:       rec.Username,
		Bio:            rec.Bio,
		Location:       rec.Location,
		Website:        rec.Website,
		Campus:         rec.Campus,
		AvatarURL:      rec.AvatarURL,
		CoverURL:       rec.CoverURL,
		FollowerCount:  rec.FollowerCount,
		FollowingCount: rec.FollowingCount,
		NotifyFollows:  rec.NotifyFollows,
		NotifyLikes:    rec.NotifyLikes,
		CreatedAt:      rec.CreatedAt,
	}
}

// findUser must be called with at least the read lock held.
func (fdb *FileDB) findUser(id string) *userRec {
	for _, rec := range fdb.data.Users {
		if rec.Id == id {
			return rec
		}
	}
	return nil
}

func (fdb *FileDB) authorOf(id string) *model.Author {
	rec := fdb.findUser(id)
	if rec == nil {
		return &model.Author{Id: id}
	}
	return &model.Author{
		Id:          rec.Id,
		DisplayName: rec.DisplayName,
		Username:    rec.Username,
		AvatarURL:   rec.AvatarURL,
	}
}

var _ appDb.Database = (*FileDB)(nil)
