package controllers

import (
	"context"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/util"
)

// directoryIndex is an immutable snapshot of every user, pre-sorted for
// search. Snapshots are swapped wholesale under the lock so readers never see
// a half-built index.
type directoryIndex struct {
	users     []*model.User
	byId      map[string]*model.User
	createdAt time.Time
}

const DirectoryUpdateInterval = time.Minute * 15

// DirectoryController keeps an in-memory user directory for prefix search.
// The backing store stays authoritative; the index refreshes on a ticker and
// eagerly after signups.
type DirectoryController struct {
	db              db.UserDatabase
	cachedIndex     *directoryIndex
	cachedIndexLock sync.Mutex
	updateTicker    *time.Ticker
}

func NewDirectoryController(c context.Context, db db.UserDatabase) (*DirectoryController, error) {
	controller := &DirectoryController{
		db: db,
	}
	if err := controller.updateCachedIndex(c); err != nil {
		return nil, err
	}

	updateTicker := time.NewTicker(DirectoryUpdateInterval)
	controller.updateTicker = updateTicker
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Println("recovered while attempting to update the user directory", r)
			}
		}()
		for {
			select {
			case <-updateTicker.C:
				controller.attemptToUpdateCachedIndex(c)
			}
		}
	}()

	return controller, nil
}

// NotifyUserChanged refreshes the index out of band, e.g. after a signup or
// profile edit, so searches pick the change up without waiting for the ticker.
func (dc *DirectoryController) NotifyUserChanged(c context.Context) {
	dc.attemptToUpdateCachedIndex(c)
}

// Search returns users whose username or display name contains the query,
// case-insensitively, sorted by display name. An empty query lists everyone
// up to the limit.
func (dc *DirectoryController) Search(query string, limit int) ([]*model.User, *util.HTTPError) {
	index := dc.snapshot()
	needle := strings.ToLower(strings.TrimSpace(query))

	matches := []*model.User{} // DON'T return nil slice
	for _, user := range index.users {
		if needle != "" &&
			!strings.Contains(strings.ToLower(user.Username), needle) &&
			!strings.Contains(strings.ToLower(user.DisplayName), needle) {
			continue
		}
		matches = append(matches, user)
		if limit > 0 && len(matches) >= limit {
			break
		}
	}
	return matches, nil
}

// Lookup returns the cached user, falling back to the store on a miss so a
// just-created account resolves before the next refresh.
func (dc *DirectoryController) Lookup(c context.Context, id string) (*model.User, *util.HTTPError) {
	if user, ok := dc.snapshot().byId[id]; ok {
		return user, nil
	}
	user, err := dc.db.GetUserById(c, id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return user, nil
}

func (dc *DirectoryController) snapshot() *directoryIndex {
	dc.cachedIndexLock.Lock()
	defer dc.cachedIndexLock.Unlock()
	return dc.cachedIndex
}

func (dc *DirectoryController) attemptToUpdateCachedIndex(c context.Context) {
	if err := dc.updateCachedIndex(c); err != nil {
		log.Println("an error occurred while updating the user directory", err)
	}
}

func (dc *DirectoryController) updateCachedIndex(c context.Context) error {
	allUsers, err := dc.db.ListUsers(c)
	if err != nil {
		return err
	}
	newIndex := buildIndexFromUsers(allUsers)

	dc.cachedIndexLock.Lock()
	defer dc.cachedIndexLock.Unlock()
	dc.cachedIndex = newIndex
	return nil
}

func buildIndexFromUsers(users []*model.User) *directoryIndex {
	byId := make(map[string]*model.User, len(users))
	sorted := make([]*model.User, len(users))
	copy(sorted, users)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := strings.ToLower(sorted[i].DisplayName), strings.ToLower(sorted[j].DisplayName)
		if a == b {
			return sorted[i].Id < sorted[j].Id
		}
		return a < b
	})
	for _, user := range sorted {
		byId[user.Id] = user
	}
	return &directoryIndex{
		users:     sorted,
		byId:      byId,
		createdAt: time.Now(),
	}
}
