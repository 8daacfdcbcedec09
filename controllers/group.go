package controllers

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/util"
)

const GroupListUpdateInterval = time.Minute * 20

// GroupController serves the group directory from an in-memory list refreshed
// on a ticker. Membership flags are per-viewer so those always hit the store;
// only the viewer-independent listing is cached.
type GroupController struct {
	db             db.GroupDatabase
	cachedList     []*model.Group
	cachedListLock sync.Mutex
	updateTicker   *time.Ticker
}

func NewGroupController(c context.Context, db db.GroupDatabase) (*GroupController, error) {
	controller := &GroupController{
		db: db,
	}
	if err := controller.updateCachedList(c); err != nil {
		return nil, err
	}

	updateTicker := time.NewTicker(GroupListUpdateInterval)
	controller.updateTicker = updateTicker
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Println("recovered while attempting to update the cached group list", r)
			}
		}()
		for {
			select {
			case <-updateTicker.C:
				controller.attemptToUpdateCachedList(c)
			}
		}
	}()

	return controller, nil
}

func (gc *GroupController) CreateGroup(c context.Context, req *db.CreateGroup) (string, *util.HTTPError) {
	id, err := gc.db.CreateGroup(c, req)
	if err != nil {
		return "", util.BuildDbHTTPErr(err)
	}
	go gc.attemptToUpdateCachedList(c)

	return id, nil
}

// ListGroups returns the cached directory. Pass a user id to overlay that
// viewer's membership flags.
func (gc *GroupController) ListGroups(c context.Context, forUserId string) ([]*model.GroupWithMembership, *util.HTTPError) {
	gc.cachedListLock.Lock()
	groups := gc.cachedList
	gc.cachedListLock.Unlock()

	memberOf := map[string]bool{}
	if forUserId != "" {
		memberIds, err := gc.db.GetMembershipGroupIds(c, forUserId)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		for _, id := range memberIds {
			memberOf[id] = true
		}
	}

	withMembership := make([]*model.GroupWithMembership, len(groups))
	for i, group := range groups {
		withMembership[i] = &model.GroupWithMembership{
			Group:    group,
			IsMember: memberOf[group.Id],
		}
	}
	return withMembership, nil
}

func (gc *GroupController) GetGroupById(c context.Context, id string, opts *db.GetGroupsQueryOpts) (*model.GroupWithMembership, *util.HTTPError) {
	groups, err := gc.db.GetGroupsByIds(c, []string{id}, opts)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if len(groups) == 0 {
		return nil, &util.NotFoundHTTPErr
	}
	return groups[0], nil
}

func (gc *GroupController) ToggleMembership(c context.Context, groupId, userId string) (member bool, memberCount int, httpErr *util.HTTPError) {
	member, memberCount, err := gc.db.ToggleMembership(c, groupId, userId)
	if err != nil {
		return false, 0, util.BuildDbHTTPErr(err)
	}
	go gc.attemptToUpdateCachedList(c)
	return member, memberCount, nil
}

func (gc *GroupController) attemptToUpdateCachedList(c context.Context) {
	if err := gc.updateCachedList(c); err != nil {
		log.Println("an error occurred while updating the cached group list", err)
	}
}

func (gc *GroupController) updateCachedList(c context.Context) error {
	allGroups, err := gc.db.GetGroupsByIds(c, nil, &db.GetGroupsQueryOpts{})
	if err != nil {
		return err
	}
	groups := make([]*model.Group, len(allGroups))
	for i, group := range allGroups {
		groups[i] = group.Group
	}

	gc.cachedListLock.Lock()
	defer gc.cachedListLock.Unlock()
	gc.cachedList = groups
	return nil
}
