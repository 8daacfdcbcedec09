package file

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func (fdb *FileDB) CreateGroup(ctx context.Context, req *appDb.CreateGroup) (string, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	group := &model.Group{
		Id:          uuid.NewString(),
		Name:        req.Name,
		Campus:      req.Campus,
		Description: req.Description,
		CreatedAt:   time.Now(),
	}
	fdb.data.Groups = append(fdb.data.Groups, group)
	if err := fdb.save(); err != nil {
		return "", err
	}
	return group.Id, nil
}

func (fdb *FileDB) GetGroupsByIds(ctx context.Context, ids []string, opts *appDb.GetGroupsQueryOpts) ([]*model.GroupWithMembership, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	memberOf := make(map[string]bool)
	if opts.ForUserId != "" {
		for _, m := range fdb.data.Memberships {
			if m.UserId == opts.ForUserId {
				memberOf[m.GroupId] = true
			}
		}
	}
	var groups []*model.GroupWithMembership
	for _, group := range fdb.data.Groups {
		if ids != nil && !containsString(ids, group.Id) {
			continue
		}
		copied := *group
		groups = append(groups, &model.GroupWithMembership{
			Group:    &copied,
			IsMember: memberOf[group.Id],
		})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Name < groups[j].Name
	})
	return groups, nil
}

func (fdb *FileDB) ToggleMembership(ctx context.Context, groupId, userId string) (bool, int, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	var group *model.Group
	for _, g := range fdb.data.Groups {
		if g.Id == groupId {
			group = g
			break
		}
	}
	if group == nil {
		return false, 0, nil
	}
	hasMembership := false
	kept := fdb.data.Memberships[:0]
	for _, m := range fdb.data.Memberships {
		if m.GroupId == groupId && m.UserId == userId {
			hasMembership = true
			continue
		}
		kept = append(kept, m)
	}
	fdb.data.Memberships = kept
	if hasMembership {
		group.MemberCount--
	} else {
		fdb.data.Memberships = append(fdb.data.Memberships, &model.Membership{GroupId: groupId, UserId: userId})
		group.MemberCount++
	}
	if err := fdb.save(); err != nil {
		return false, 0, err
	}
	return !hasMembership, group.MemberCount, nil
}

func (fdb *FileDB) GetMembershipGroupIds(ctx context.Context, userId string) ([]string, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var ids []string
	for _, m := range fdb.data.Memberships {
		if m.UserId == userId {
			ids = append(ids, m.GroupId)
		}
	}
	return ids, nil
}
