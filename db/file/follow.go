package file

import (
	"context"
	"time"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func (fdb *FileDB) ToggleFollow(ctx context.Context, followerId, followeeId string) (*appDb.FollowResult, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	result := &appDb.FollowResult{Following: !fdb.removeFollowEdge(followerId, followeeId)}
	if result.Following {
		fdb.data.Follows = append(fdb.data.Follows, &followRec{
			FollowerId: followerId,
			FolloweeId: followeeId,
			CreatedAt:  time.Now(),
		})
	}
	delta := -1
	if result.Following {
		delta = 1
	}
	if follower := fdb.findUser(followerId); follower != nil {
		follower.FollowingCount += delta
		result.FollowingCount = follower.FollowingCount
	}
	if followee := fdb.findUser(followeeId); followee != nil {
		followee.FollowerCount += delta
		result.FollowerCount = followee.FollowerCount
	}
	if err := fdb.save(); err != nil {
		return nil, err
	}
	return result, nil
}

// removeFollowEdge reports whether the edge existed. Caller holds the write
// lock and is responsible for counter adjustment.
func (fdb *FileDB) removeFollowEdge(followerId, followeeId string) bool {
	removed := false
	kept := fdb.data.Follows[:0]
	for _, edge := range fdb.data.Follows {
		if edge.FollowerId == followerId && edge.FolloweeId == followeeId {
			removed = true
			continue
		}
		kept = append(kept, edge)
	}
	fdb.data.Follows = kept
	return removed
}

func (fdb *FileDB) ToggleBlock(ctx context.Context, blockerId, blockedId string) (bool, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	hasEdge := false
	kept := fdb.data.Blocks[:0]
	for _, edge := range fdb.data.Blocks {
		if edge.BlockerId == blockerId && edge.BlockedId == blockedId {
			hasEdge = true
			continue
		}
		kept = append(kept, edge)
	}
	fdb.data.Blocks = kept
	if !hasEdge {
		fdb.data.Blocks = append(fdb.data.Blocks, &blockRec{BlockerId: blockerId, BlockedId: blockedId})
		// blocking severs follows in both directions
		for _, pair := range [][2]string{{blockerId, blockedId}, {blockedId, blockerId}} {
			if fdb.removeFollowEdge(pair[0], pair[1]) {
				if follower := fdb.findUser(pair[0]); follower != nil {
					follower.FollowingCount--
				}
				if followee := fdb.findUser(pair[1]); followee != nil {
					followee.FollowerCount--
				}
			}
		}
	}
	if err := fdb.save(); err != nil {
		return false, err
	}
	return !hasEdge, nil
}

func (fdb *FileDB) GetFollowers(ctx context.Context, userId string) ([]*model.Author, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var authors []*model.Author
	for _, edge := range fdb.data.Follows {
		if edge.FolloweeId == userId {
			authors = append(authors, fdb.authorOf(edge.FollowerId))
		}
	}
	return authors, nil
}

func (fdb *FileDB) GetFollowing(ctx context.Context, userId string) ([]*model.Author, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var authors []*model.Author
	for _, edge := range fdb.data.Follows {
		if edge.FollowerId == userId {
			authors = append(authors, fdb.authorOf(edge.FolloweeId))
		}
	}
	return authors, nil
}

func (fdb *FileDB) GetFollowingIds(ctx context.Context, userId string) ([]string, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var ids []string
	for _, edge := range fdb.data.Follows {
		if edge.FollowerId == userId {
			ids = append(ids, edge.FolloweeId)
		}
	}
	return ids, nil
}

func (fdb *FileDB) GetBlockedIds(ctx context.Context, userId string) ([]string, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var ids []string
	for _, edge := range fdb.data.Blocks {
		if edge.BlockerId == userId {
			ids = append(ids, edge.BlockedId)
		}
	}
	return ids, nil
}
