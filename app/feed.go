package app

import (
	"context"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

// buildBaseQuery applies the filters every feed shares: the viewer's like
// history and the exclusion of authors the viewer has blocked.
func buildBaseQuery(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) (*appDb.PostsListQuery, error) {
	query := &appDb.PostsListQuery{
		PostQueryOpts: &appDb.PostQueryOpts{},
		Limit:         cursorOpts.Limit,
	}
	if user == nil {
		return query, nil
	}
	query.LikeHistoryOf = user.Id
	blockedIds, err := db.GetBlockedIds(ctx, user.Id)
	if err != nil {
		return nil, err
	}
	query.ExcludeAuthorIds = blockedIds
	return query, nil
}
