package app

import (
	"context"
	"errors"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

// FollowingCursor pages posts authored by users the viewer follows. The
// followed set is resolved once on the first page and pinned into the cursor,
// so later pages stay stable even if the viewer follows someone mid-scroll.
type FollowingCursor struct {
	MostRecentCursor
	AuthorIds []string `json:"authors,omitempty"`
}

func (fc *FollowingCursor) Posts(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	if user == nil {
		return nil, nil, errors.New("must be logged in to fetch the following feed")
	}
	authorIds := fc.AuthorIds
	if authorIds == nil {
		authorIds, err = db.GetFollowingIds(ctx, user.Id)
		if err != nil {
			return nil, nil, err
		}
		if len(authorIds) == 0 {
			return []*model.Post{}, nil, nil
		}
	}

	query, err := buildBaseQuery(ctx, db, user, cursorOpts)
	if err != nil {
		return nil, nil, err
	}
	query.From = fc.LastDate
	query.LastId = fc.LastId
	query.AuthorIds = authorIds

	posts, err = db.GetPosts(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return posts, fc.buildCursorForNextPage(authorIds, posts), nil
}

func (fc *FollowingCursor) buildCursorForNextPage(authorIds []string, previousPosts []*model.Post) *FollowingCursor {
	next := fc.MostRecentCursor.buildCursorForNextPage(previousPosts)
	if next == nil {
		return nil
	}
	return &FollowingCursor{
		MostRecentCursor: *next,
		AuthorIds:        authorIds,
	}
}
