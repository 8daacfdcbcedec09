package app

import (
	"context"
	"time"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

// MostRecentCursor pages the reverse-chronological feed, optionally scoped to
// a single group. Paging is keyset on (createdAt, id) so concurrent inserts
// never shift or duplicate pages.
type MostRecentCursor struct {
	GroupId  string     `json:"groupId,omitempty"`
	LastDate *time.Time `json:"lastDate,omitempty"`
	LastId   string     `json:"lastId,omitempty"`
}

func (mrc *MostRecentCursor) Posts(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	query, err := buildBaseQuery(ctx, db, user, cursorOpts)
	if err != nil {
		return nil, nil, err
	}
	query.From = mrc.LastDate
	query.LastId = mrc.LastId
	query.GroupId = mrc.GroupId

	posts, err = db.GetPosts(ctx, query)
	if err != nil {
		return nil, nil, err
	}
	return posts, mrc.buildCursorForNextPage(posts), nil
}

func (mrc *MostRecentCursor) buildCursorForNextPage(previousPosts []*model.Post) *MostRecentCursor {
	if len(previousPosts) == 0 {
		return nil
	}
	last := previousPosts[len(previousPosts)-1]
	lastDate := last.CreatedAt
	return &MostRecentCursor{
		GroupId:  mrc.GroupId,
		LastDate: &lastDate,
		LastId:   last.Id,
	}
}
