package app

import (
	"context"
	"errors"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

// GroupCursor is the most-recent feed pinned to a group. Unlike
// MostRecentCursor, the group id is mandatory.
type GroupCursor struct {
	MostRecentCursor
}

func (gc *GroupCursor) Posts(ctx context.Context, db appDb.Database, user *model.User, cursorOpts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error) {
	if gc.GroupId == "" {
		return nil, nil, errors.New("group cursor requires a groupId")
	}
	return gc.MostRecentCursor.Posts(ctx, db, user, cursorOpts)
}
