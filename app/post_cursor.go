package app

import (
	"context"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

type PostCursorOpts struct {
	Limit int
}

// PostCursor is one page of a feed. Posts returns the page plus the cursor
// for the next page (nil when exhausted); the returned cursor is what gets
// serialized back to the client.
type PostCursor interface {
	Posts(ctx context.Context, db appDb.Database, user *model.User, opts *PostCursorOpts) (posts []*model.Post, cursor interface{}, err error)
}

type PostCursorType string
