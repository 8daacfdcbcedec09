package routes

import (
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/app"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/util"
)

const defaultFeedPageSize = 20

type feedRoutes struct {
	db db.Database
}

func AddFeedRoutes(group *gin.RouterGroup, database db.Database, authClient *firebaseAuth.Client, secret string) {
	routes := feedRoutes{db: database}
	feed := group.Group("/feed", middleware.Auth(database, authClient, secret, &middleware.AuthConfig{}))
	feed.POST("", util.HandlerWrapper(routes.getFeed, &util.HandlerOpts{}))
}

func (fr *feedRoutes) getFeed(c *gin.Context) (interface{}, *util.HTTPError) {
	var cursor app.TaggedUnionCursor
	if err := c.ShouldBindJSON(&cursor); err != nil {
		if err == app.UnknownCursorTypeErr {
			return nil, &util.HTTPError{
				Status:  http.StatusBadRequest,
				Message: err.Error(),
			}
		}
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	posts, nextCursor, err := cursor.Posts(c, fr.db, middleware.MustGetUser(c), &app.PostCursorOpts{
		Limit: defaultFeedPageSize,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return &gin.H{
		"posts":  posts,
		"cursor": nextCursor,
	}, nil
}
