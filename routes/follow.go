package routes

import (
	"log"
	"net/http"
	"time"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/services"
	"github.com/onemsu/onemsu-be/util"
)

type followRoutes struct {
	db    db.Database
	graph *services.SocialGraph
}

func AddFollowRoutes(group *gin.RouterGroup, database db.Database, graph *services.SocialGraph, authClient *firebaseAuth.Client, secret string) {
	routes := followRoutes{database, graph}
	authed := middleware.Auth(database, authClient, secret, &middleware.AuthConfig{})
	group.POST("/follows", authed, util.HandlerWrapper(routes.toggleFollow, &util.HandlerOpts{}))
	group.GET("/follows/suggestions", authed, util.HandlerWrapper(routes.getSuggestions, &util.HandlerOpts{}))
	group.POST("/blocks", authed, util.HandlerWrapper(routes.toggleBlock, &util.HandlerOpts{}))
}

type toggleTargetReq struct {
	TargetId string `json:"targetId"`
}

func (fr *followRoutes) toggleFollow(c *gin.Context) (interface{}, *util.HTTPError) {
	var req toggleTargetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	user := middleware.MustGetUser(c)
	if req.TargetId == "" || req.TargetId == user.Id {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "invalid follow target",
		}
	}
	target, err := fr.db.GetUserById(c, req.TargetId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if target == nil {
		return nil, &util.NotFoundHTTPErr
	}

	result, err := fr.db.ToggleFollow(c, user.Id, target.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}

	if result.Following && target.NotifyFollows {
		if err := fr.db.AppendNotification(c, &model.Notification{
			Id:          uuid.NewString(),
			RecipientId: target.Id,
			Type:        model.NotificationFollow,
			ActorId:     user.Id,
			CreatedAt:   time.Now(),
		}); err != nil {
			log.Println("an error occurred while appending a follow notification", err)
		}
	}
	if fr.graph != nil {
		fr.graph.RecordFollow(c, user.Id, target.Id, result.Following)
	}
	return result, nil
}

func (fr *followRoutes) toggleBlock(c *gin.Context) (interface{}, *util.HTTPError) {
	var req toggleTargetReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	user := middleware.MustGetUser(c)
	if req.TargetId == "" || req.TargetId == user.Id {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "invalid block target",
		}
	}

	blocked, err := fr.db.ToggleBlock(c, user.Id, req.TargetId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if blocked && fr.graph != nil {
		// Blocking severs follow edges both ways; keep the mirror in step.
		fr.graph.RecordFollow(c, user.Id, req.TargetId, false)
		fr.graph.RecordFollow(c, req.TargetId, user.Id, false)
	}
	return gin.H{"blocked": blocked}, nil
}

// getSuggestions serves friend-of-friend follow suggestions from the graph
// mirror. Without a mirror the list is empty rather than an error.
func (fr *followRoutes) getSuggestions(c *gin.Context) (interface{}, *util.HTTPError) {
	suggestions := []*model.PublicUser{} // DON'T return nil slice
	if fr.graph == nil {
		return suggestions, nil
	}
	user := middleware.MustGetUser(c)
	ids, err := fr.graph.SuggestionsFor(c, user.Id, 10)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	blockedIds, err := fr.db.GetBlockedIds(c, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	blocked := map[string]bool{}
	for _, id := range blockedIds {
		blocked[id] = true
	}
	for _, id := range ids {
		if blocked[id] {
			continue
		}
		suggested, err := fr.db.GetUserById(c, id)
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if suggested != nil {
			suggestions = append(suggestions, suggested.AsPublic())
		}
	}
	return suggestions, nil
}
