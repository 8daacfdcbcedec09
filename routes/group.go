package routes

import (
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/controllers"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/util"
)

type groupRoutes struct {
	db         db.Database
	controller *controllers.GroupController
}

func AddGroupRoutes(group *gin.RouterGroup, database db.Database, controller *controllers.GroupController, authClient *firebaseAuth.Client, secret string) {
	routes := groupRoutes{database, controller}
	groups := group.Group("/groups", middleware.Auth(database, authClient, secret, &middleware.AuthConfig{}))
	groups.GET("", util.HandlerWrapper(routes.listGroups, &util.HandlerOpts{}))
	groups.GET("/:id", util.HandlerWrapper(routes.getGroupById, &util.HandlerOpts{}))
	groups.PUT("", util.HandlerWrapper(routes.createGroup, &util.HandlerOpts{}))
	groups.POST("/:id/membership", util.HandlerWrapper(routes.toggleMembership, &util.HandlerOpts{}))
}

func (gr *groupRoutes) listGroups(c *gin.Context) (interface{}, *util.HTTPError) {
	return gr.controller.ListGroups(c, middleware.MustGetUser(c).Id)
}

func (gr *groupRoutes) getGroupById(c *gin.Context) (interface{}, *util.HTTPError) {
	return gr.controller.GetGroupById(c, c.Param("id"), &db.GetGroupsQueryOpts{
		ForUserId: middleware.MustGetUser(c).Id,
	})
}

type createGroupReq struct {
	Name        string `json:"name"`
	Campus      string `json:"campus"`
	Description string `json:"description"`
}

func (gr *groupRoutes) createGroup(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createGroupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	name := util.SanitizeText(req.Name)
	if len(name) < 3 {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "group name must be at least 3 characters",
		}
	}
	id, httpErr := gr.controller.CreateGroup(c, &db.CreateGroup{
		Name:        name,
		Campus:      util.SanitizeText(req.Campus),
		Description: util.SanitizeText(req.Description),
	})
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"id": id}, nil
}

func (gr *groupRoutes) toggleMembership(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	target, httpErr := gr.controller.GetGroupById(c, c.Param("id"), &db.GetGroupsQueryOpts{})
	if httpErr != nil {
		return nil, httpErr
	}
	member, memberCount, httpErr := gr.controller.ToggleMembership(c, target.Id, user.Id)
	if httpErr != nil {
		return nil, httpErr
	}
	return gin.H{"member": member, "members": memberCount}, nil
}
