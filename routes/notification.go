package routes

import (
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/util"
)

type notificationRoutes struct {
	db db.Database
}

func AddNotificationRoutes(group *gin.RouterGroup, database db.Database, authClient *firebaseAuth.Client, secret string) {
	routes := notificationRoutes{database}
	notifications := group.Group("/notifications", middleware.Auth(database, authClient, secret, &middleware.AuthConfig{}))
	notifications.GET("", util.HandlerWrapper(routes.getNotifications, &util.HandlerOpts{}))
	notifications.POST("/read", util.HandlerWrapper(routes.markAllRead, &util.HandlerOpts{}))
}

func (nr *notificationRoutes) getNotifications(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	notifications, err := nr.db.GetNotificationsForUser(c, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return notifications, nil
}

func (nr *notificationRoutes) markAllRead(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	if err := nr.db.MarkNotificationsRead(c, user.Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"read": true}, nil
}
