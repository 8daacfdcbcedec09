package routes

import (
	"net/http"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/util"
)

type threadRoutes struct {
	db db.Database
}

func AddThreadRoutes(group *gin.RouterGroup, database db.Database, authClient *firebaseAuth.Client, secret string) {
	routes := threadRoutes{database}
	threads := group.Group("/threads", middleware.Auth(database, authClient, secret, &middleware.AuthConfig{}))
	threads.POST("", util.HandlerWrapper(routes.startThread, &util.HandlerOpts{}))
	threads.GET("", util.HandlerWrapper(routes.getThreads, &util.HandlerOpts{}))
	threads.GET("/:id/messages", util.HandlerWrapper(routes.getMessages, &util.HandlerOpts{}))
	threads.PUT("/:id/messages", util.HandlerWrapper(routes.sendMessage, &util.HandlerOpts{}))
	threads.POST("/:id/messages/:mid/seen", util.HandlerWrapper(routes.markSeen, &util.HandlerOpts{}))
	threads.POST("/:id/messages/:mid/unsend", util.HandlerWrapper(routes.unsendMessage, &util.HandlerOpts{}))
}

type startThreadReq struct {
	RecipientId string `json:"recipientId"`
	Text        string `json:"text"`
}

func (tr *threadRoutes) startThread(c *gin.Context) (interface{}, *util.HTTPError) {
	var req startThreadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	user := middleware.MustGetUser(c)
	text := util.SanitizeText(req.Text)
	if req.RecipientId == "" || req.RecipientId == user.Id || text == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "recipientId and text are required",
		}
	}
	recipient, err := tr.db.GetUserById(c, req.RecipientId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if recipient == nil {
		return nil, &util.NotFoundHTTPErr
	}

	thread, _, err := tr.db.FindOrCreateThread(c, user.Id, recipient.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	messageId, err := tr.db.CreateMessage(c, &db.CreateMessage{
		ThreadId: thread.Id,
		SenderId: user.Id,
		Text:     text,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"threadId": thread.Id, "messageId": messageId}, nil
}

func (tr *threadRoutes) getThreads(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	threads, err := tr.db.GetThreadsForUser(c, user.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return threads, nil
}

// mustGetThreadAsParticipant loads the thread and enforces membership.
func (tr *threadRoutes) mustGetThreadAsParticipant(c *gin.Context) (*model.Thread, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	thread, err := tr.db.GetThreadById(c, c.Param("id"))
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if thread == nil {
		return nil, &util.NotFoundHTTPErr
	}
	if !thread.HasParticipant(user.Id) {
		return nil, &util.HTTPError{
			Status:  http.StatusForbidden,
			Message: "not a participant in this thread",
		}
	}
	return thread, nil
}

func (tr *threadRoutes) getMessages(c *gin.Context) (interface{}, *util.HTTPError) {
	thread, httpErr := tr.mustGetThreadAsParticipant(c)
	if httpErr != nil {
		return nil, httpErr
	}
	messages, err := tr.db.GetMessages(c, thread.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return messages, nil
}

type sendMessageReq struct {
	Text string `json:"text"`
}

func (tr *threadRoutes) sendMessage(c *gin.Context) (interface{}, *util.HTTPError) {
	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	text := util.SanitizeText(req.Text)
	if text == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "text must not be empty",
		}
	}
	thread, httpErr := tr.mustGetThreadAsParticipant(c)
	if httpErr != nil {
		return nil, httpErr
	}

	messageId, err := tr.db.CreateMessage(c, &db.CreateMessage{
		ThreadId: thread.Id,
		SenderId: middleware.MustGetUser(c).Id,
		Text:     text,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": messageId}, nil
}

func (tr *threadRoutes) markSeen(c *gin.Context) (interface{}, *util.HTTPError) {
	thread, httpErr := tr.mustGetThreadAsParticipant(c)
	if httpErr != nil {
		return nil, httpErr
	}
	if err := tr.db.MarkMessageSeen(c, thread.Id, c.Param("mid"), middleware.MustGetUser(c).Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"seen": true}, nil
}

func (tr *threadRoutes) unsendMessage(c *gin.Context) (interface{}, *util.HTTPError) {
	thread, httpErr := tr.mustGetThreadAsParticipant(c)
	if httpErr != nil {
		return nil, httpErr
	}
	if err := tr.db.UnsendMessage(c, thread.Id, c.Param("mid"), middleware.MustGetUser(c).Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"unsent": true}, nil
}
