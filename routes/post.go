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
	"github.com/onemsu/onemsu-be/util"
)

type postRoutes struct {
	db db.Database
}

func AddPostRoutes(group *gin.RouterGroup, database db.Database, authClient *firebaseAuth.Client, secret string) {
	routes := postRoutes{database}
	posts := group.Group("/posts", middleware.Auth(database, authClient, secret, &middleware.AuthConfig{}))
	posts.PUT("", util.HandlerWrapper(routes.createPost, &util.HandlerOpts{}))
	posts.GET("/:id", util.HandlerWrapper(routes.getPostById, &util.HandlerOpts{}))
	posts.DELETE("/:id", util.HandlerWrapper(routes.deletePost, &util.HandlerOpts{}))
	posts.POST("/:id/like", util.HandlerWrapper(routes.toggleLike, &util.HandlerOpts{}))
	posts.PUT("/:id/comments", util.HandlerWrapper(routes.createComment, &util.HandlerOpts{}))
	posts.GET("/:id/comments", util.HandlerWrapper(routes.getComments, &util.HandlerOpts{}))
}

type createPostReq struct {
	Text     string `json:"text"`
	GroupId  string `json:"groupId"`
	ImageURL string `json:"imageUrl"`
	AudioURL string `json:"audioUrl"`
}

func (pr *postRoutes) createPost(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createPostReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	text := util.SanitizeText(req.Text)
	if text == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "post text must not be empty",
		}
	}
	user := middleware.MustGetUser(c)
	if req.GroupId != "" {
		groups, err := pr.db.GetGroupsByIds(c, []string{req.GroupId}, &db.GetGroupsQueryOpts{})
		if err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		if len(groups) == 0 {
			return nil, &util.HTTPError{
				Status:  http.StatusBadRequest,
				Message: "group does not exist",
			}
		}
	}

	id, err := pr.db.CreatePost(c, &db.CreatePost{
		AuthorId: user.Id,
		GroupId:  req.GroupId,
		Campus:   user.Campus,
		Text:     text,
		ImageURL: req.ImageURL,
		AudioURL: req.AudioURL,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"id": id}, nil
}

func (pr *postRoutes) getPostById(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	post, err := pr.db.GetPostById(c, c.Param("id"), &db.PostQueryOpts{
		LikeHistoryOf: user.Id,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}
	return post, nil
}

func (pr *postRoutes) deletePost(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	post, err := pr.db.GetPostById(c, c.Param("id"), &db.PostQueryOpts{})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}
	if post.Author == nil || post.Author.Id != user.Id {
		return nil, &util.HTTPError{
			Status:  http.StatusForbidden,
			Message: "only the author can delete a post",
		}
	}
	if err := pr.db.DeletePost(c, post.Id); err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return gin.H{"deleted": true}, nil
}

func (pr *postRoutes) toggleLike(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	post, err := pr.db.GetPostById(c, c.Param("id"), &db.PostQueryOpts{})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}

	liked, likeCount, err := pr.db.ToggleLike(c, user.Id, post.Id)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if liked && post.Author != nil && post.Author.Id != user.Id {
		pr.notifyAuthor(c, post, user, model.NotificationLike)
	}
	return gin.H{"liked": liked, "likes": likeCount}, nil
}

type createCommentReq struct {
	Text string `json:"text"`
}

func (pr *postRoutes) createComment(c *gin.Context) (interface{}, *util.HTTPError) {
	var req createCommentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}
	text := util.SanitizeText(req.Text)
	if text == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "comment text must not be empty",
		}
	}
	user := middleware.MustGetUser(c)
	post, err := pr.db.GetPostById(c, c.Param("id"), &db.PostQueryOpts{})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post == nil {
		return nil, &util.NotFoundHTTPErr
	}

	id, err := pr.db.CreateComment(c, &db.CreateComment{
		PostId:   post.Id,
		AuthorId: user.Id,
		Text:     text,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	if post.Author != nil && post.Author.Id != user.Id {
		pr.notifyAuthor(c, post, user, model.NotificationComment)
	}
	return gin.H{"id": id}, nil
}

func (pr *postRoutes) getComments(c *gin.Context) (interface{}, *util.HTTPError) {
	comments, err := pr.db.GetComments(c, c.Param("id"))
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return comments, nil
}

// notifyAuthor appends a best-effort notification to the post author,
// honoring their like-notification setting.
func (pr *postRoutes) notifyAuthor(c *gin.Context, post *model.Post, actor *model.User, notificationType model.NotificationType) {
	author, err := pr.db.GetUserById(c, post.Author.Id)
	if err != nil || author == nil {
		return
	}
	if notificationType == model.NotificationLike && !author.NotifyLikes {
		return
	}
	if err := pr.db.AppendNotification(c, &model.Notification{
		Id:          uuid.NewString(),
		RecipientId: author.Id,
		Type:        notificationType,
		ActorId:     actor.Id,
		TargetId:    post.Id,
		CreatedAt:   time.Now(),
	}); err != nil {
		log.Println("an error occurred while appending a post notification", err)
	}
}
