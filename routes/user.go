package routes

import (
	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/controllers"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/services"
	"github.com/onemsu/onemsu-be/util"
	"net/http"
)

type userRoutes struct {
	db        db.Database
	directory *controllers.DirectoryController
	bucket    *services.StorageBucket
}

func AddUserRoutes(group *gin.RouterGroup, database db.Database, directory *controllers.DirectoryController, bucket *services.StorageBucket, authClient *firebaseAuth.Client, secret string) {
	routes := userRoutes{database, directory, bucket}

	authed := middleware.Auth(database, authClient, secret, &middleware.AuthConfig{})
	group.GET("/me", authed, util.HandlerWrapper(routes.getMe, &util.HandlerOpts{}))
	group.GET("/profile", authed, util.HandlerWrapper(routes.getMe, &util.HandlerOpts{}))
	group.PUT("/profile", authed, util.HandlerWrapper(routes.updateProfile, &util.HandlerOpts{}))
	group.DELETE("/followers/:id", authed, util.HandlerWrapper(routes.removeFollower, &util.HandlerOpts{}))

	maybeAuthed := middleware.Auth(database, authClient, secret,
		(&middleware.AuthConfig{}).TokenNotRequired().ProfileNotRequired())
	users := group.Group("/users", maybeAuthed)
	users.GET("", util.HandlerWrapper(routes.searchUsers, &util.HandlerOpts{}))
	users.GET("/:id", util.HandlerWrapper(routes.getUserById, &util.HandlerOpts{}))
	users.GET("/:id/followers", util.HandlerWrapper(routes.getFollowers, &util.HandlerOpts{}))
	users.GET("/:id/following", util.HandlerWrapper(routes.getFollowing, &util.HandlerOpts{}))
}

func (ur *userRoutes) getMe(c *gin.Context) (interface{}, *util.HTTPError) {
	return gin.H{"user": middleware.MustGetUser(c)}, nil
}

// updateProfileReq is the patch allow-list. Unknown keys in the body simply
// never bind, which is what keeps them out of the store.
type updateProfileReq struct {
	DisplayName *string `json:"displayName"`
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
	Location    *string `json:"location"`
	Website     *string `json:"website"`
	Campus      *string `json:"campus"`
	AvatarURL   *string `json:"avatarUrl"`
	CoverURL    *string `json:"coverUrl"`
}

func (ur *userRoutes) updateProfile(c *gin.Context) (interface{}, *util.HTTPError) {
	var req updateProfileReq
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, util.BuildJSONBindHTTPErr(err)
	}

	for _, field := range []*string{req.DisplayName, req.Username, req.Bio, req.Location, req.Website, req.Campus} {
		if field != nil {
			*field = util.SanitizeText(*field)
		}
	}
	if req.DisplayName != nil && *req.DisplayName == "" {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "displayName must not be empty",
		}
	}
	for _, blobRef := range []*string{req.AvatarURL, req.CoverURL} {
		if httpErr := ur.validateBlobRef(c, blobRef); httpErr != nil {
			return nil, httpErr
		}
	}

	user := middleware.MustGetUser(c)
	updated, err := ur.db.UpdateUser(c, user.Id, &db.ProfilePatch{
		DisplayName: req.DisplayName,
		Username:    req.Username,
		Bio:         req.Bio,
		Location:    req.Location,
		Website:     req.Website,
		Campus:      req.Campus,
		AvatarURL:   req.AvatarURL,
		CoverURL:    req.CoverURL,
	})
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	ur.directory.NotifyUserChanged(c)
	return gin.H{"user": updated}, nil
}

// validateBlobRef checks storage-bucket references when a bucket is
// configured. Absolute URLs pass through untouched.
func (ur *userRoutes) validateBlobRef(c *gin.Context, blobRef *string) *util.HTTPError {
	if ur.bucket == nil || blobRef == nil || *blobRef == "" {
		return nil
	}
	if len(*blobRef) > 8 && (*blobRef)[:8] == "https://" {
		return nil
	}
	exists, err := ur.bucket.Exists(c, *blobRef)
	if err != nil {
		return util.BuildDbHTTPErr(err)
	}
	if !exists {
		return &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "referenced blob does not exist",
		}
	}
	*blobRef = ur.bucket.PublicURL(*blobRef)
	return nil
}

func (ur *userRoutes) searchUsers(c *gin.Context) (interface{}, *util.HTTPError) {
	matches, httpErr := ur.directory.Search(c.Query("q"), 50)
	if httpErr != nil {
		return nil, httpErr
	}
	public := []*model.PublicUser{} // DON'T return nil slice
	for _, user := range matches {
		public = append(public, user.AsPublic())
	}
	return public, nil
}

func (ur *userRoutes) getUserById(c *gin.Context) (interface{}, *util.HTTPError) {
	user, httpErr := ur.directory.Lookup(c, c.Param("id"))
	if httpErr != nil {
		return nil, httpErr
	}
	if user == nil {
		return nil, &util.NotFoundHTTPErr
	}
	return user.AsPublic(), nil
}

func (ur *userRoutes) getFollowers(c *gin.Context) (interface{}, *util.HTTPError) {
	followers, err := ur.db.GetFollowers(c, c.Param("id"))
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return followers, nil
}

func (ur *userRoutes) getFollowing(c *gin.Context) (interface{}, *util.HTTPError) {
	following, err := ur.db.GetFollowing(c, c.Param("id"))
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	return following, nil
}

// removeFollower is the reverse unfollow: the caller forces the given user to
// stop following them.
func (ur *userRoutes) removeFollower(c *gin.Context) (interface{}, *util.HTTPError) {
	user := middleware.MustGetUser(c)
	followerId := c.Param("id")
	if followerId == user.Id {
		return nil, &util.HTTPError{
			Status:  http.StatusBadRequest,
			Message: "cannot remove yourself",
		}
	}
	followingIds, err := ur.db.GetFollowingIds(c, followerId)
	if err != nil {
		return nil, util.BuildDbHTTPErr(err)
	}
	for _, id := range followingIds {
		if id != user.Id {
			continue
		}
		if _, err := ur.db.ToggleFollow(c, followerId, user.Id); err != nil {
			return nil, util.BuildDbHTTPErr(err)
		}
		break
	}
	return gin.H{"removed": true}, nil
}
