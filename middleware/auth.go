package middleware

import (
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/token"
)

const (
	CLAIMS_KEY  = "authClaims"
	USER_ID_KEY = "userId"
	USER_KEY    = "user"
)

type AuthConfig struct {
	tokenNotRequired   bool
	profileNotRequired bool
}

func (ac *AuthConfig) TokenNotRequired() *AuthConfig {
	ac.tokenNotRequired = true
	return ac
}

func (ac *AuthConfig) ProfileNotRequired() *AuthConfig {
	ac.profileNotRequired = true
	return ac
}

// Auth resolves the bearer token to a user id. Tokens minted by this server
// carry a session id and are only honored while that session row still exists,
// so logging in elsewhere invalidates them immediately. When a firebase auth
// client is configured, firebase ID tokens are accepted as well.
func Auth(database db.Database, authClient *auth.Client, secret string, config *AuthConfig) gin.HandlerFunc {
	if config == nil {
		config = &AuthConfig{}
	}
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || len(header) < 8 {
			if config.tokenNotRequired {
				return
			}
			abortUnauthorized(c, "no bearer token")
			return
		}
		raw := header[7:]

		userId, ok := resolveLocalToken(c, database, secret, raw)
		if !ok && authClient != nil {
			firebaseToken, err := authClient.VerifyIDToken(c, raw)
			if err == nil {
				userId = firebaseToken.UID
				ok = true
			}
		}
		if !ok {
			if c.IsAborted() {
				return
			}
			if config.tokenNotRequired {
				return
			}
			abortUnauthorized(c, "invalid token")
			return
		}
		c.Set(USER_ID_KEY, userId)

		user, err := database.GetUserById(c, userId)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "an error occurred while fetching the user",
			})
			c.Abort()
			return
		}
		if user == nil {
			if config.profileNotRequired {
				return
			}
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"message": "must have a user profile",
			})
			c.Abort()
			return
		}
		c.Set(USER_KEY, user)
	}
}

// resolveLocalToken verifies a token signed by this server. It aborts the
// request itself when the token parses but its session has been superseded.
func resolveLocalToken(c *gin.Context, database db.Database, secret, raw string) (string, bool) {
	claims, err := token.Verify(raw, secret)
	if err != nil {
		return "", false
	}
	session, err := database.GetSession(c, claims.Sid)
	if err != nil || session == nil || session.UserId != claims.Sub {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"message": "session superseded",
		})
		c.Abort()
		return "", false
	}
	c.Set(CLAIMS_KEY, claims)
	return claims.Sub, true
}

func abortUnauthorized(c *gin.Context, message string) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
	c.Abort()
}

// GetClaims returns the local token claims, or nil for firebase-authenticated
// requests.
func GetClaims(c *gin.Context) *token.Claims {
	claims, ok := c.Get(CLAIMS_KEY)
	if !ok {
		return nil
	}
	return claims.(*token.Claims)
}

// GetUserIdMaybe returns the authenticated user id, or "" when the route was
// mounted with TokenNotRequired and no valid token was sent.
func GetUserIdMaybe(c *gin.Context) string {
	userId, ok := c.Get(USER_ID_KEY)
	if !ok {
		return ""
	}
	return userId.(string)
}

func MustGetUser(c *gin.Context) *model.User {
	user, _ := c.Get(USER_KEY)
	return user.(*model.User)
}

func GetUserMaybe(c *gin.Context) *model.User {
	user, ok := c.Get(USER_KEY)
	if !ok {
		return nil
	}
	return user.(*model.User)
}
