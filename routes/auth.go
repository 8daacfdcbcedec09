package routes

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"strings"
	"time"

	firebaseAuth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/onemsu/onemsu-be/config"
	"github.com/onemsu/onemsu-be/controllers"
	"github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/middleware"
	"github.com/onemsu/onemsu-be/model"
	"github.com/onemsu/onemsu-be/services"
	"github.com/onemsu/onemsu-be/token"
	"github.com/onemsu/onemsu-be/util"
)

const (
	otpMetaCookie     = "otp_meta"
	otpVerifiedCookie = "otp_verified"
	otpMetaTTL        = 300
	otpVerifiedTTL    = 3600
)

// Auth endpoints speak the flat {token,user} / {error} shapes the web client
// predates the response envelope with; everything else on the API uses the
// wrapped form.
type authRoutes struct {
	db         db.Database
	authClient *firebaseAuth.Client
	mailer     *services.Mailer
	directory  *controllers.DirectoryController
	cfg        *config.Config
}

func AddAuthRoutes(group *gin.RouterGroup, database db.Database, authClient *firebaseAuth.Client, mailer *services.Mailer, directory *controllers.DirectoryController, cfg *config.Config) {
	routes := authRoutes{database, authClient, mailer, directory, cfg}
	auth := group.Group("/auth")
	auth.POST("/register", routes.register)
	auth.POST("/login", routes.login)
	auth.POST("/logout",
		middleware.Auth(database, authClient, cfg.JWTSecret, (&middleware.AuthConfig{}).ProfileNotRequired()),
		routes.logout)
	auth.POST("/send-otp", routes.sendOTP)
	auth.POST("/verify-otp", routes.verifyOTP)
}

type registerReq struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

func (ar *authRoutes) register(c *gin.Context) {
	var req registerReq
	if err := c.BindJSON(&req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}
	if ar.cfg.JWTSecret == "" {
		log.Println("refusing to register: no token secret configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
		return
	}

	user, err := ar.buildAccount(c, &req)
	if err == db.ErrDuplicateEmail {
		c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
		return
	}
	if err != nil {
		log.Println("an error occurred while registering", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	ar.directory.NotifyUserChanged(c)

	signed, err := ar.issueSession(c, user)
	if err != nil {
		log.Println("an error occurred while issuing a session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed, "user": user})
}

// buildAccount creates the identity and its profile document. With firebase
// configured the identity lives there and the profile id is the firebase UID;
// otherwise credentials are scrypt hashes on the profile itself.
func (ar *authRoutes) buildAccount(c *gin.Context, req *registerReq) (*model.User, error) {
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = util.UsernameFromEmail(req.Email)
	}
	user := &model.User{
		Email:         req.Email,
		DisplayName:   displayName,
		Username:      util.UsernameFromEmail(req.Email),
		Bio:           "Welcome to my profile!",
		Location:      "Unknown",
		NotifyFollows: true,
		NotifyLikes:   true,
		CreatedAt:     time.Now(),
	}

	if ar.authClient != nil {
		params := (&firebaseAuth.UserToCreate{}).
			Email(req.Email).
			Password(req.Password).
			DisplayName(displayName)
		record, err := ar.authClient.CreateUser(c, params)
		if err != nil {
			if firebaseAuth.IsEmailAlreadyExists(err) {
				return nil, db.ErrDuplicateEmail
			}
			return nil, err
		}
		user.Id = record.UID
	} else {
		hash, err := util.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}
		user.Id = uuid.NewString()
		user.PasswordHash = hash
	}
	user.AvatarURL = util.Avatar(user.Id)

	if err := ar.db.CreateUser(c, user); err != nil {
		return nil, err
	}
	return user, nil
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (ar *authRoutes) login(c *gin.Context) {
	var req loginReq
	if err := c.BindJSON(&req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	user, err := ar.db.GetUserByEmail(c, req.Email)
	if err != nil {
		log.Println("an error occurred while looking up the account", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if ar.authClient != nil || user.PasswordHash == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "alternate_provider"})
		return
	}
	if !util.VerifyPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
		return
	}
	if ar.cfg.JWTSecret == "" {
		log.Println("refusing to log in: no token secret configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server misconfigured"})
		return
	}

	signed, err := ar.issueSession(c, user)
	if err != nil {
		log.Println("an error occurred while issuing a session", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": signed, "user": user})
}

// issueSession persists a fresh session (superseding any other session the
// user holds) and signs a token bound to it.
func (ar *authRoutes) issueSession(c *gin.Context, user *model.User) (string, error) {
	session := &model.Session{
		Id:        uuid.NewString(),
		UserId:    user.Id,
		CreatedAt: time.Now(),
	}
	if err := ar.db.CreateSession(c, session); err != nil {
		return "", err
	}
	return token.Sign(&token.Claims{
		Sub:   user.Id,
		Email: user.Email,
		Sid:   session.Id,
	}, ar.cfg.JWTSecret, token.DefaultTTL)
}

func (ar *authRoutes) logout(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims != nil {
		if err := ar.db.DeleteSession(c, claims.Sid); err != nil {
			log.Println("an error occurred while deleting the session", err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type sendOTPReq struct {
	Email string `json:"email"`
}

type otpMeta struct {
	Email string `json:"email"`
	Hash  string `json:"hash"`
	Exp   int64  `json:"exp"`
}

func (ar *authRoutes) sendOTP(c *gin.Context) {
	var req sendOTPReq
	if err := c.BindJSON(&req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a valid email is required"})
		return
	}

	code, err := generateOTPCode()
	if err != nil {
		log.Println("an error occurred while generating a code", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		return
	}
	meta := otpMeta{
		Email: req.Email,
		Hash:  otpHash(req.Email, code, ar.cfg.OTPSalt),
		Exp:   time.Now().Unix() + otpMetaTTL,
	}
	encoded, err := encodeOTPMeta(&meta)
	if err != nil {
		log.Println("an error occurred while encoding the code", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		return
	}
	c.SetCookie(otpMetaCookie, encoded, otpMetaTTL, "/", "", false, true)

	if err := ar.mailer.Send(req.Email, "Your ONEMSU verification code",
		fmt.Sprintf("Your verification code is %v. It expires in 5 minutes.", code)); err != nil {
		log.Println("an error occurred while mailing the code", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send code"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

type verifyOTPReq struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (ar *authRoutes) verifyOTP(c *gin.Context) {
	var req verifyOTPReq
	if err := c.BindJSON(&req); err != nil {
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and code are required"})
		return
	}

	raw, err := c.Cookie(otpMetaCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no pending verification"})
		return
	}
	meta, err := decodeOTPMeta(raw)
	if err != nil || meta.Email != req.Email {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "no pending verification"})
		return
	}
	if time.Now().Unix() > meta.Exp {
		c.SetCookie(otpMetaCookie, "", -1, "/", "", false, true)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "code expired", "expired": true})
		return
	}
	if subtle.ConstantTimeCompare(
		[]byte(otpHash(req.Email, req.Code, ar.cfg.OTPSalt)),
		[]byte(meta.Hash)) != 1 {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid code"})
		return
	}

	c.SetCookie(otpMetaCookie, "", -1, "/", "", false, true)
	c.SetCookie(otpVerifiedCookie, "1", otpVerifiedTTL, "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func generateOTPCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func otpHash(email, code, salt string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%v:%v:%v", email, code, salt)))
	return hex.EncodeToString(sum[:])
}

func encodeOTPMeta(meta *otpMeta) (string, error) {
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func decodeOTPMeta(encoded string) (*otpMeta, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var meta otpMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}
