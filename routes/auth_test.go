package routes

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"email":    "ALICE@example.com",
		"password": "different",
	}, "")
	if recorder.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %v body %v", recorder.Code, recorder.Body.String())
	}
	if _, hasToken := decodeBody(t, recorder)["token"]; hasToken {
		t.Fatal("conflict response leaked a token")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "wrong",
	}, "")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %v body %v", recorder.Code, recorder.Body.String())
	}
	body := decodeBody(t, recorder)
	if body["error"] != "invalid_credentials" {
		t.Fatalf("error kind = %v", body["error"])
	}
	if _, hasToken := body["token"]; hasToken {
		t.Fatal("unauthorized response leaked a token")
	}
}

func TestLoginUnknownAccount(t *testing.T) {
	env := newTestEnv(t)
	recorder := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "ghost@example.com",
		"password": "whatever",
	}, "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("unknown account: status %v", recorder.Code)
	}
}

func TestLoginIssuesWorkingToken(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("login: status %v body %v", recorder.Code, recorder.Body.String())
	}
	token, _ := decodeBody(t, recorder)["token"].(string)

	me := env.do(t, http.MethodGet, "/api/me", nil, token)
	if me.Code != http.StatusOK {
		t.Fatalf("/api/me with fresh token: status %v", me.Code)
	}
}

func TestSessionSupersededTokenRejected(t *testing.T) {
	env := newTestEnv(t)
	firstToken, _ := env.register(t, "alice@example.com", "hunter22", "Alice")

	if recorder := env.do(t, http.MethodGet, "/api/me", nil, firstToken); recorder.Code != http.StatusOK {
		t.Fatalf("/api/me with first token: status %v", recorder.Code)
	}

	login := env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    "alice@example.com",
		"password": "hunter22",
	}, "")
	if login.Code != http.StatusOK {
		t.Fatalf("second login: status %v", login.Code)
	}
	secondToken, _ := decodeBody(t, login)["token"].(string)

	if recorder := env.do(t, http.MethodGet, "/api/me", nil, firstToken); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("/api/me with superseded token: status %v, want 401", recorder.Code)
	}
	if recorder := env.do(t, http.MethodGet, "/api/me", nil, secondToken); recorder.Code != http.StatusOK {
		t.Fatalf("/api/me with live token: status %v", recorder.Code)
	}
}

func TestLogoutInvalidatesToken(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice@example.com", "hunter22", "Alice")

	if recorder := env.do(t, http.MethodPost, "/api/auth/logout", nil, token); recorder.Code != http.StatusOK {
		t.Fatalf("logout: status %v", recorder.Code)
	}
	if recorder := env.do(t, http.MethodGet, "/api/me", nil, token); recorder.Code != http.StatusUnauthorized {
		t.Fatalf("/api/me after logout: status %v, want 401", recorder.Code)
	}
}

func TestSendOTPSetsMetaCookie(t *testing.T) {
	env := newTestEnv(t)
	recorder := env.do(t, http.MethodPost, "/api/auth/send-otp", gin.H{
		"email": "alice@example.com",
	}, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("send-otp: status %v body %v", recorder.Code, recorder.Body.String())
	}
	if findCookie(recorder.Result().Cookies(), otpMetaCookie) == nil {
		t.Fatal("send-otp did not set the meta cookie")
	}
}

func TestVerifyOTPSucceedsExactlyOnce(t *testing.T) {
	env := newTestEnv(t)
	metaCookie := buildOTPMetaCookie(t, env, "alice@example.com", "123456", time.Now().Add(5*time.Minute))

	first := env.do(t, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"code":  "123456",
	}, "", metaCookie)
	if first.Code != http.StatusOK {
		t.Fatalf("first verify: status %v body %v", first.Code, first.Body.String())
	}
	if findCookie(first.Result().Cookies(), otpVerifiedCookie) == nil {
		t.Fatal("verified cookie not set")
	}
	cleared := findCookie(first.Result().Cookies(), otpMetaCookie)
	if cleared == nil || cleared.MaxAge >= 0 {
		t.Fatal("meta cookie was not cleared on success")
	}

	// A compliant client no longer holds the meta cookie, so a replay fails.
	second := env.do(t, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"code":  "123456",
	}, "")
	if second.Code != http.StatusUnauthorized {
		t.Fatalf("replayed verify: status %v, want 401", second.Code)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	env := newTestEnv(t)
	metaCookie := buildOTPMetaCookie(t, env, "alice@example.com", "123456", time.Now().Add(5*time.Minute))

	recorder := env.do(t, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"code":  "654321",
	}, "", metaCookie)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("wrong code: status %v", recorder.Code)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	env := newTestEnv(t)
	metaCookie := buildOTPMetaCookie(t, env, "alice@example.com", "123456", time.Now().Add(-time.Minute))

	recorder := env.do(t, http.MethodPost, "/api/auth/verify-otp", gin.H{
		"email": "alice@example.com",
		"code":  "123456",
	}, "", metaCookie)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expired code: status %v", recorder.Code)
	}
	body := decodeBody(t, recorder)
	if body["expired"] != true {
		t.Fatalf("expired flag missing: %v", recorder.Body.String())
	}
}

func buildOTPMetaCookie(t *testing.T, env *testEnv, email, code string, expiry time.Time) *http.Cookie {
	t.Helper()
	encoded, err := encodeOTPMeta(&otpMeta{
		Email: email,
		Hash:  otpHash(email, code, env.cfg.OTPSalt),
		Exp:   expiry.Unix(),
	})
	if err != nil {
		t.Fatalf("encodeOTPMeta: %v", err)
	}
	return &http.Cookie{Name: otpMetaCookie, Value: encoded}
}

func findCookie(cookies []*http.Cookie, name string) *http.Cookie {
	for _, cookie := range cookies {
		if strings.EqualFold(cookie.Name, name) {
			return cookie
		}
	}
	return nil
}
