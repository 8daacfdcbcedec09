package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestProfilePatchHonorsAllowList(t *testing.T) {
	env := newTestEnv(t)
	token, userId := env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPut, "/api/profile", gin.H{
		"bio":       "hello world",
		"location":  "Dorm 4",
		"email":     "evil@example.com",
		"followers": 9999,
		"id":        "someone-else",
	}, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("profile patch: status %v body %v", recorder.Code, recorder.Body.String())
	}

	me := env.do(t, http.MethodGet, "/api/me", nil, token)
	body := decodeBody(t, me)
	data := body["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	if user["bio"] != "hello world" || user["location"] != "Dorm 4" {
		t.Fatalf("patched fields missing: %v", me.Body.String())
	}
	if user["email"] != "alice@example.com" {
		t.Fatalf("email was patched through: %v", user["email"])
	}
	if user["id"] != userId {
		t.Fatalf("id was patched through: %v", user["id"])
	}
	if user["followers"] != float64(0) {
		t.Fatalf("follower counter was patched through: %v", user["followers"])
	}
}

func TestProfilePatchSanitizesMarkup(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPut, "/api/profile", gin.H{
		"bio": "hi <script>alert(1)</script>there",
	}, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("profile patch: status %v", recorder.Code)
	}
	me := env.do(t, http.MethodGet, "/api/me", nil, token)
	user := decodeBody(t, me)["data"].(map[string]interface{})["user"].(map[string]interface{})
	if bio := user["bio"].(string); bio != "hi there" {
		t.Fatalf("bio not sanitized: %q", bio)
	}
}

func TestFollowToggleRoute(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice@example.com", "hunter22", "Alice")
	_, bobId := env.register(t, "bob@example.com", "hunter22", "Bob")

	follow := env.do(t, http.MethodPost, "/api/follows", gin.H{"targetId": bobId}, aliceToken)
	if follow.Code != http.StatusOK {
		t.Fatalf("follow: status %v body %v", follow.Code, follow.Body.String())
	}
	data := decodeBody(t, follow)["data"].(map[string]interface{})
	if data["following"] != true || data["followers"] != float64(1) {
		t.Fatalf("unexpected follow result: %v", follow.Body.String())
	}

	unfollow := env.do(t, http.MethodPost, "/api/follows", gin.H{"targetId": bobId}, aliceToken)
	data = decodeBody(t, unfollow)["data"].(map[string]interface{})
	if data["following"] != false || data["followers"] != float64(0) {
		t.Fatalf("unexpected unfollow result: %v", unfollow.Body.String())
	}
}

func TestSelfFollowRejected(t *testing.T) {
	env := newTestEnv(t)
	token, userId := env.register(t, "alice@example.com", "hunter22", "Alice")

	recorder := env.do(t, http.MethodPost, "/api/follows", gin.H{"targetId": userId}, token)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("self follow: status %v, want 400", recorder.Code)
	}
}

func TestUserSearchFindsRegisteredUsers(t *testing.T) {
	env := newTestEnv(t)
	env.register(t, "alice@example.com", "hunter22", "Alice Anderson")
	token, _ := env.register(t, "bob@example.com", "hunter22", "Bob")

	recorder := env.do(t, http.MethodGet, "/api/users?q=anderson", nil, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("search: status %v", recorder.Code)
	}
	results := decodeBody(t, recorder)["data"].([]interface{})
	if len(results) != 1 {
		t.Fatalf("got %v results, want 1: %v", len(results), recorder.Body.String())
	}
	match := results[0].(map[string]interface{})
	if match["displayName"] != "Alice Anderson" {
		t.Fatalf("wrong match: %v", match["displayName"])
	}
}

func TestPublicProfileOmitsNotificationSettings(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, aliceId := env.register(t, "alice@example.com", "hunter22", "Alice")
	token, _ := env.register(t, "bob@example.com", "hunter22", "Bob")

	recorder := env.do(t, http.MethodGet, "/api/users/"+aliceId, nil, token)
	if recorder.Code != http.StatusOK {
		t.Fatalf("lookup: status %v", recorder.Code)
	}
	profile := decodeBody(t, recorder)["data"].(map[string]interface{})
	for _, key := range []string{"notifyFollows", "notifyLikes"} {
		if _, present := profile[key]; present {
			t.Fatalf("%v leaked on a public profile: %v", key, recorder.Body.String())
		}
	}
	if profile["id"] != aliceId || profile["displayName"] != "Alice" {
		t.Fatalf("public profile incomplete: %v", recorder.Body.String())
	}

	search := env.do(t, http.MethodGet, "/api/users?q=alice", nil, token)
	result := decodeBody(t, search)["data"].([]interface{})[0].(map[string]interface{})
	if _, present := result["notifyFollows"]; present {
		t.Fatalf("notifyFollows leaked in search results: %v", search.Body.String())
	}

	// The owner's own view keeps the settings.
	me := env.do(t, http.MethodGet, "/api/me", nil, aliceToken)
	self := decodeBody(t, me)["data"].(map[string]interface{})["user"].(map[string]interface{})
	if _, present := self["notifyFollows"]; !present {
		t.Fatalf("notifyFollows missing from own profile: %v", me.Body.String())
	}
}
