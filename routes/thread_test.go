package routes

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestThreadFindOrCreateOverHTTP(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice@example.com", "hunter22", "Alice")
	bobToken, bobId := env.register(t, "bob@example.com", "hunter22", "Bob")

	first := env.do(t, http.MethodPost, "/api/threads", gin.H{
		"recipientId": bobId,
		"text":        "hey bob",
	}, aliceToken)
	if first.Code != http.StatusOK {
		t.Fatalf("start thread: status %v body %v", first.Code, first.Body.String())
	}
	threadId := decodeBody(t, first)["data"].(map[string]interface{})["threadId"].(string)

	// Bob replying starts no second thread.
	me := env.do(t, http.MethodGet, "/api/me", nil, aliceToken)
	aliceUser := decodeBody(t, me)["data"].(map[string]interface{})["user"].(map[string]interface{})
	reply := env.do(t, http.MethodPost, "/api/threads", gin.H{
		"recipientId": aliceUser["id"],
		"text":        "hey alice",
	}, bobToken)
	if reply.Code != http.StatusOK {
		t.Fatalf("reply thread: status %v", reply.Code)
	}
	if got := decodeBody(t, reply)["data"].(map[string]interface{})["threadId"].(string); got != threadId {
		t.Fatalf("reply created a new thread: %v vs %v", got, threadId)
	}

	threads := env.do(t, http.MethodGet, "/api/threads", nil, aliceToken)
	list := decodeBody(t, threads)["data"].([]interface{})
	if len(list) != 1 {
		t.Fatalf("alice has %v threads, want 1", len(list))
	}
	thread := list[0].(map[string]interface{})
	if thread["lastMessage"] != "hey alice" {
		t.Fatalf("lastMessage = %v", thread["lastMessage"])
	}
}

func TestThreadMessagesParticipantOnly(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice@example.com", "hunter22", "Alice")
	_, bobId := env.register(t, "bob@example.com", "hunter22", "Bob")
	carolToken, _ := env.register(t, "carol@example.com", "hunter22", "Carol")

	started := env.do(t, http.MethodPost, "/api/threads", gin.H{
		"recipientId": bobId,
		"text":        "private",
	}, aliceToken)
	threadId := decodeBody(t, started)["data"].(map[string]interface{})["threadId"].(string)

	if recorder := env.do(t, http.MethodGet, "/api/threads/"+threadId+"/messages", nil, carolToken); recorder.Code != http.StatusForbidden {
		t.Fatalf("outsider read: status %v, want 403", recorder.Code)
	}
	recorder := env.do(t, http.MethodGet, "/api/threads/"+threadId+"/messages", nil, aliceToken)
	if recorder.Code != http.StatusOK {
		t.Fatalf("participant read: status %v", recorder.Code)
	}
	messages := decodeBody(t, recorder)["data"].([]interface{})
	if len(messages) != 1 || messages[0].(map[string]interface{})["text"] != "private" {
		t.Fatalf("unexpected messages: %v", recorder.Body.String())
	}
}

func TestMessageSeenAndUnsend(t *testing.T) {
	env := newTestEnv(t)
	aliceToken, _ := env.register(t, "alice@example.com", "hunter22", "Alice")
	bobToken, bobId := env.register(t, "bob@example.com", "hunter22", "Bob")

	started := env.do(t, http.MethodPost, "/api/threads", gin.H{
		"recipientId": bobId,
		"text":        "take this back",
	}, aliceToken)
	data := decodeBody(t, started)["data"].(map[string]interface{})
	threadId := data["threadId"].(string)
	messageId := data["messageId"].(string)

	if recorder := env.do(t, http.MethodPost, "/api/threads/"+threadId+"/messages/"+messageId+"/seen", nil, bobToken); recorder.Code != http.StatusOK {
		t.Fatalf("mark seen: status %v", recorder.Code)
	}
	if recorder := env.do(t, http.MethodPost, "/api/threads/"+threadId+"/messages/"+messageId+"/unsend", nil, aliceToken); recorder.Code != http.StatusOK {
		t.Fatalf("unsend: status %v", recorder.Code)
	}

	recorder := env.do(t, http.MethodGet, "/api/threads/"+threadId+"/messages", nil, bobToken)
	message := decodeBody(t, recorder)["data"].([]interface{})[0].(map[string]interface{})
	if message["unsent"] != true || message["text"] != "" {
		t.Fatalf("message not unsent: %v", recorder.Body.String())
	}
	seenBy, _ := message["seenBy"].([]interface{})
	found := false
	for _, id := range seenBy {
		if id == bobId {
			found = true
		}
	}
	if !found {
		t.Fatalf("bob missing from seenBy: %v", message["seenBy"])
	}
}
