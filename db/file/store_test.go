package file

import (
	"context"
	"fmt"
	"testing"
	"time"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func newTestDB(t *testing.T) appDb.Database {
	t.Helper()
	db, err := GetDatabase(t.TempDir())
	if err != nil {
		t.Fatalf("GetDatabase: %v", err)
	}
	return db
}

func addUser(t *testing.T, db appDb.Database, id string) *model.User {
	t.Helper()
	user := &model.User{
		Id:          id,
		Email:       id + "@example.com",
		DisplayName: id,
		Username:    id,
		CreatedAt:   time.Now(),
	}
	if err := db.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser(%v): %v", id, err)
	}
	return user
}

func mustGetUser(t *testing.T, db appDb.Database, id string) *model.User {
	t.Helper()
	user, err := db.GetUserById(context.Background(), id)
	if err != nil {
		t.Fatalf("GetUserById(%v): %v", id, err)
	}
	if user == nil {
		t.Fatalf("GetUserById(%v): user missing", id)
	}
	return user
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	addUser(t, db, "alice")

	err := db.CreateUser(context.Background(), &model.User{
		Id:    "alice2",
		Email: "Alice@Example.com",
	})
	if err != appDb.ErrDuplicateEmail {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestToggleFollowTwiceRestoresCounters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")
	addUser(t, db, "bob")

	result, err := db.ToggleFollow(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}
	if !result.Following || result.FollowerCount != 1 || result.FollowingCount != 1 {
		t.Fatalf("unexpected result after follow: %+v", result)
	}
	if got := mustGetUser(t, db, "bob").FollowerCount; got != 1 {
		t.Fatalf("bob follower count = %v, want 1", got)
	}

	result, err = db.ToggleFollow(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("ToggleFollow (second): %v", err)
	}
	if result.Following {
		t.Fatal("still following after second toggle")
	}
	if got := mustGetUser(t, db, "bob").FollowerCount; got != 0 {
		t.Fatalf("bob follower count = %v, want 0", got)
	}
	if got := mustGetUser(t, db, "alice").FollowingCount; got != 0 {
		t.Fatalf("alice following count = %v, want 0", got)
	}
}

func TestToggleBlockSeversFollows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")
	addUser(t, db, "bob")

	if _, err := db.ToggleFollow(ctx, "alice", "bob"); err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}
	if _, err := db.ToggleFollow(ctx, "bob", "alice"); err != nil {
		t.Fatalf("ToggleFollow: %v", err)
	}

	blocked, err := db.ToggleBlock(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("ToggleBlock: %v", err)
	}
	if !blocked {
		t.Fatal("expected blocked=true")
	}

	for _, id := range []string{"alice", "bob"} {
		user := mustGetUser(t, db, id)
		if user.FollowerCount != 0 || user.FollowingCount != 0 {
			t.Fatalf("%v counters not reset: followers=%v following=%v",
				id, user.FollowerCount, user.FollowingCount)
		}
	}
	followingIds, err := db.GetFollowingIds(ctx, "bob")
	if err != nil {
		t.Fatalf("GetFollowingIds: %v", err)
	}
	if len(followingIds) != 0 {
		t.Fatalf("bob still follows %v after being blocked", followingIds)
	}
}

func TestToggleLikeRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	postId, err := db.CreatePost(ctx, &appDb.CreatePost{AuthorId: "alice", Text: "hello"})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}

	liked, count, err := db.ToggleLike(ctx, "alice", postId)
	if err != nil {
		t.Fatalf("ToggleLike: %v", err)
	}
	if !liked || count != 1 {
		t.Fatalf("after like: liked=%v count=%v", liked, count)
	}

	post, err := db.GetPostById(ctx, postId, &appDb.PostQueryOpts{LikeHistoryOf: "alice"})
	if err != nil {
		t.Fatalf("GetPostById: %v", err)
	}
	if !post.ViewerHasLiked {
		t.Fatal("ViewerHasLiked not set for liker")
	}

	liked, count, err = db.ToggleLike(ctx, "alice", postId)
	if err != nil {
		t.Fatalf("ToggleLike (second): %v", err)
	}
	if liked || count != 0 {
		t.Fatalf("after unlike: liked=%v count=%v", liked, count)
	}
}

func TestGetPostsKeysetPagination(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	for i := 0; i < 5; i++ {
		if _, err := db.CreatePost(ctx, &appDb.CreatePost{
			AuthorId: "alice",
			Text:     fmt.Sprintf("post %v", i),
		}); err != nil {
			t.Fatalf("CreatePost: %v", err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	seen := map[string]bool{}
	var from *time.Time
	lastId := ""
	pages := 0
	for {
		posts, err := db.GetPosts(ctx, &appDb.PostsListQuery{
			From:          from,
			LastId:        lastId,
			PostQueryOpts: &appDb.PostQueryOpts{},
			Limit:         2,
		})
		if err != nil {
			t.Fatalf("GetPosts: %v", err)
		}
		if len(posts) == 0 {
			break
		}
		for i := 1; i < len(posts); i++ {
			if posts[i].CreatedAt.After(posts[i-1].CreatedAt) {
				t.Fatal("page not in reverse chronological order")
			}
		}
		for _, post := range posts {
			if seen[post.Id] {
				t.Fatalf("post %v returned twice across pages", post.Id)
			}
			seen[post.Id] = true
		}
		last := posts[len(posts)-1]
		lastDate := last.CreatedAt
		from, lastId = &lastDate, last.Id
		if pages++; pages > 10 {
			t.Fatal("pagination did not terminate")
		}
	}
	if len(seen) != 5 {
		t.Fatalf("paged over %v posts, want 5", len(seen))
	}
}

func TestFindOrCreateThreadPairing(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")
	addUser(t, db, "bob")

	thread, created, err := db.FindOrCreateThread(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("FindOrCreateThread: %v", err)
	}
	if !created {
		t.Fatal("expected a new thread")
	}

	// Reversed participant order must resolve to the same thread.
	sameThread, created, err := db.FindOrCreateThread(ctx, "bob", "alice")
	if err != nil {
		t.Fatalf("FindOrCreateThread (reversed): %v", err)
	}
	if created {
		t.Fatal("reversed lookup created a second thread")
	}
	if sameThread.Id != thread.Id {
		t.Fatalf("thread ids differ: %v vs %v", sameThread.Id, thread.Id)
	}
	if !sameThread.HasParticipant("alice") || !sameThread.HasParticipant("bob") {
		t.Fatalf("participants wrong: %v", sameThread.ParticipantIds)
	}
}

func TestUnsendMessageOnlyForSender(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")
	addUser(t, db, "bob")

	thread, _, err := db.FindOrCreateThread(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("FindOrCreateThread: %v", err)
	}
	messageId, err := db.CreateMessage(ctx, &appDb.CreateMessage{
		ThreadId: thread.Id,
		SenderId: "alice",
		Text:     "secret",
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	// A non-sender unsend is a silent no-op.
	if err := db.UnsendMessage(ctx, thread.Id, messageId, "bob"); err != nil {
		t.Fatalf("UnsendMessage as non-sender: %v", err)
	}
	messages, err := db.GetMessages(ctx, thread.Id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if messages[0].Unsent || messages[0].Text != "secret" {
		t.Fatal("non-sender was able to unsend")
	}

	if err := db.UnsendMessage(ctx, thread.Id, messageId, "alice"); err != nil {
		t.Fatalf("UnsendMessage: %v", err)
	}
	messages, err = db.GetMessages(ctx, thread.Id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if !messages[0].Unsent || messages[0].Text != "" {
		t.Fatalf("message not unsent: %+v", messages[0])
	}
}

func TestMarkMessageSeenScopedToThread(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")
	addUser(t, db, "bob")
	addUser(t, db, "carol")

	abThread, _, err := db.FindOrCreateThread(ctx, "alice", "bob")
	if err != nil {
		t.Fatalf("FindOrCreateThread: %v", err)
	}
	acThread, _, err := db.FindOrCreateThread(ctx, "alice", "carol")
	if err != nil {
		t.Fatalf("FindOrCreateThread: %v", err)
	}
	messageId, err := db.CreateMessage(ctx, &appDb.CreateMessage{
		ThreadId: abThread.Id,
		SenderId: "alice",
		Text:     "for bob only",
	})
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}

	// Marking through the wrong thread must not touch the message.
	if err := db.MarkMessageSeen(ctx, acThread.Id, messageId, "carol"); err != nil {
		t.Fatalf("MarkMessageSeen via wrong thread: %v", err)
	}
	messages, err := db.GetMessages(ctx, abThread.Id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages[0].SeenBy) != 0 {
		t.Fatalf("seenBy polluted through another thread: %v", messages[0].SeenBy)
	}

	if err := db.MarkMessageSeen(ctx, abThread.Id, messageId, "bob"); err != nil {
		t.Fatalf("MarkMessageSeen: %v", err)
	}
	messages, err = db.GetMessages(ctx, abThread.Id)
	if err != nil {
		t.Fatalf("GetMessages: %v", err)
	}
	if len(messages[0].SeenBy) != 1 || messages[0].SeenBy[0] != "bob" {
		t.Fatalf("seenBy = %v, want [bob]", messages[0].SeenBy)
	}
}

func TestNotificationCap(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	total := model.MaxNotificationsPerUser + 10
	for i := 0; i < total; i++ {
		if err := db.AppendNotification(ctx, &model.Notification{
			Id:          fmt.Sprintf("n-%04d", i),
			RecipientId: "alice",
			Type:        model.NotificationLike,
			ActorId:     "bob",
			CreatedAt:   time.Now().Add(time.Duration(i) * time.Millisecond),
		}); err != nil {
			t.Fatalf("AppendNotification: %v", err)
		}
	}

	notifications, err := db.GetNotificationsForUser(ctx, "alice")
	if err != nil {
		t.Fatalf("GetNotificationsForUser: %v", err)
	}
	if len(notifications) != model.MaxNotificationsPerUser {
		t.Fatalf("got %v notifications, want %v", len(notifications), model.MaxNotificationsPerUser)
	}
	// Newest first, and the oldest entries are the ones dropped.
	if notifications[0].Id != fmt.Sprintf("n-%04d", total-1) {
		t.Fatalf("newest notification is %v", notifications[0].Id)
	}
	for _, n := range notifications {
		if n.Id < fmt.Sprintf("n-%04d", total-model.MaxNotificationsPerUser) {
			t.Fatalf("old notification %v survived the cap", n.Id)
		}
	}
}

func TestUpdateUserAllowList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	bio := "new bio"
	updated, err := db.UpdateUser(ctx, "alice", &appDb.ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	if updated.Bio != "new bio" {
		t.Fatalf("bio = %q, want %q", updated.Bio, "new bio")
	}
	if updated.DisplayName != "alice" {
		t.Fatalf("displayName changed unexpectedly: %q", updated.DisplayName)
	}
}

func TestGroupMembershipToggle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	groupId, err := db.CreateGroup(ctx, &appDb.CreateGroup{Name: "chess club"})
	if err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}

	member, count, err := db.ToggleMembership(ctx, groupId, "alice")
	if err != nil {
		t.Fatalf("ToggleMembership: %v", err)
	}
	if !member || count != 1 {
		t.Fatalf("after join: member=%v count=%v", member, count)
	}

	groups, err := db.GetGroupsByIds(ctx, []string{groupId}, &appDb.GetGroupsQueryOpts{ForUserId: "alice"})
	if err != nil {
		t.Fatalf("GetGroupsByIds: %v", err)
	}
	if len(groups) != 1 || !groups[0].IsMember {
		t.Fatalf("membership flag not set: %+v", groups)
	}

	member, count, err = db.ToggleMembership(ctx, groupId, "alice")
	if err != nil {
		t.Fatalf("ToggleMembership (second): %v", err)
	}
	if member || count != 0 {
		t.Fatalf("after leave: member=%v count=%v", member, count)
	}
}

func TestSessionSupersession(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	addUser(t, db, "alice")

	first := &model.Session{Id: "s1", UserId: "alice", CreatedAt: time.Now()}
	if err := db.CreateSession(ctx, first); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	second := &model.Session{Id: "s2", UserId: "alice", CreatedAt: time.Now()}
	if err := db.CreateSession(ctx, second); err != nil {
		t.Fatalf("CreateSession (second): %v", err)
	}

	gone, err := db.GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if gone != nil {
		t.Fatal("first session survived supersession")
	}
	live, err := db.GetSession(ctx, "s2")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if live == nil {
		t.Fatal("second session missing")
	}
}
