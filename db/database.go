package db

import (
	"context"
	"time"

	"github.com/onemsu/onemsu-be/model"
)

type Database interface {
	UserDatabase
	SessionDatabase
	PostDatabase
	FollowDatabase
	ThreadDatabase
	NotificationDatabase
	GroupDatabase
	Close() error
}

// ProfilePatch carries the allow-listed profile fields. Nil pointers mean
// "leave alone"; anything a client sends outside this set never reaches the
// store.
type ProfilePatch struct {
	DisplayName *string
	Username    *string
	Bio         *string
	Location    *string
	Website     *string
	Campus      *string
	AvatarURL   *string
	CoverURL    *string
}

type UserDatabase interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserById(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	UpdateUser(ctx context.Context, id string, patch *ProfilePatch) (*model.User, error)
}

type SessionDatabase interface {
	// CreateSession inserts the session and supersedes every other session
	// held by the same user.
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
}

type CreatePost struct {
	AuthorId string
	GroupId  string
	Campus   string
	Text     string
	ImageURL string
	AudioURL string
}

type CreateComment struct {
	PostId   string
	AuthorId string
	Text     string
}

type PostQueryOpts struct {
	// LikeHistoryOf populates ViewerHasLiked for the given user id.
	LikeHistoryOf string
}

type PostsListQuery struct {
	From             *time.Time
	LastId           string
	GroupId          string
	AuthorIds        []string
	ExcludeAuthorIds []string
	*PostQueryOpts
	Limit int
}

type PostDatabase interface {
	CreatePost(ctx context.Context, req *CreatePost) (postId string, err error)
	GetPostById(ctx context.Context, id string, opts *PostQueryOpts) (*model.Post, error)
	GetPosts(ctx context.Context, query *PostsListQuery) ([]*model.Post, error)
	DeletePost(ctx context.Context, id string) error
	// ToggleLike flips the like edge and adjusts the counter in one
	// transaction.
	ToggleLike(ctx context.Context, userId, postId string) (liked bool, likeCount int, err error)
	CreateComment(ctx context.Context, req *CreateComment) (commentId string, err error)
	GetComments(ctx context.Context, postId string) ([]*model.Comment, error)
}

// FollowResult reports the state after a toggle, including the caller's and
// target's refreshed denormalized counters.
type FollowResult struct {
	Following      bool `json:"following"`
	FollowerCount  int  `json:"followers"`
	FollowingCount int  `json:"following_count"`
}

type FollowDatabase interface {
	// ToggleFollow flips the edge and adjusts both profile counters in one
	// transaction. FollowerCount is the target's, FollowingCount the
	// caller's.
	ToggleFollow(ctx context.Context, followerId, followeeId string) (*FollowResult, error)
	// ToggleBlock flips the block edge; creating a block severs follow edges
	// in both directions within the same transaction.
	ToggleBlock(ctx context.Context, blockerId, blockedId string) (blocked bool, err error)
	GetFollowers(ctx context.Context, userId string) ([]*model.Author, error)
	GetFollowing(ctx context.Context, userId string) ([]*model.Author, error)
	GetFollowingIds(ctx context.Context, userId string) ([]string, error)
	GetBlockedIds(ctx context.Context, userId string) ([]string, error)
}

type CreateMessage struct {
	ThreadId string
	SenderId string
	Text     string
}

type ThreadDatabase interface {
	// FindOrCreateThread returns the thread between the pair, creating it if
	// this is their first exchange. Participant order does not matter.
	FindOrCreateThread(ctx context.Context, userA, userB string) (thread *model.Thread, created bool, err error)
	GetThreadById(ctx context.Context, id string) (*model.Thread, error)
	GetThreadsForUser(ctx context.Context, userId string) ([]*model.Thread, error)
	// CreateMessage appends and bumps the thread's lastMessage/updatedAt in
	// the same transaction.
	CreateMessage(ctx context.Context, req *CreateMessage) (messageId string, err error)
	GetMessages(ctx context.Context, threadId string) ([]*model.Message, error)
	MarkMessageSeen(ctx context.Context, threadId, messageId, userId string) error
	// UnsendMessage blanks the text and flags the message; only the stored
	// sender matches.
	UnsendMessage(ctx context.Context, threadId, messageId, senderId string) error
}

type NotificationDatabase interface {
	AppendNotification(ctx context.Context, n *model.Notification) error
	GetNotificationsForUser(ctx context.Context, userId string) ([]*model.Notification, error)
	MarkNotificationsRead(ctx context.Context, userId string) error
}

type CreateGroup struct {
	Name        string
	Campus      string
	Description string
}

type GetGroupsQueryOpts struct {
	// ForUserId populates IsMember for the given user id.
	ForUserId string
}

type GroupDatabase interface {
	CreateGroup(ctx context.Context, req *CreateGroup) (groupId string, err error)
	// GetGroupsByIds gets groups. nil ids gets all groups.
	GetGroupsByIds(ctx context.Context, ids []string, opts *GetGroupsQueryOpts) ([]*model.GroupWithMembership, error)
	ToggleMembership(ctx context.Context, groupId, userId string) (member bool, memberCount int, err error)
	GetMembershipGroupIds(ctx context.Context, userId string) ([]string, error)
}
