package model

import "time"

// User is the profile record. Id is a stable opaque identifier (the firebase
// UID when the identity provider is configured, a generated uuid otherwise) and
// is the only value other records may reference; display names are renameable
// attributes joined at read time.
type User struct {
	Id             string    `db:"id" json:"id"`
	Email          string    `db:"email" json:"email"`
	PasswordHash   string    `db:"password_hash" json:"-"`
	DisplayName    string    `db:"display_name" json:"displayName"`
	Username       string    `db:"username" json:"username"`
	Bio            string    `db:"bio" json:"bio"`
	Location       string    `db:"location" json:"location"`
	Website        string    `db:"website" json:"website"`
	Campus         string    `db:"campus" json:"campus"`
	AvatarURL      string    `db:"avatar_url" json:"avatarUrl"`
	CoverURL       string    `db:"cover_url" json:"coverUrl"`
	FollowerCount  int       `db:"follower_count" json:"followers"`
	FollowingCount int       `db:"following_count" json:"following"`
	NotifyFollows  bool      `db:"notify_follows" json:"notifyFollows"`
	NotifyLikes    bool      `db:"notify_likes" json:"notifyLikes"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
}

// Author is the denormalized slice of a user that rides along on posts,
// comments, and messages.
type Author struct {
	Id          string `db:"author_id" json:"id"`
	DisplayName string `db:"display_name" json:"displayName"`
	Username    string `db:"username" json:"username"`
	AvatarURL   string `db:"avatar_url" json:"avatarUrl"`
}

func (u *User) AsAuthor() *Author {
	return &Author{
		Id:          u.Id,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		AvatarURL:   u.AvatarURL,
	}
}

// PublicUser is the profile as served to anyone other than its owner.
// Notification settings stay on the private record.
type PublicUser struct {
	Id             string    `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"displayName"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	Location       string    `json:"location"`
	Website        string    `json:"website"`
	Campus         string    `json:"campus"`
	AvatarURL      string    `json:"avatarUrl"`
	CoverURL       string    `json:"coverUrl"`
	FollowerCount  int       `json:"followers"`
	FollowingCount int       `json:"following"`
	CreatedAt      time.Time `json:"createdAt"`
}

func (u *User) AsPublic() *PublicUser {
	return &PublicUser{
		Id:             u.Id,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		Username:       u.Username,
		Bio:            u.Bio,
		Location:       u.Location,
		Website:        u.Website,
		Campus:         u.Campus,
		AvatarURL:      u.AvatarURL,
		CoverURL:       u.CoverURL,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
		CreatedAt:      u.CreatedAt,
	}
}
