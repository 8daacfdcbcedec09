package model

import "time"

type Post struct {
	Id             string    `json:"id"`
	Author         *Author   `json:"author"`
	GroupId        string    `json:"groupId,omitempty"`
	Campus         string    `json:"campus"`
	Text           string    `json:"text"`
	ImageURL       string    `json:"imageUrl,omitempty"`
	AudioURL       string    `json:"audioUrl,omitempty"`
	LikeCount      int       `json:"likeCount"`
	CommentCount   int       `json:"commentCount"`
	ViewerHasLiked bool      `json:"likedByViewer"`
	CreatedAt      time.Time `json:"createdAt"`
}

type Comment struct {
	Id        string    `json:"id"`
	PostId    string    `json:"postId"`
	Author    *Author   `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
}
