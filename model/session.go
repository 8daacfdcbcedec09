package model

import "time"

// Session is the server-held record backing single-active-session enforcement.
// A login creates one and supersedes any other session for the same user;
// tokens carry the session id and die with it.
type Session struct {
	Id        string    `db:"id" json:"id"`
	UserId    string    `db:"user_id" json:"userId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
