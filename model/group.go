package model

import "time"

type Group struct {
	Id          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Campus      string    `db:"campus" json:"campus"`
	Description string    `db:"description" json:"description"`
	MemberCount int       `db:"member_count" json:"memberCount"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type GroupWithMembership struct {
	*Group
	IsMember bool `db:"is_member" json:"isMember"`
}

type Membership struct {
	GroupId string `db:"group_id" json:"groupId"`
	UserId  string `db:"user_id" json:"userId"`
}
