package model

import "time"

// Thread is a direct-message conversation between exactly two users. It is
// created on the first message between a pair and reused afterwards.
type Thread struct {
	Id             string    `json:"id"`
	ParticipantIds []string  `json:"participantIds"`
	LastMessage    string    `json:"lastMessage"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (t *Thread) HasParticipant(userId string) bool {
	for _, id := range t.ParticipantIds {
		if id == userId {
			return true
		}
	}
	return false
}

type Message struct {
	Id        string    `json:"id"`
	ThreadId  string    `json:"threadId"`
	SenderId  string    `json:"senderId"`
	Text      string    `json:"text"`
	Unsent    bool      `json:"unsent"`
	SeenBy    []string  `json:"seenBy"`
	CreatedAt time.Time `json:"createdAt"`
}
