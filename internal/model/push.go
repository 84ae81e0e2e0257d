package model

import "time"

// PushSubscription is a browser web-push endpoint registered by a user.
type PushSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Endpoint  string    `json:"endpoint"`
	P256dhKey string    `json:"p256dhKey"`
	AuthKey   string    `json:"authKey"`
	CreatedAt time.Time `json:"createdAt"`
}
