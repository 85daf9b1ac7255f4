package models

import "time"

type User struct {
	ID        int64
	Name      string
	Email     string
	PassHash  []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Book JSON field names mirror the public API: clients address records by
// "_id" and the owner by "user".
type Book struct {
	ID        int64     `json:"_id"`
	UserID    int64     `json:"user"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	Rating    int       `json:"rating"`
	Note      string    `json:"note"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookFilter narrows a listing. OwnerID is always set by the service; the
// rest is optional and applied at the query level.
type BookFilter struct {
	OwnerID int64
	Genre   string
	Search  string
	BookID  int64
}

// Message is a mail job for the out-of-process sender.
type Message struct {
	Email   string `json:"to"`
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}
