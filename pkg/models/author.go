package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID             string         `bun:",pk" json:"id"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	UserID         string         `json:"userId"`
	Name           string         `json:"name"`
	Bio            string         `json:"bio"`
	Nationality    string         `json:"nationality"`
	Genres         []string       `json:"genres"`
	ProfilePicture *Image         `bun:",nullzero" json:"profilePicture"`
	Books          []*BookSummary `bun:"rel:has-many,join:id=author_id" json:"books,omitempty"`
}

// AuthorSummary is the public part of an author shown alongside a book.
type AuthorSummary struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID             string `bun:",pk" json:"id"`
	Name           string `json:"name"`
	ProfilePicture *Image `bun:",nullzero" json:"profilePicture"`
}
