package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	LanguageEnglish    = "english"
	LanguageHindi      = "hindi"
	LanguageSpanish    = "spanish"
	LanguagePortuguese = "portuguese"
	LanguageFrench     = "french"
	LanguageGerman     = "german"
	LanguageChinese    = "chinese"
	LanguageJapanese   = "japanese"
	LanguageRussian    = "russian"
	LanguageKorean     = "korean"
)

var Languages = []string{
	LanguageEnglish, LanguageHindi, LanguageSpanish, LanguagePortuguese, LanguageFrench,
	LanguageGerman, LanguageChinese, LanguageJapanese, LanguageRussian, LanguageKorean,
}

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID                   string         `bun:",pk" json:"id"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
	ISBN                 string         `bun:"isbn" json:"isbn"`
	Title                string         `json:"title"`
	AuthorID             string         `json:"authorId"`
	Author               *AuthorSummary `bun:"rel:belongs-to,join:author_id=id" json:"author"`
	Description          string         `json:"description"`
	Categories           []string       `json:"categories"`
	Edition              string         `json:"edition"`
	CoverImage           *Image         `bun:",nullzero" json:"coverImage"`
	Price                float64        `json:"price"`
	AvailableStock       int            `json:"availableStock"`
	PublishedDate        time.Time      `json:"publishedDate"`
	Pages                int            `json:"pages"`
	AvailableInLanguages []string       `json:"availableInLanguages"`
}

// BookSummary is the part of a book listed under its author.
type BookSummary struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID          string  `bun:",pk" json:"id"`
	AuthorID    string  `json:"-"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	CoverImage  *Image  `bun:",nullzero" json:"coverImage"`
	Price       float64 `json:"price"`
}
