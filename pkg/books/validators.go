package books

import "mime/multipart"

type CreateBookPayload struct {
	ISBN                 string   `json:"isbn" mod:"trim" validate:"required"`
	Title                string   `json:"title" mod:"trim" validate:"required,min=2,max=200"`
	Description          string   `json:"description" mod:"trim" validate:"required,min=10"`
	Categories           []string `json:"categories" mod:"dive,trim" validate:"required,min=1,dive,required"`
	Edition              string   `json:"edition" mod:"trim" validate:"required"`
	Price                *float64 `json:"price" validate:"required,min=0"`
	AvailableStock       *int     `json:"availableStock" validate:"required,min=0"`
	PublishedDate        string   `json:"publishedDate" mod:"trim" validate:"required,iso8601"`
	Pages                *int     `json:"pages" validate:"required,min=1"`
	AvailableInLanguages []string `json:"availableInLanguages" mod:"dive,trim,lcase" validate:"omitempty,dive,oneof=english hindi spanish portuguese french german chinese japanese russian korean"`
}

// UpdateBookPayload only applies the fields present in the body.
type UpdateBookPayload struct {
	ISBN                 *string  `json:"isbn" mod:"trim" validate:"omitempty,min=1"`
	Title                *string  `json:"title" mod:"trim" validate:"omitempty,min=2,max=200"`
	Description          *string  `json:"description" mod:"trim" validate:"omitempty,min=10"`
	Categories           []string `json:"categories" mod:"dive,trim" validate:"omitnil,min=1,dive,required"`
	Edition              *string  `json:"edition" mod:"trim" validate:"omitempty,min=1"`
	Price                *float64 `json:"price" validate:"omitempty,min=0"`
	AvailableStock       *int     `json:"availableStock" validate:"omitempty,min=0"`
	PublishedDate        *string  `json:"publishedDate" mod:"trim" validate:"omitempty,iso8601"`
	Pages                *int     `json:"pages" validate:"omitempty,min=1"`
	AvailableInLanguages []string `json:"availableInLanguages" mod:"dive,trim,lcase" validate:"omitempty,dive,oneof=english hindi spanish portuguese french german chinese japanese russian korean"`
}

type ListBooksQuery struct {
	Page       string `query:"page"`
	Title      string `query:"title"`
	Categories string `query:"categories"`
	MinPrice   string `query:"minPrice"`
	MaxPrice   string `query:"maxPrice"`
	Languages  string `query:"languages"`
}

type UploadCoverPayload struct {
	OldCoverImagePublicID string                           `form:"old_cover_image_public_id" mod:"trim"`
	FormFiles             map[string]*multipart.FileHeader `json:"-" form:"-"`
}
