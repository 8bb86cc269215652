package authors

type CreateAuthorPayload struct {
	Bio         string   `json:"bio" mod:"trim" validate:"max=1000"`
	Nationality string   `json:"nationality" mod:"trim" validate:"omitempty,min=2,max=30"`
	Genres      []string `json:"genres" mod:"dive,trim" validate:"omitempty,dive,required"`
}

// UpdateAuthorPayload only applies the fields present in the body. A nil
// Genres means the key was absent.
type UpdateAuthorPayload struct {
	Bio         *string  `json:"bio" mod:"trim" validate:"omitempty,max=1000"`
	Nationality *string  `json:"nationality" mod:"trim" validate:"omitempty,min=2,max=100"`
	Genres      []string `json:"genres" mod:"dive,trim" validate:"omitempty,dive,required"`
}

type ListAuthorsQuery struct {
	Page   string `query:"page"`
	Genres string `query:"genres"`
}
