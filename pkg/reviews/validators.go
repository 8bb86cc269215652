package reviews

type CreateReviewPayload struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" mod:"trim" validate:"max=1000"`
}

type UpdateReviewPayload struct {
	Rating  *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Comment *string `json:"comment" mod:"trim" validate:"omitempty,max=1000"`
}

type ListReviewsQuery struct {
	Page   string `query:"page"`
	Rating string `query:"rating"`
}
