package loans

type CreateLoanPayload struct {
	BookIDs []string `json:"bookIds" mod:"dive,trim" validate:"required,min=1,dive,uuid"`
}

type ListLoansQuery struct {
	Page   string `query:"page"`
	Status string `query:"status"`
}
