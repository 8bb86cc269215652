package auth

type RegisterPayload struct {
	Fullname string `json:"fullname" mod:"trim" validate:"required,min=2,max=100"`
	Email    string `json:"email" mod:"trim,lcase" validate:"required,email"`
	Username string `json:"username" mod:"trim,lcase" validate:"required,min=5,max=60"`
	Password string `json:"password" mod:"trim" validate:"required,min=8,max=50,password"`
}

type LoginPayload struct {
	User     string `json:"user" mod:"trim" validate:"required,min=5,max=60"`
	Password string `json:"password" mod:"trim" validate:"required,min=8,max=50"`
}

type RefreshPayload struct {
	RefreshToken string `json:"refreshToken" mod:"trim"`
}
