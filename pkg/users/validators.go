package users

import "mime/multipart"

// UpdateUserPayload represents the request body for updating a user.
type UpdateUserPayload struct {
	Fullname *string `json:"fullname" mod:"trim" validate:"omitempty,min=2,max=100"`
	Email    *string `json:"email" mod:"trim,lcase" validate:"omitempty,email"`
	Username *string `json:"username" mod:"trim,lcase" validate:"omitempty,min=5,max=60"`
}

type AssignRolePayload struct {
	Role string `json:"role" mod:"trim,lcase" validate:"required,oneof=admin author user"`
}

type UploadProfilePicturePayload struct {
	OldAvatarPublicID string                           `form:"old_avatar_public_id" mod:"trim"`
	FormFiles         map[string]*multipart.FileHeader `json:"-" form:"-"`
}
