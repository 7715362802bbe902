package user

type CreateUserRequest struct {
	ClerkID  string `json:"clerkId" validate:"required"`
	Email    string `json:"email" validate:"omitempty,email"`
	Username string `json:"username" validate:"required,min=1,max=64"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type UpdateProfileRequest struct {
	Username string `json:"username,omitempty" validate:"omitempty,min=1,max=64"`
	Name     string `json:"name,omitempty"`
	ImageURL string `json:"imageUrl,omitempty" validate:"omitempty,url"`
}
