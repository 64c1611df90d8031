package dto

import "github.com/rsawada/project-management-api/internal/models"

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// RegisteredUserDTO is returned from registration and /auth/me, where the
// caller is the user themselves.
type RegisteredUserDTO struct {
	UserDTO
	PhoneNumber string `json:"phone_number"`
	IsStaff     bool   `json:"is_staff"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// ToRegisteredUserDTO converts a User model to RegisteredUserDTO
func ToRegisteredUserDTO(user models.User) RegisteredUserDTO {
	return RegisteredUserDTO{
		UserDTO:     ToUserDTO(user),
		PhoneNumber: user.PhoneNumber,
		IsStaff:     user.IsStaff,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	dtos := make([]UserDTO, len(users))
	for i, user := range users {
		dtos[i] = ToUserDTO(user)
	}
	return dtos
}
