package authapi

import "time"

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	AccessLevel int    `json:"access_level"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	AccessLevel int       `json:"access_level"`
	CreatedAt   time.Time `json:"created_at"`
}

type meResponse struct {
	User userResponse `json:"user"`
}

type userCreatedResponse struct {
	User userResponse `json:"user"`
}
