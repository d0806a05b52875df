package user

import "time"

type User struct {
	ID           string    `json:"id" dynamodbav:"id"`
	Username     string    `json:"username" dynamodbav:"username"`
	PasswordHash string    `json:"-" dynamodbav:"password_hash"` // Never expose password in JSON
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
}

// Response is the only user shape returned by the API.
type Response struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToResponse() Response {
	return Response{
		ID:        u.ID,
		Username:  u.Username,
		CreatedAt: u.CreatedAt,
	}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}
