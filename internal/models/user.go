package models

type User struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"` // don’t expose hash
	Admin        bool   `json:"admin"`
	SuperAdmin   bool   `json:"isSuperAdmin"`
}
