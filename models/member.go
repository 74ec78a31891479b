package models

// AdminJoinRequest is the payload of POST /member/join/admin.
type AdminJoinRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Address   string `json:"address"`
	AdminCode string `json:"adminCode"`
}
