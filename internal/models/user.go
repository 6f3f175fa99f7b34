package models

import "time"

type Role string

const (
	RoleRequester     Role = "requester"
	RoleApprover      Role = "approver"
	RoleAdministrator Role = "administrator"
)

func (r Role) Valid() bool {
	switch r {
	case RoleRequester, RoleApprover, RoleAdministrator:
		return true
	}
	return false
}

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	CreatedAt   time.Time `json:"created_at"`
}
