package entity

import "time"

// User is a seeded staff profile. PIN is the identifier used everywhere else.
type User struct {
	PIN          string    `json:"pin"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	MobileNumber string    `json:"mobile_number"`
	Department   string    `json:"department"`
	Designation  string    `json:"designation"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Snapshot captures the submitter fields stamped onto a voucher
func (u *User) Snapshot() Submitter {
	return Submitter{
		PIN:         u.PIN,
		Name:        u.Name,
		Mobile:      u.MobileNumber,
		Department:  u.Department,
		Designation: u.Designation,
		Role:        u.Role,
	}
}
