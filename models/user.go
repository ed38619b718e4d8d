package models

import "strings"

// User is a typed view over a user record.
type User struct {
	ID        string
	Username  string
	Email     string
	FirstName string
	LastName  string
	FullName  string
	Active    bool
	Record    Record
}

// UserFromRecord builds a User from a raw record.
func UserFromRecord(r Record) *User {
	u := &User{
		ID:        r.ID(KindUser),
		Username:  r.FirstNonEmpty("username", "userid"),
		Email:     r.FirstNonEmpty("email", "primary_email"),
		FirstName: r.FirstNonEmpty("first_name", "firstname"),
		LastName:  r.FirstNonEmpty("last_name", "lastname"),
		FullName:  r.FirstNonEmpty("fullname", "full_name"),
		Active:    r.FirstNonEmpty("status", "valid") != "0",
		Record:    r,
	}
	if u.FullName == "" {
		u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	return u
}
