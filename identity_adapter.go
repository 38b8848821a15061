package calc

import "strconv"

type identity struct {
	id       string
	username string
	email    string
}

func (i identity) ID() string       { return i.id }
func (i identity) Username() string { return i.username }
func (i identity) Email() string    { return i.email }

// IdentityFromUser adapts a stored User into an Identity.
func IdentityFromUser(user *User) Identity {
	if user == nil {
		return nil
	}
	return identity{
		id:       strconv.FormatInt(user.ID, 10),
		username: user.Username,
		email:    user.Email,
	}
}
