package mapper

import (
	"time"

	userdomain "github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
)

// User represents the transport-level user payload.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
	Email     string
	Password  string
	Phone     string
	Roles     []string
	LastSeen  time.Time
}

// ToDomainUser converts a transport user to its domain counterpart.
func ToDomainUser(model User) (*userdomain.User, error) {
	user, err := userdomain.NewUser(model.ID, model.Username, model.Password)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(model.FirstName, model.LastName, model.Email, model.Phone); err != nil {
		return nil, err
	}
	if len(model.Roles) > 0 {
		if err := user.SetRoles(model.Roles); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// FromDomainUser converts a domain user into a transport representation.
// The password never leaves the service.
func FromDomainUser(user *userdomain.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     append([]string(nil), user.Roles...),
		LastSeen:  user.LastSeen,
	}
}

// FromDomainUsers converts a slice of domain users to transport representation.
func FromDomainUsers(users []*userdomain.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, FromDomainUser(user))
	}
	return result
}

// ToDomainUsers converts transport users into the domain representation.
func ToDomainUsers(users []User) ([]*userdomain.User, error) {
	result := make([]*userdomain.User, 0, len(users))
	for _, user := range users {
		mapped, err := ToDomainUser(user)
		if err != nil {
			return nil, err
		}
		result = append(result, mapped)
	}
	return result, nil
}
