package shopserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/go-shop-api-server/internal/domains/users/adapters/http/mapper"
	userapp "github.com/Apurer/go-shop-api-server/internal/domains/users/application"
	userdomain "github.com/Apurer/go-shop-api-server/internal/domains/users/domain"
	userports "github.com/Apurer/go-shop-api-server/internal/domains/users/ports"
)

// UserAPI implements the user OpenAPI section.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

func toTransportUser(model User) userhttpmapper.User {
	return userhttpmapper.User{
		ID:        model.Id,
		Username:  model.Username,
		FirstName: model.FirstName,
		LastName:  model.LastName,
		Email:     model.Email,
		Password:  model.Password,
		Phone:     model.Phone,
		Roles:     model.Roles,
	}
}

func toTransportUserList(list []User) []userhttpmapper.User {
	result := make([]userhttpmapper.User, 0, len(list))
	for _, item := range list {
		result = append(result, toTransportUser(item))
	}
	return result
}

func fromTransportUser(user userhttpmapper.User) User {
	return User{
		Id:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.Email,
		Phone:     user.Phone,
		Roles:     user.Roles,
		LastSeen:  user.LastSeen,
	}
}

func fromTransportUsers(users []userhttpmapper.User) []User {
	result := make([]User, 0, len(users))
	for _, user := range users {
		result = append(result, fromTransportUser(user))
	}
	return result
}

// Post /v1/users
// Create user
func (api *UserAPI) CreateUser(c *gin.Context) {
	var payload User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	// Self-registration never grants elevated roles.
	payload.Roles = nil
	user, err := userhttpmapper.ToDomainUser(toTransportUser(payload))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	saved, err := api.service.CreateUser(c.Request.Context(), user)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportUser(userhttpmapper.FromDomainUser(saved)))
}

// Post /v1/users/createWithList
// Creates list of users with given input array (admin)
func (api *UserAPI) CreateUsersWithListInput(c *gin.Context) {
	if _, ok := requireAdmin(c); !ok {
		return
	}
	var payload []User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	users, err := userhttpmapper.ToDomainUsers(toTransportUserList(payload))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	created, err := api.service.CreateUsers(c.Request.Context(), users)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusCreated, fromTransportUsers(userhttpmapper.FromDomainUsers(created)))
}

// Delete /v1/users/:username
// Delete user (self or admin)
func (api *UserAPI) DeleteUser(c *gin.Context) {
	username, ok := requireSelfOrAdmin(c)
	if !ok {
		return
	}
	if err := api.service.Delete(c.Request.Context(), username); err != nil {
		respondUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/users/:username
// Get user by user name (self or admin)
func (api *UserAPI) GetUserByName(c *gin.Context) {
	username, ok := requireSelfOrAdmin(c)
	if !ok {
		return
	}
	user, err := api.service.GetByUsername(c.Request.Context(), username)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportUser(userhttpmapper.FromDomainUser(user)))
}

// Get /v1/users/login
// Logs user into the system
func (api *UserAPI) LoginUser(c *gin.Context) {
	username := c.Query("username")
	password := c.Query("password")
	token, err := api.service.Login(c.Request.Context(), username, password)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

// Get /v1/users/logout
// Logs out current logged in user session
func (api *UserAPI) LogoutUser(c *gin.Context) {
	user, ok := requireUser(c)
	if !ok {
		return
	}
	api.service.Logout(c.Request.Context(), user.Username)
	c.JSON(http.StatusOK, gin.H{"message": "logout successful"})
}

// Put /v1/users/:username
// Update user (self or admin)
func (api *UserAPI) UpdateUser(c *gin.Context) {
	username, ok := requireSelfOrAdmin(c)
	if !ok {
		return
	}
	var payload User
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	caller, _ := requireUser(c)
	if caller != nil && !caller.IsAdmin() {
		// Customers cannot change their own role set.
		payload.Roles = nil
	}
	user, err := userhttpmapper.ToDomainUser(toTransportUser(payload))
	if err != nil {
		respondError(c, http.StatusBadRequest, err)
		return
	}
	updated, err := api.service.Update(c.Request.Context(), username, user)
	if err != nil {
		respondUserError(c, err)
		return
	}
	c.JSON(http.StatusOK, fromTransportUser(userhttpmapper.FromDomainUser(updated)))
}

// requireSelfOrAdmin resolves the :username path parameter and enforces
// that the caller acts on their own account unless they are an admin.
func requireSelfOrAdmin(c *gin.Context) (string, bool) {
	username := strings.TrimSpace(c.Param("username"))
	if username == "" {
		respondError(c, http.StatusBadRequest, errors.New("username is required"))
		return "", false
	}
	user, ok := requireUser(c)
	if !ok {
		return "", false
	}
	if user.Username != username && !user.IsAdmin() {
		respondError(c, http.StatusForbidden, errors.New("cannot act on another user's account"))
		return "", false
	}
	return username, true
}

func respondUserError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, userapp.ErrInvalidInput), errors.Is(err, userdomain.ErrInvalidRole):
		respondError(c, http.StatusBadRequest, err)
	case errors.Is(err, userapp.ErrAuthentication):
		respondError(c, http.StatusUnauthorized, err)
	case errors.Is(err, userports.ErrNotFound):
		respondError(c, http.StatusNotFound, err)
	default:
		respondError(c, http.StatusInternalServerError, err)
	}
}
