package fakeserver

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/JFR35/pdaw-client/internal/model"
)

// render emits the user's roles in one of the backend's two historical
// wire shapes, so clients must normalize both.
func (e *userEntry) render() gin.H {
	roles := make([]any, len(e.User.Roles))
	for i, r := range e.User.Roles {
		if e.objectRoles {
			roles[i] = gin.H{"name": r.String()}
		} else {
			roles[i] = r.String()
		}
	}
	return gin.H{
		"userId":    e.User.UserID,
		"firstName": e.User.FirstName,
		"lastName":  e.User.LastName,
		"email":     e.User.Email,
		"roles":     roles,
	}
}

func (s *Server) listUsers(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gin.H, 0, len(s.users))
	for _, e := range s.users {
		out = append(out, e.render())
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createUser(c *gin.Context) {
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed user"))
		return
	}
	if user.Email == "" || user.FirstName == "" || user.LastName == "" {
		c.JSON(http.StatusBadRequest, errorBody("firstName, lastName and email are required"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	user.UserID = s.nextUserID
	s.nextUserID++
	user.Password = ""
	entry := &userEntry{User: user, objectRoles: len(s.users)%2 == 1}
	s.users = append(s.users, entry)
	c.JSON(http.StatusCreated, entry.render())
}

func (s *Server) updateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid user id"))
		return
	}
	var user model.User
	if err := c.ShouldBindJSON(&user); err != nil {
		c.JSON(http.StatusBadRequest, errorBody("malformed user"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.User.UserID == id {
			user.UserID = id
			user.Password = ""
			e.User = user
			c.JSON(http.StatusOK, e.render())
			return
		}
	}
	c.JSON(http.StatusNotFound, errorBody("user not found"))
}

func (s *Server) deleteUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorBody("invalid user id"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.users {
		if e.User.UserID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			c.Status(http.StatusNoContent)
			return
		}
	}
	c.JSON(http.StatusNotFound, errorBody("user not found"))
}
