package testutil

import (
	"github.com/gin-gonic/gin"

	"github.com/ardiansyahdp/konveksi-api/middleware"
	"github.com/ardiansyahdp/konveksi-api/models"
)

// WithRequester returns a middleware that installs a fixed requester in the
// request context, standing in for the JWT validation and profile lookup that
// run in production.
func WithRequester(r models.Requester) gin.HandlerFunc {
	return func(c *gin.Context) {
		middleware.SetRequester(c, r)
		c.Next()
	}
}

// AsCustomer builds the requester for a customer account.
func AsCustomer(userID uint) models.Requester {
	return models.Requester{ID: userID, Role: models.RoleCustomer}
}

// AsAdmin builds the requester for an admin account.
func AsAdmin(userID uint) models.Requester {
	return models.Requester{ID: userID, Role: models.RoleAdmin}
}
