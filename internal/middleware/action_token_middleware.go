package middleware

import (
	"net/http"

	"customer_registry_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Named write actions of the registry. Each mutating route accepts only
// anti-forgery tokens minted for its own action name.
const (
	ActionCreateOrUpdate     = "create_or_update"
	ActionSoftDelete         = "soft_delete"
	ActionSoftDeleteBulk     = "soft_delete_bulk"
	ActionDeletePermanent    = "delete_permanent"
	ActionDeletePermanentAll = "delete_permanent_all"
	ActionImportCSV          = "import_csv"
)

var knownActions = map[string]bool{
	ActionCreateOrUpdate:     true,
	ActionSoftDelete:         true,
	ActionSoftDeleteBulk:     true,
	ActionDeletePermanent:    true,
	ActionDeletePermanentAll: true,
	ActionImportCSV:          true,
}

// IsKnownAction reports whether name is a mintable write action.
func IsKnownAction(name string) bool {
	return knownActions[name]
}

// ActionTokenMiddleware guards one write action with an anti-forgery token
// carried in the X-Action-Token header (or an action_token form field).
// Requests with a missing, expired or mismatched token are dropped without
// surfacing an error, mirroring how the registry ignores forged submissions.
func ActionTokenMiddleware(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("X-Action-Token")
		if tokenString == "" {
			tokenString = c.PostForm("action_token")
		}
		if err := utils.ValidateActionToken(tokenString, action); err != nil {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
