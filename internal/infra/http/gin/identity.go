package ginserver

import (
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"
)

// Identity comes from the gateway in front of this service, which verifies
// the session and forwards the account email. The core trusts the header.
const userEmailHeader = "X-User-Email"

func requireUser(c *gin.Context) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(c.GetHeader(userEmailHeader)))
	if email == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing " + userEmailHeader + " header"})
		return "", false
	}
	return email, true
}
