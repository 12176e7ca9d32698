// routes/recipient.go
package routes

import (
	"famline/controllers"

	"github.com/gin-gonic/gin"
)

// SetupRecipientRoutes configures recipient address book routes
func SetupRecipientRoutes(router *gin.RouterGroup, recipientController *controllers.RecipientController) {
	recipients := router.Group("/recipients")

	recipients.GET("", recipientController.GetRecipients)
	recipients.POST("", recipientController.CreateRecipient)
	recipients.GET("/:recipientId", recipientController.GetRecipient)
	recipients.PUT("/:recipientId", recipientController.UpdateRecipient)
	recipients.DELETE("/:recipientId", recipientController.DeactivateRecipient)
}
