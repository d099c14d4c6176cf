package v1

import (
	"github.com/gin-gonic/gin"
)

// DocumentRouteHandler defines the routes of a confirmable document.
type DocumentRouteHandler interface {
	List(c *gin.Context)
	Create(c *gin.Context)
	Get(c *gin.Context)
	Update(c *gin.Context)
	Validate(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
}

// DocumentLedgerHandler is implemented by documents that post to the ledger.
type DocumentLedgerHandler interface {
	Ledger(c *gin.Context)
}

// RegisterDocumentRoutes registers CRUD and lifecycle routes for a document.
// If the handler also implements DocumentLedgerHandler, GET /:id/ledger is
// registered as well.
func RegisterDocumentRoutes(group *gin.RouterGroup, handler DocumentRouteHandler) {
	group.GET("", handler.List)
	group.POST("", handler.Create)
	group.GET("/:id", handler.Get)
	group.PUT("/:id", handler.Update)
	group.POST("/:id/validate", handler.Validate)
	group.POST("/:id/confirm", handler.Confirm)
	group.POST("/:id/cancel", handler.Cancel)

	if ledgerHandler, ok := handler.(DocumentLedgerHandler); ok {
		group.GET("/:id/ledger", ledgerHandler.Ledger)
	}
}
