package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/scholarly-labs/resource-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Resource endpoints (public read access). Static paths before the
		// :tokenId wildcard so gin routes them correctly.
		v1.GET("/resources", handler.ListResources)
		v1.GET("/resources/market", handler.ListMarketResources)
		v1.GET("/resources/owner/:address", handler.ListResourcesByOwner)
		v1.GET("/resources/:tokenId", handler.GetResource)
		v1.GET("/resources/:tokenId/transfers", handler.GetResourceTransfers)
		v1.GET("/resources/:tokenId/references", handler.GetResourceReferences)
		v1.GET("/resources/:tokenId/purchase-breakdown", handler.GetPurchaseBreakdown)

		// Minting spends from the service wallet (requires authentication)
		v1.POST("/resources/mint", middleware.Auth(authCfg), handler.MintResource)

		// Marketplace endpoints. List and buy only prepare call data for the
		// client's wallet, the signature in the body proves intent.
		v1.POST("/market/list", handler.ListToken)
		v1.POST("/market/buy", handler.BuyToken)
		v1.POST("/market/unlist", middleware.Auth(authCfg), handler.UnlistToken)

		// Citation endpoints (requires authentication)
		v1.POST("/references", middleware.Auth(authCfg), handler.CreateReference)

		// Access grant endpoints
		v1.GET("/access/check", handler.CheckAccess)
		v1.POST("/access/purchase", handler.PurchaseAccess)
		v1.POST("/access/use", handler.UseAccess)

		// Indexer control (requires authentication)
		v1.POST("/indexer/resync", middleware.Auth(authCfg), handler.TriggerResync)
	}
}
