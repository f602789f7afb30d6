package http

import (
	"github.com/gin-gonic/gin"

	"github.com/compass-app/gatekeeper/service"
)

// SetupRouter sets up the Gin router
func SetupRouter(sessions *service.SessionService, handshake *service.HandshakeService, payments *service.PaymentService, confirmer *service.Confirmer, secureCookies bool) *gin.Engine {
	router := gin.Default()

	handlers := NewHandlers(sessions, handshake, payments, confirmer, secureCookies)

	// Auth routes
	auth := router.Group("/api/auth")
	{
		auth.GET("/nonce", handlers.Nonce)
		auth.POST("/login", handlers.Login)
		auth.GET("/session", handlers.VerifySession)
		auth.POST("/session", handlers.CreateSession)
		auth.POST("/logout", handlers.Logout)
	}

	// Payment routes (protected)
	api := router.Group("/api")
	api.Use(SessionMiddleware(sessions))
	{
		api.POST("/initiate-payment", handlers.InitiatePayment)
		api.POST("/confirm-payment", handlers.ConfirmPayment)
		api.POST("/confirm-payment/async", handlers.ConfirmPaymentAsync)
		api.GET("/confirm-payment/jobs/:id", handlers.ConfirmPaymentJob)
	}

	return router
}
