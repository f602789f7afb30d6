package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/compass-app/gatekeeper/core"
	"github.com/compass-app/gatekeeper/service"
)

// Cookie names shared between handlers and middleware.
const (
	CookieSession            = "session"
	CookieSiweVerified       = "siwe_verified"
	CookieRegistrationStatus = "registration_status"
	CookieLanguage           = "language"
	CookieChallenge          = "siwe_challenge"
	CookiePaymentNonce       = "payment-nonce"
)

const (
	sessionCookieMaxAge   = 24 * 60 * 60 // matches credential expiry
	challengeCookieMaxAge = 60 * 60
	paymentCookieMaxAge   = 60 * 60
)

// Handlers contains the HTTP handlers for the session and payment endpoints.
type Handlers struct {
	sessions  *service.SessionService
	handshake *service.HandshakeService
	payments  *service.PaymentService
	confirmer *service.Confirmer

	secureCookies bool
}

// NewHandlers creates new handlers.
func NewHandlers(sessions *service.SessionService, handshake *service.HandshakeService, payments *service.PaymentService, confirmer *service.Confirmer, secureCookies bool) *Handlers {
	return &Handlers{
		sessions:      sessions,
		handshake:     handshake,
		payments:      payments,
		confirmer:     confirmer,
		secureCookies: secureCookies,
	}
}

// Nonce issues a sign-in challenge. The challenge id travels in an httpOnly
// cookie; the nonce goes to the client for the wallet to sign.
func (h *Handlers) Nonce(c *gin.Context) {
	challenge, err := h.handshake.CreateChallenge(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create challenge"})
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieChallenge, challenge.ID, challengeCookieMaxAge, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{
		"id":    challenge.ID,
		"nonce": challenge.Nonce,
	})
}

// Login verifies a signed statement against the issued challenge and mints a
// session for the recovered wallet address.
func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Address   string `json:"address" binding:"required"`
		Nonce     string `json:"nonce" binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	challengeID, err := c.Cookie(CookieChallenge)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Handshake rejected", "reason": "nonce_mismatch"})
		return
	}

	address, err := h.handshake.Verify(c.Request.Context(), challengeID, service.Statement{
		Address:   req.Address,
		Nonce:     req.Nonce,
		Signature: req.Signature,
	})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, core.ErrMalformedStatement) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": "Handshake rejected", "reason": rejectReason(err)})
		return
	}

	// The challenge is spent either way; drop the cookie.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieChallenge, "", -1, "/", "", h.secureCookies, true)

	h.createSession(c, address, true)
}

// CreateSession mints a session for an already-verified wallet address.
func (h *Handlers) CreateSession(c *gin.Context) {
	var req struct {
		WalletAddress  string `json:"walletAddress" binding:"required"`
		IsSiweVerified bool   `json:"isSiweVerified"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	h.createSession(c, req.WalletAddress, req.IsSiweVerified)
}

func (h *Handlers) createSession(c *gin.Context, walletAddress string, isSiweVerified bool) {
	language := effectiveLanguage(c)

	token, state, err := h.sessions.CreateSession(c.Request.Context(), walletAddress, isSiweVerified)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to create session"
		if errors.Is(err, core.ErrUserNotFound) {
			status = http.StatusNotFound
			message = "User not found"
		}
		h.setLanguageCookie(c, language)
		c.JSON(status, gin.H{"error": message})
		return
	}

	registrationStatus := "pending"
	if state.Registered {
		registrationStatus = "complete"
	}
	siweValue := "false"
	if isSiweVerified {
		siweValue = "true"
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieSession, token, sessionCookieMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(CookieSiweVerified, siweValue, sessionCookieMaxAge, "/", "", h.secureCookies, true)
	c.SetCookie(CookieRegistrationStatus, registrationStatus, sessionCookieMaxAge, "/", "", h.secureCookies, true)
	h.setLanguageCookie(c, language)

	body := sessionBody(state)
	body["isNewRegistration"] = !state.Registered

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, body)
}

// VerifySession verifies the session cookie, re-resolves the user and
// returns the unified session shape. Every failure still carries the full
// flag set and preserves the client's language preference.
func (h *Handlers) VerifySession(c *gin.Context) {
	language := effectiveLanguage(c)
	c.Header("Cache-Control", "no-store")

	token, _ := c.Cookie(CookieSession)
	siweVerified, _ := c.Cookie(CookieSiweVerified)

	state, err := h.sessions.Authenticate(c.Request.Context(), token, siweVerified == "true")
	if err != nil {
		h.setLanguageCookie(c, language)

		switch {
		case errors.Is(err, core.ErrNoCredential):
			c.JSON(http.StatusUnauthorized, failureBody("No session found"))
		case errors.Is(err, core.ErrInvalidCredential):
			c.JSON(http.StatusUnauthorized, failureBody("Invalid session token"))
		case errors.Is(err, core.ErrUserNotFound):
			body := failureBody("User not found")
			body["address"] = state.Address
			c.JSON(http.StatusNotFound, body)
		case errors.Is(err, core.ErrStoreFailure):
			body := failureBody("Database error")
			body["address"] = state.Address
			c.JSON(http.StatusInternalServerError, body)
		default:
			c.JSON(http.StatusInternalServerError, failureBody("Session verification failed"))
		}
		return
	}

	h.setLanguageCookie(c, language)
	c.JSON(http.StatusOK, sessionBody(state))
}

// Logout clears the session cookies. There is no server-side revocation
// list; deletion on the client ends the session.
func (h *Handlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieSession, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(CookieSiweVerified, "", -1, "/", "", h.secureCookies, true)
	c.SetCookie(CookieRegistrationStatus, "", -1, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// InitiatePayment mints a payment reference for the session user and hands
// it back alongside a short-lived cookie.
func (h *Handlers) InitiatePayment(c *gin.Context) {
	state := sessionState(c)

	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	// An absent body means a zero amount; the reference is what matters.
	_ = c.ShouldBindJSON(&req)

	payment, err := h.payments.Initiate(c.Request.Context(), state.User.ID, req.Amount)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to initiate payment"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(CookiePaymentNonce, payment.Reference, paymentCookieMaxAge, "/", "", h.secureCookies, true)

	c.JSON(http.StatusOK, gin.H{"id": payment.Reference})
}

// ConfirmPayment runs the bounded synchronous confirmation poll for the
// caller's transaction and reports the outcome.
func (h *Handlers) ConfirmPayment(c *gin.Context) {
	state := sessionState(c)

	var req struct {
		TransactionID string `json:"transaction_id" binding:"required"`
		Reference     string `json:"reference" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	outcome, err := h.payments.Confirm(c.Request.Context(), state.User.ID, req.TransactionID, req.Reference)
	if err != nil {
		if errors.Is(err, core.ErrPaymentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to confirm payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": outcome == core.PaymentOutcomeConfirmed,
		"status":  outcome.String(),
	})
}

// ConfirmPaymentAsync enqueues a background confirmation and returns a job
// id the client can poll instead of holding the request open.
func (h *Handlers) ConfirmPaymentAsync(c *gin.Context) {
	state := sessionState(c)

	var req struct {
		TransactionID string `json:"transaction_id" binding:"required"`
		Reference     string `json:"reference" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	jobID := h.confirmer.Enqueue(state.User.ID, req.TransactionID, req.Reference)

	c.JSON(http.StatusAccepted, gin.H{"job_id": jobID})
}

// ConfirmPaymentJob reports the status of a background confirmation job.
func (h *Handlers) ConfirmPaymentJob(c *gin.Context) {
	status, ok := h.confirmer.Status(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Job not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": string(status)})
}

// effectiveLanguage resolves the display-language preference: header first,
// then cookie, then the default.
func effectiveLanguage(c *gin.Context) string {
	if lang := c.GetHeader("X-Language-Preference"); lang != "" {
		return lang
	}
	if lang, err := c.Cookie(CookieLanguage); err == nil && lang != "" {
		return lang
	}
	return "en"
}

// setLanguageCookie re-sets the language cookie on every session response,
// failures included, so the client keeps its locale. Intentionally not
// httpOnly; the UI reads it.
func (h *Handlers) setLanguageCookie(c *gin.Context, language string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieLanguage, language, sessionCookieMaxAge, "/", "", h.secureCookies, false)
}

func failureBody(message string) gin.H {
	return gin.H{
		"isAuthenticated": false,
		"isRegistered":    false,
		"isVerified":      false,
		"error":           message,
	}
}

func sessionBody(state *core.SessionState) gin.H {
	body := gin.H{
		"address":           state.Address,
		"isAuthenticated":   state.Authenticated,
		"isRegistered":      state.Registered,
		"isVerified":        state.Verified,
		"isSiweVerified":    state.SiweVerified,
		"needsRegistration": state.NeedsRegistration,
		"userId":            state.UserID,
		"userUuid":          state.UserUUID,
	}
	if state.User != nil {
		body["user"] = gin.H{
			"id":            state.User.ID,
			"name":          state.User.Name,
			"email":         state.User.Email,
			"walletAddress": state.User.WalletAddress,
		}
	}
	return body
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, core.ErrNonceMismatch):
		return "nonce_mismatch"
	case errors.Is(err, core.ErrMalformedStatement):
		return "malformed_statement"
	default:
		return "invalid_signature"
	}
}
