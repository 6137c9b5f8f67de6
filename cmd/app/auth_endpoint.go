package main

import (
	"errors"
	"net/http"

	"github.com/clementdevtech/general-hardware/internal/middleware"
	"github.com/clementdevtech/general-hardware/internal/services"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"` // username
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type emailRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func registerHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(registerRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		pending, err := authSvc.Register(c.Request().Context(), req.Email, req.Name, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email, username, and password are required"})
			case errors.Is(err, services.ErrPasswordTooShort):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters long"})
			case errors.Is(err, services.ErrEmailRejected):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
			case errors.Is(err, services.ErrAlreadyExists):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email or Username already exists"})
			case errors.Is(err, services.ErrEmailSend):
				// the pending registration is kept; the user can resend
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email failed to send, please request a new code"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		return c.JSON(http.StatusCreated, echo.Map{
			"message": "Registration successful. Please verify your email within 7 days.",
			"user": echo.Map{
				"email":    pending.Email,
				"username": pending.Username,
			},
		})
	}
}

func loginHandler(authSvc *services.AuthService, jwtm *middleware.JWT, secureCookies bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(loginRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		user, err := authSvc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing credentials"})
			case errors.Is(err, services.ErrUserNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"message": "Email not found"})
			case errors.Is(err, services.ErrInvalidPassword):
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid password"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		token, err := jwtm.GenerateToken(user.ID, user.Email, user.Role)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not create token"})
		}

		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Login successful",
			"token":   token,
			"user": echo.Map{
				"id":       user.ID,
				"email":    user.Email,
				"username": user.Username,
				"role":     user.Role,
			},
		})
	}
}

func logoutHandler(secureCookies bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		c.SetCookie(&http.Cookie{
			Name:     middleware.CookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   secureCookies,
			SameSite: http.SameSiteLaxMode,
		})
		return c.JSON(http.StatusOK, echo.Map{"message": "Logged out successfully"})
	}
}

func forgotPasswordHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(emailRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		if err := authSvc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email is required"})
			case errors.Is(err, services.ErrUserNotFound):
				return c.JSON(http.StatusNotFound, echo.Map{"message": "User not found"})
			case errors.Is(err, services.ErrThrottled):
				return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "Please wait before requesting another reset"})
			case errors.Is(err, services.ErrEmailSend):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email failed to send"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Recovery email sent",
		})
	}
}

func resetPasswordHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(resetPasswordRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		if err := authSvc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Missing token or password"})
			case errors.Is(err, services.ErrPasswordTooShort):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Password must be at least 6 characters long"})
			case errors.Is(err, services.ErrInvalidOrExpired):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or expired token"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Server error"})
		}

		return c.JSON(http.StatusOK, echo.Map{"message": "Password reset successfully"})
	}
}

// checkUserHandler returns the authenticated user's identity from the
// session credential, without a store lookup.
func checkUserHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		claims := middleware.GetClaims(c)
		if claims == nil {
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No token provided"})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"user": echo.Map{
				"id":    claims.ID,
				"email": claims.Email,
				"role":  claims.Role,
			},
		})
	}
}

func registerAuthRoutes(g *echo.Group, authSvc *services.AuthService, jwtm *middleware.JWT, secureCookies bool) {
	auth := g.Group("/auth")

	// public
	auth.POST("/register", registerHandler(authSvc))
	auth.POST("/login", loginHandler(authSvc, jwtm, secureCookies))
	auth.POST("/logout", logoutHandler(secureCookies))
	auth.POST("/forgot-password", forgotPasswordHandler(authSvc))
	auth.POST("/reset-password", resetPasswordHandler(authSvc))
	auth.GET("/verify-email", verifyEmailHandler(authSvc))
	auth.POST("/verify-email", verifyEmailHandler(authSvc))
	auth.POST("/sendcode", sendCodeHandler(authSvc))
	auth.POST("/check-user", checkAvailabilityHandler(authSvc))

	// authenticated
	protected := auth.Group("")
	protected.Use(jwtm.Middleware())
	protected.GET("/check-user", checkUserHandler())
}
