package main

import (
	"errors"
	"net/http"

	"github.com/clementdevtech/general-hardware/internal/services"

	"github.com/labstack/echo/v4"
)

type verifyEmailRequest struct {
	Token string `json:"token"`
	Email string `json:"email"`
	Code  string `json:"code"`
}

// verifyEmailHandler accepts the token via JSON body (POST) or query
// string (GET, for the link in the email). The optional 6-digit code is
// an extra equality constraint on the same record, never a bypass.
func verifyEmailHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(verifyEmailRequest)
		if c.Request().Method == http.MethodGet {
			req.Token = c.QueryParam("token")
			req.Email = c.QueryParam("email")
			req.Code = c.QueryParam("code")
		} else if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		user, err := authSvc.VerifyEmail(c.Request().Context(), req.Email, req.Token, req.Code)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Token and email are required"})
			case errors.Is(err, services.ErrInvalidOrExpired):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid or expired verification link"})
			case errors.Is(err, services.ErrNoPendingUser):
				return c.JSON(http.StatusNotFound, echo.Map{"message": "No pending user found"})
			case errors.Is(err, services.ErrAlreadyExists):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email or Username already exists"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"message": "Email verified successfully",
			"user": echo.Map{
				"email":    user.Email,
				"username": user.Username,
			},
		})
	}
}

func sendCodeHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(emailRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		if err := authSvc.SendVerificationCode(c.Request().Context(), req.Email); err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email is required"})
			case errors.Is(err, services.ErrNoPendingUser):
				return c.JSON(http.StatusNotFound, echo.Map{"message": "No pending user found"})
			case errors.Is(err, services.ErrThrottled):
				return c.JSON(http.StatusTooManyRequests, echo.Map{"message": "Please wait before requesting another code"})
			case errors.Is(err, services.ErrEmailSend):
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email failed to send"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "Verification code sent",
		})
	}
}

type checkAvailabilityRequest struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// checkAvailabilityHandler is the pre-registration existence probe.
func checkAvailabilityHandler(authSvc *services.AuthService) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := new(checkAvailabilityRequest)
		if err := c.Bind(req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request"})
		}

		av, err := authSvc.CheckAvailability(c.Request().Context(), req.Email, req.Name)
		if err != nil {
			if errors.Is(err, services.ErrMissingFields) {
				return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and username are required"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
		}

		switch {
		case av.EmailTaken && av.UsernameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email and Username already exist"})
		case av.EmailTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "Email already exists"})
		case av.UsernameTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "Username already exists"})
		}

		return c.JSON(http.StatusOK, echo.Map{"exists": false})
	}
}
