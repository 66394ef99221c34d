package settingsValidator

import (
	"examly/middleware"
	"examly/utils"
	"strings"

	"github.com/gofiber/fiber/v2"
)

type TimezonePayload struct {
	Timezone string `json:"timezone"`
}

func UpdateTimezone() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(TimezonePayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Timezone = strings.TrimSpace(reqData.Timezone)
		if reqData.Timezone != "" && !utils.IsValidTimezone(reqData.Timezone) {
			return middleware.ValidationErrorResponse(c, map[string]string{"timezone": "Unknown timezone!"})
		}

		c.Locals("validatedTimezone", reqData)
		return c.Next()
	}
}

type ChangePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func ChangePassword() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ChangePasswordPayload)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)
		if reqData.NewPassword == "" {
			errors["new_password"] = "New password is required!"
		}
		if reqData.ConfirmPassword == "" || reqData.NewPassword != reqData.ConfirmPassword {
			errors["confirm_password"] = "Passwords do not match!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedPassword", reqData)
		return c.Next()
	}
}
