package settingsController

import (
	"log"

	"examly/config"
	"examly/database"
	"examly/middleware"
	"examly/utils"
	settingsValidator "examly/validators/settings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

// GetSettings returns the user's current settings and the timezone options
// offered by the UI.
func GetSettings(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settings fetched successfully.", fiber.Map{
		"username":         user.Username,
		"full_name":        user.FullName,
		"email":            user.Email,
		"timezone":         user.EffectiveTimezone(),
		"timezone_options": utils.TimezoneOptions,
	})
}

// UpdateTimezone sets the zone used to render every instant for this user.
// Empty resets to UTC.
func UpdateTimezone(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData := c.Locals("validatedTimezone").(*settingsValidator.TimezonePayload)

	if err := database.Database.Db.Model(user).Update("timezone", reqData.Timezone).Error; err != nil {
		log.Printf("Error updating timezone: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update timezone!", nil)
	}
	user.Timezone = reqData.Timezone
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Timezone updated successfully.", fiber.Map{
		"timezone": user.EffectiveTimezone(),
	})
}

// ChangePassword verifies the current password and stores a new hash.
func ChangePassword(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	reqData := c.Locals("validatedPassword").(*settingsValidator.ChangePasswordPayload)

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.CurrentPassword)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Current password is incorrect!", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	if err := database.Database.Db.Model(user).Update("password", string(hashed)).Error; err != nil {
		log.Printf("Error updating password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to change password!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password changed successfully.", nil)
}
