package adminController

import (
	"log"

	"examly/config"
	"examly/database"
	"examly/middleware"
	"examly/models"
	examModels "examly/models/exam"
	"examly/utils"
	adminValidator "examly/validators/admin"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Dashboard returns platform-wide counters for the admin landing page,
// optionally scoped to one tenant.
func Dashboard(c *fiber.Ctx) error {
	db := database.Database.Db

	scoped := func(q *gorm.DB) *gorm.DB {
		if tenantID := c.QueryInt("tenant_id"); tenantID > 0 {
			return q.Where("tenant_id = ?", tenantID)
		}
		return q
	}

	var tenants, users, exams, attempts, openAttempts int64
	db.Model(&models.Tenant{}).Count(&tenants)
	scoped(db.Model(&models.User{}).Where("is_deleted = ?", false)).Count(&users)
	scoped(db.Model(&examModels.Exam{}).Where("is_deleted = ?", false)).Count(&exams)
	scoped(db.Model(&examModels.Attempt{})).Count(&attempts)
	scoped(db.Model(&examModels.Attempt{}).Where("submitted_at IS NULL")).Count(&openAttempts)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully.", fiber.Map{
		"tenants":       tenants,
		"users":         users,
		"exams":         exams,
		"attempts":      attempts,
		"open_attempts": openAttempts,
	})
}

func ListTenants(c *fiber.Ctx) error {
	db := database.Database.Db

	var tenants []models.Tenant
	if err := db.Order("id asc").Find(&tenants).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch tenants!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tenants fetched successfully.", tenants)
}

func CreateTenant(c *fiber.Ctx) error {
	reqData := c.Locals("validatedTenant").(*adminValidator.CreateTenantPayload)

	db := database.Database.Db

	if err := db.Where("slug = ?", reqData.Slug).First(&models.Tenant{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A tenant with this slug already exists!", nil)
	}

	tenant := models.Tenant{Name: reqData.Name, Slug: reqData.Slug}
	if err := db.Create(&tenant).Error; err != nil {
		log.Printf("Error creating tenant: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create tenant!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Tenant created successfully.", tenant)
}

func ListUsers(c *fiber.Ctx) error {
	db := database.Database.Db

	query := db.Where("is_deleted = ?", false)
	if tenantID := c.QueryInt("tenant_id"); tenantID > 0 {
		query = query.Where("tenant_id = ?", tenantID)
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("id asc").Find(&users).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch users!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully.", users)
}

// instructorBindingError validates that a student's instructor exists in the
// same tenant with the instructor role. Returns "" when the binding is fine.
func instructorBindingError(reqData *adminValidator.UserPayload) string {
	if reqData.Role != models.RoleStudent || reqData.InstructorID == nil {
		return ""
	}
	db := database.Database.Db

	var instructor models.User
	if err := db.Where("id = ? AND is_deleted = ?", *reqData.InstructorID, false).First(&instructor).Error; err != nil {
		return "Instructor not found!"
	}
	if instructor.Role != models.RoleInstructor || instructor.TenantID != reqData.TenantID {
		return "Instructor must belong to the same tenant!"
	}
	return ""
}

func CreateUser(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*adminValidator.UserPayload)

	db := database.Database.Db

	if err := db.Where("id = ?", reqData.TenantID).First(&models.Tenant{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Tenant not found!", nil)
	}
	if err := db.Where("username = ?", reqData.Username).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already taken!", nil)
	}
	if msg := instructorBindingError(reqData); msg != "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
	}
	if reqData.Timezone != "" && !utils.IsValidTimezone(reqData.Timezone) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown timezone!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Username:     reqData.Username,
		FullName:     reqData.FullName,
		Email:        reqData.Email,
		Role:         reqData.Role,
		Password:     string(hashedPassword),
		TenantID:     reqData.TenantID,
		InstructorID: reqData.InstructorID,
		Timezone:     reqData.Timezone,
	}
	if newUser.Role != models.RoleStudent {
		newUser.InstructorID = nil
	}

	if err := db.Create(&newUser).Error; err != nil {
		log.Printf("Error creating user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User created successfully.", newUser)
}

func UpdateUser(c *fiber.Ctx) error {
	reqData := c.Locals("validatedUser").(*adminValidator.UserPayload)

	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", c.Params("id"), false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if reqData.Username != user.Username {
		if err := db.Where("username = ? AND id != ?", reqData.Username, user.ID).First(&models.User{}).Error; err == nil {
			return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already taken!", nil)
		}
	}
	if err := db.Where("id = ?", reqData.TenantID).First(&models.Tenant{}).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Tenant not found!", nil)
	}
	if msg := instructorBindingError(reqData); msg != "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, msg, nil)
	}
	if reqData.Timezone != "" && !utils.IsValidTimezone(reqData.Timezone) {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Unknown timezone!", nil)
	}

	user.Username = reqData.Username
	user.FullName = reqData.FullName
	user.Email = reqData.Email
	user.Role = reqData.Role
	user.TenantID = reqData.TenantID
	user.InstructorID = reqData.InstructorID
	user.Timezone = reqData.Timezone
	if user.Role != models.RoleStudent {
		user.InstructorID = nil
	}

	if reqData.Password != "" {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), config.AppConfig.SaltRound)
		if err != nil {
			log.Printf("Error hashing password: %v", err)
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
		}
		user.Password = string(hashedPassword)
	}

	if err := db.Save(&user).Error; err != nil {
		log.Printf("Error updating user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully.", user)
}

// DeleteUser soft-deletes; the account disappears from login and listings
// while its attempts and logs stay intact.
func DeleteUser(c *fiber.Ctx) error {
	admin := middleware.CurrentUser(c)

	db := database.Database.Db

	var user models.User
	if err := db.Where("id = ? AND is_deleted = ?", c.Params("id"), false).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if admin != nil && admin.ID == user.ID {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "You cannot delete your own account!", nil)
	}

	if err := db.Model(&user).Update("is_deleted", true).Error; err != nil {
		log.Printf("Error deleting user: %v", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to delete user!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User deleted successfully.", nil)
}
