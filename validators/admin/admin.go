package adminValidator

import (
	"examly/middleware"
	"examly/models"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

type CreateTenantPayload struct {
	Name string `json:"name" validate:"required,min=2,max=120"`
	Slug string `json:"slug" validate:"required,min=2,max=80"`
}

func CreateTenant() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CreateTenantPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		reqData.Name = strings.TrimSpace(reqData.Name)
		reqData.Slug = strings.ToLower(strings.TrimSpace(reqData.Slug))

		errors := make(map[string]string)
		if reqData.Name == "" {
			errors["name"] = "Name is required!"
		}
		if reqData.Slug == "" {
			errors["slug"] = "Slug is required!"
		} else if strings.ContainsAny(reqData.Slug, " /\\") {
			errors["slug"] = "Slug must not contain spaces or slashes!"
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedTenant", reqData)
		return c.Next()
	}
}

type UserPayload struct {
	Username        string `json:"username" validate:"required,min=3,max=80"`
	FullName        string `json:"full_name" validate:"max=120"`
	Email           string `json:"email" validate:"omitempty,email"`
	Role            string `json:"role" validate:"omitempty,oneof=admin instructor student"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	TenantID        uint   `json:"tenant_id"`
	InstructorID    *uint  `json:"instructor_id"`
	Timezone        string `json:"timezone"`
}

func validateUserPayload(c *fiber.Ctx, requirePassword bool) (*UserPayload, map[string]string) {
	reqData := new(UserPayload)
	if err := c.BodyParser(reqData); err != nil {
		return nil, map[string]string{"body": "Invalid request body!"}
	}

	reqData.Username = strings.TrimSpace(reqData.Username)
	reqData.FullName = strings.TrimSpace(reqData.FullName)
	reqData.Timezone = strings.TrimSpace(reqData.Timezone)
	if reqData.Role == "" {
		reqData.Role = models.RoleStudent
	}

	errors := make(map[string]string)
	if err := validate.Struct(reqData); err != nil {
		for _, fieldErr := range err.(validator.ValidationErrors) {
			switch fieldErr.Field() {
			case "Username":
				errors["username"] = "Username must be 3 to 80 characters long!"
			case "Email":
				errors["email"] = "Email must be a valid address!"
			case "Role":
				errors["role"] = "Role must be admin, instructor, or student!"
			case "FullName":
				errors["full_name"] = "Full name is too long!"
			}
		}
	}
	if requirePassword && reqData.Password == "" {
		errors["password"] = "Password is required!"
	}
	if reqData.Password != "" && reqData.PasswordConfirm != "" && reqData.Password != reqData.PasswordConfirm {
		errors["password"] = "Passwords do not match!"
	}
	if reqData.TenantID == 0 {
		errors["tenant_id"] = "Tenant is required!"
	}
	return reqData, errors
}

func CreateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := validateUserPayload(c, true)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}

func UpdateUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData, errors := validateUserPayload(c, false)
		if reqData == nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}
		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}
		c.Locals("validatedUser", reqData)
		return c.Next()
	}
}
