package attemptValidator

import (
	"examly/middleware"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// Navigation actions a student may request when answering.
const (
	ActionNext     = "next"
	ActionPrevious = "previous"
	ActionReview   = "review"
)

type AnswerPayload struct {
	SelectedChoiceIDs []uint `json:"selected_choice_ids"`
	Action            string `json:"action" validate:"omitempty,oneof=next previous review"`
}

func AnswerQuestion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(AnswerPayload)

		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.Action == "" {
			reqData.Action = ActionNext
		}

		if err := validate.Struct(reqData); err != nil {
			return middleware.ValidationErrorResponse(c, map[string]string{
				"action": "Action must be next, previous, or review!",
			})
		}

		c.Locals("validatedAnswer", reqData)
		return c.Next()
	}
}
