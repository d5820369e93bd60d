package utils

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().
		Title(title).
		Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(
		iris.StatusInternalServerError,
		"Internal Server Error",
		"An unexpected error occurred.", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(
		iris.StatusNotFound,
		"Not Found",
		"Resource not found.", ctx)
}

func CreateAccountConflict(ctx iris.Context) {
	CreateError(
		iris.StatusConflict,
		"Conflict",
		"Username or email is already registered.", ctx)
}

// HandleValidationErrors turns binding/validator failures into a 400 problem
// carrying a per-field error map.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		ctx.StopWithProblem(iris.StatusBadRequest, iris.NewProblem().
			Title("Validation error").
			Detail("One or more fields failed validation.").
			Key("errors", wrapValidationErrors(errs)))
		return
	}

	CreateError(iris.StatusBadRequest, "Bad Request", err.Error(), ctx)
}

// CreateFieldError reports a single-field validation failure, e.g. an
// unresolvable reference id.
func CreateFieldError(ctx iris.Context, field string, message string) {
	ctx.StopWithProblem(iris.StatusBadRequest, iris.NewProblem().
		Title("Validation error").
		Detail(message).
		Key("errors", map[string]string{field: message}))
}

func wrapValidationErrors(errs validator.ValidationErrors) map[string]string {
	validationErrors := make(map[string]string, len(errs))
	for _, validationErr := range errs {
		field := strings.ToLower(validationErr.Field()[:1]) + validationErr.Field()[1:]
		validationErrors[field] = "failed on '" + validationErr.ActualTag() + "' validation"
	}
	return validationErrors
}
