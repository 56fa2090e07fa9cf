package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
)

// All responses share the {success, message, ...} envelope. These helpers
// cover the common failure shapes; handlers add data fields on success.

func CreateError(statusCode int, message string, ctx iris.Context) {
	ctx.StatusCode(statusCode)
	ctx.JSON(iris.Map{"success": false, "message": message})
}

func CreateNotFound(ctx iris.Context, what string) {
	CreateError(iris.StatusNotFound, what+" not found", ctx)
}

func CreateForbidden(ctx iris.Context) {
	CreateError(iris.StatusForbidden, "Not authorized", ctx)
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Server error", ctx)
}

// HandleValidationErrors translates ReadJSON/validator failures into a 400
// envelope listing the offending fields.
func HandleValidationErrors(err error, ctx iris.Context) {
	if errs, ok := err.(validator.ValidationErrors); ok {
		fields := make([]iris.Map, 0, len(errs))
		for _, fieldErr := range errs {
			fields = append(fields, iris.Map{
				"field": fieldErr.Field(),
				"tag":   fieldErr.Tag(),
			})
		}
		ctx.StatusCode(iris.StatusBadRequest)
		ctx.JSON(iris.Map{
			"success": false,
			"message": "All required fields must be provided",
			"fields":  fields,
		})
		return
	}

	CreateError(iris.StatusBadRequest, "Invalid request body", ctx)
}
