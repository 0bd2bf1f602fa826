package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/SahinShazi/HealthSync/internal/form"
	"github.com/SahinShazi/HealthSync/internal/notify"
	"github.com/SahinShazi/HealthSync/internal/validate"
)

const msgFixFields = "Please correct the highlighted fields"

type checkRequest struct {
	Value  string   `json:"value"`
	Values []string `json:"values"`
}

type vitalsError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

// PostValidate runs one named validator, for inline checks as the visitor
// types.
func PostValidate(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		kind := c.Param("kind")
		var req checkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		values := req.Values
		if len(values) == 0 {
			values = []string{req.Value}
		}

		ok, err := validate.Check(kind, values, time.Now())
		if errors.Is(err, validate.ErrUnknownKind) {
			HandleError(c, app.Logger(), err, 404, "Unknown validator")
			return
		}
		if err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid input")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"kind": kind, "valid": ok}, nil)
	}
}

// PostValidateVitals checks a manually entered set of vital signs with the
// registered struct tags.
func PostValidateVitals(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		var reading validate.VitalsReading
		if err := c.ShouldBindJSON(&reading); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		problems := []vitalsError{}
		if err := app.Validator().Struct(reading); err != nil {
			var verrs validator.ValidationErrors
			if !errors.As(err, &verrs) {
				HandleError(c, app.Logger(), err, 500, "Validation failed")
				return
			}
			for _, fe := range verrs {
				problems = append(problems, vitalsError{Field: fe.Field(), Rule: fe.Tag()})
			}
		}
		HandleSuccess(c, app.Logger(), gin.H{"valid": len(problems) == 0, "errors": problems}, nil)
	}
}

// PostForm is the generic required-fields check every site form runs on
// submit.
func PostForm(app App) gin.HandlerFunc {
	controller := form.NewController(app.Center(), nil)
	return func(c *gin.Context) {
		var f form.Form
		if err := c.ShouldBindJSON(&f); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}

		scope := sessionID(c)
		res := controller.Validate(c.Request.Context(), scope, f)
		if !res.Valid {
			HandleInvalid(c, app.Logger(), res, msgFixFields)
			return
		}
		app.Center().Notify(scope, form.MsgSubmitted, notify.KindSuccess, 0)
		HandleStatus(c, app.Logger(), http.StatusOK, res, nil)
	}
}
