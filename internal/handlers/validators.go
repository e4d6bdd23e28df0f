package handlers

import (
	"sync"
	"time"

	"delegation-api/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the request tags used by the binding structs:
// taskstatus, isodate (yyyy-MM-dd) and yearmonth (yyyy-MM).
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("taskstatus", func(fl validator.FieldLevel) bool {
			return models.TaskStatus(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("isodate", layoutValidator(models.DateLayout))
		_ = v.RegisterValidation("yearmonth", layoutValidator(models.MonthLayout))
	})
}

func layoutValidator(layout string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, err := time.Parse(layout, fl.Field().String())
		return err == nil
	}
}
