package badge

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazoezi/core"
)

var (
	reqTypeTag  = "reqtype"
	reqTypeText = "invalid requirement type"
)

// InitValidators registers the badge package's custom validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(reqTypeTag, reqTypeValidation)
	core.RegisterCustomTranslation(validate, translator, reqTypeTag, reqTypeText)
}

func reqTypeValidation(fl validator.FieldLevel) bool {
	return RequirementType(fl.Field().String()).Valid()
}
