package validator

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// trans is the singleton English translator for validation errors.
	trans ut.Translator

	// structValidate validates plain structs (templates) via `validate` tags.
	structValidate *govalidator.Validate
	structTrans    ut.Translator
	structOnce     sync.Once
)

// Setup registers the validator with English translations on Gin's binding engine.
// Call once during application startup.
func Setup() {
	if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		trans = configure(v)
	}
}

// configure makes v report JSON field names and registers English translations.
func configure(v *govalidator.Validate) ut.Translator {
	v.RegisterTagNameFunc(jsonTagName)

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	t, _ := uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v, t)
	return t
}

func jsonTagName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func structValidator() *govalidator.Validate {
	structOnce.Do(func() {
		structValidate = govalidator.New(govalidator.WithRequiredStructEnabled())
		structTrans = configure(structValidate)
	})
	return structValidate
}

// Struct validates v against its `validate` tags and returns a map of
// namespaced field path → human-readable message, or nil when v is valid.
// Paths use JSON names, e.g. "sections[0].questions[1].points".
func Struct(v interface{}) map[string]string {
	err := structValidator().Struct(v)
	if err == nil {
		return nil
	}

	var ve govalidator.ValidationErrors
	if !errors.As(err, &ve) {
		return map[string]string{"detail": err.Error()}
	}

	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[trimRoot(fe.Namespace())] = fe.Translate(structTrans)
	}
	return fields
}

// trimRoot drops the leading struct type name from a validator namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func translate(fe govalidator.FieldError) string {
	if trans == nil {
		return fe.Error()
	}
	return fe.Translate(trans)
}

// TranslateErrors takes a binding/validation error and returns a map of
// field name → human-readable error message. If the error is not a
// validation error, it returns a single-key map with "detail".
func TranslateErrors(err error) map[string]string {
	fields := make(map[string]string)

	var ve govalidator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			fields[fe.Field()] = translate(fe)
		}
		return fields
	}

	// Not a validation error (e.g., JSON syntax error).
	fields["detail"] = err.Error()
	return fields
}

// Bind binds and validates the request body into dst.
// Returns nil on success or a translated field error map on failure.
func Bind(c *gin.Context, dst interface{}) map[string]string {
	if err := c.ShouldBindJSON(dst); err != nil {
		return TranslateErrors(err)
	}
	return nil
}
