package customvalidator

import (
	"reflect"
	"regexp"
	"slices"
	"time"

	"github.com/aarondl/null/v8"
	"github.com/go-playground/validator/v10"

	"paper-system/internal/entities"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)

// RegisterCustomValidations регистрирует доменные правила в экземпляре валидатора.
func RegisterCustomValidations(v *validator.Validate) error {
	rules := map[string]validator.Func{
		"paper_type":           oneOf(entities.PaperTypeJournal, entities.PaperTypeConference, entities.PaperTypeDegree),
		"paper_status_initial": oneOf(entities.PaperStatusDraft, entities.PaperStatusPending),
		"audit_status":         oneOf(entities.PaperStatusApproved, entities.PaperStatusRejected),
		"role":                 oneOf("admin", "manager", "secretary", "user"),
		"user_status":          oneOf(entities.UserStatusActive, entities.UserStatusInactive),
		"notification_type":    oneOf(entities.NotificationTypeSystem, entities.NotificationTypeAnnouncement, entities.NotificationTypeReminder),
		"notification_status":  oneOf(entities.NotificationStatusDraft, entities.NotificationStatusPublished),
		"publish_year":         isPublishYear,
		"username":             isUsername,
	}
	registerNullTypes(v)
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return err
		}
	}
	return nil
}

// oneOf - пустое значение пропускается, обязательность задаётся тегом required.
func oneOf(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || slices.Contains(allowed, s)
	}
}

// isPublishYear - от 1900 до следующего года включительно.
func isPublishYear(fl validator.FieldLevel) bool {
	year := fl.Field().Int()
	if year == 0 {
		return true
	}
	return year >= 1900 && year <= int64(time.Now().Year()+1)
}

func isUsername(fl validator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// registerNullTypes - валидатор проверяет значение внутри null.*; невалидное значение отдаётся как nil для omitempty.
func registerNullTypes(v *validator.Validate) {
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		switch val := field.Interface().(type) {
		case null.String:
			if val.Valid {
				return val.String
			}
		case null.Int:
			if val.Valid {
				return val.Int
			}
		case null.Uint64:
			if val.Valid {
				return val.Uint64
			}
		case null.Time:
			if val.Valid {
				return val.Time
			}
		}
		return nil
	}, null.String{}, null.Int{}, null.Uint64{}, null.Time{})
}
