// Package intake собирает конвейер валидации анкеты записи на курс.
// Анкета либо целиком принимается в нормализованном виде, либо целиком
// отклоняется со списком ошибок по полям; частичного результата не бывает.
package intake

import (
	"regexp"

	"github.com/kopama/enrollment-system/internal/form"
	"github.com/kopama/enrollment-system/internal/model"
	"github.com/kopama/enrollment-system/internal/validation"
)

var (
	emailPattern      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	polishPhone       = regexp.MustCompile(`^\+48\d{9}$`)
	postalCodePattern = regexp.MustCompile(`^\d{2}-\d{3}$`)
)

// fields объявляет поля анкеты в порядке, в котором ошибки отдаются клиенту.
var fields = []form.Field{
	{
		Name:      "firstName",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.MinLen(2, "musi mieć co najmniej 2 znaki"),
			form.MaxLen(50, "może mieć najwyżej 50 znaków"),
		},
	},
	{
		Name:      "lastName",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.MinLen(2, "musi mieć co najmniej 2 znaki"),
			form.MaxLen(80, "może mieć najwyżej 80 znaków"),
		},
	},
	{
		Name:      "email",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.Match(emailPattern, "musi być poprawnym adresem e-mail"),
			form.MaxLen(254, "może mieć najwyżej 254 znaki"),
		},
	},
	{
		// Нормализатор телефона нестрогий, поэтому дальше стоит жёсткая
		// проверка: принимаются только польские мобильные номера.
		Name:      "phone",
		Transform: func(value any) any { return validation.NormalizePhone(value) },
		Validators: []form.Validator{
			form.Match(polishPhone, "musi być polskim numerem telefonu (+48 i 9 cyfr)"),
		},
	},
	{
		Name:      "pesel",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.Predicate(validation.IsValidPesel, "musi być poprawnym numerem PESEL"),
		},
	},
	{
		Name:      "addressLine1",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.MinLen(3, "musi mieć co najmniej 3 znaki"),
			form.MaxLen(120, "może mieć najwyżej 120 znaków"),
		},
	},
	{
		Name:      "addressLine2",
		Optional:  true,
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.MaxLen(120, "może mieć najwyżej 120 znaków"),
		},
	},
	{
		Name:      "city",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.MinLen(2, "musi mieć co najmniej 2 znaki"),
			form.MaxLen(80, "może mieć najwyżej 80 znaków"),
		},
	},
	{
		Name:      "postalCode",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.Match(postalCodePattern, "musi mieć format 00-000"),
		},
	},
	{
		Name:      "courseCategoryId",
		Transform: form.TrimString,
		Validators: []form.Validator{
			form.Required("jest wymagane"),
			form.MaxLen(40, "może mieć najwyżej 40 znaków"),
		},
	},
	{
		Name: "acceptedTerms",
		Validators: []form.Validator{
			form.IsBool("musi być wartością logiczną"),
		},
	},
	{
		Name: "acceptedPrivacy",
		Validators: []form.Validator{
			form.IsBool("musi być wartością logiczną"),
		},
	},
}

// Process прогоняет сырую анкету через конвейер полей и возвращает либо
// нормализованную анкету, либо список ошибок в порядке объявления полей.
// Значения флагов согласий здесь не проверяются, только их тип: решение о
// том, блокирует ли отказ отправку, принимает транспортный слой.
func Process(app map[string]any) (*model.NormalizedApplication, form.Errors) {
	normalized, errs := form.Process(fields, app)
	if len(errs) > 0 {
		return nil, errs
	}

	pesel := normalized["pesel"].(string)
	birthDate, _ := validation.ValidatePesel(pesel)

	return &model.NormalizedApplication{
		FirstName:        normalized["firstName"].(string),
		LastName:         normalized["lastName"].(string),
		Email:            normalized["email"].(string),
		Phone:            normalized["phone"].(string),
		Pesel:            pesel,
		BirthDate:        birthDate,
		AddressLine1:     normalized["addressLine1"].(string),
		AddressLine2:     normalized["addressLine2"].(string),
		City:             normalized["city"].(string),
		PostalCode:       normalized["postalCode"].(string),
		CourseCategoryID: normalized["courseCategoryId"].(string),
		AcceptedTerms:    normalized["acceptedTerms"].(bool),
		AcceptedPrivacy:  normalized["acceptedPrivacy"].(bool),
	}, nil
}
