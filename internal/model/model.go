// Package model содержит доменные сущности сервиса записи на курсы.
package model

import "time"

// CourseCategory представляет категорию прав, на которую открыт набор.
type CourseCategory struct {
	ID   string `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// OfferType описывает вид позиции прайс-листа автошколы.
type OfferType string

const (
	OfferTypeCourse          OfferType = "COURSE"
	OfferTypeExtraHour       OfferType = "EXTRA_HOUR"
	OfferTypeExamCar         OfferType = "EXAM_CAR"
	OfferTypeTrainingPackage OfferType = "TRAINING_PACKAGE"
	OfferTypeOther           OfferType = "OTHER"
)

// OfferUnit описывает единицу, за которую назначена цена.
type OfferUnit string

const (
	OfferUnitPackage OfferUnit = "PACKAGE"
	OfferUnitHour    OfferUnit = "HOUR"
	OfferUnitService OfferUnit = "SERVICE"
)

// PriceRule описывает цену позиции для конкретного типа клиента.
// Цена хранится в грошах, чтобы не работать с плавающей точкой.
type PriceRule struct {
	CustomerType string
	PriceGrosze  int64
	Currency     string
	ValidFrom    time.Time
	ValidTo      time.Time
}

// OfferItem представляет позицию прайс-листа вместе с её ценовыми правилами.
type OfferItem struct {
	ID               string
	Code             string
	Name             string
	Type             OfferType
	Unit             OfferUnit
	IsActive         bool
	CourseCategoryID *string
	Prices           []PriceRule
}

// NormalizedApplication содержит анкету записи после трансформаций и валидации.
// Все строковые поля обрезаны, телефон приведён к каноническому виду +48XXXXXXXXX.
type NormalizedApplication struct {
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	Pesel            string
	BirthDate        time.Time
	AddressLine1     string
	AddressLine2     string
	City             string
	PostalCode       string
	CourseCategoryID string
	AcceptedTerms    bool
	AcceptedPrivacy  bool
}

// EnrollmentStatus описывает статус обработки записи.
type EnrollmentStatus string

const (
	EnrollmentStatusNew      EnrollmentStatus = "NEW"
	EnrollmentStatusExported EnrollmentStatus = "EXPORTED"
)

// Enrollment описывает сохранённую запись на курс.
type Enrollment struct {
	ID          string
	Application NormalizedApplication
	Status      EnrollmentStatus
	CreatedAt   time.Time
}
