// Package handler содержит HTTP-обработчики API сервиса записи на курсы.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/kopama/enrollment-system/internal/form"
	"github.com/kopama/enrollment-system/internal/intake"
	"github.com/kopama/enrollment-system/internal/model"
	"github.com/kopama/enrollment-system/internal/repository"
)

// Service определяет контракт бизнес-логики, используемой HTTP-обработчиками.
type Service interface {
	CreateEnrollment(ctx context.Context, app model.NormalizedApplication) (*model.Enrollment, error)
	GetCourseCategories(ctx context.Context) ([]model.CourseCategory, error)
	GetOffers(ctx context.Context) ([]model.OfferItem, error)
}

// Handler реализует HTTP-обработчики API сервиса записи на курсы.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler создаёт новый экземпляр обработчика HTTP-запросов.
func NewHandler(s Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: s,
		logger:  logger,
	}
}

type errorsResponse struct {
	Errors form.Errors `json:"errors"`
}

type enrollmentResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// CreateEnrollment принимает анкету записи на курс. Анкета прогоняется через
// конвейер валидации целиком: либо сохраняется нормализованная запись, либо
// клиенту возвращается список ошибок по полям.
func (h *Handler) CreateEnrollment(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	app, fieldErrs := intake.Process(raw)
	if len(fieldErrs) > 0 {
		h.writeFieldErrors(w, fieldErrs)
		return
	}

	// Конвейер проверяет только тип флагов согласий; решение о том, что без
	// обоих согласий запись не сохраняется, принимается здесь.
	var consentErrs form.Errors
	if !app.AcceptedTerms {
		consentErrs = append(consentErrs, form.FieldError{Field: "acceptedTerms", Message: "wymagana akceptacja regulaminu"})
	}
	if !app.AcceptedPrivacy {
		consentErrs = append(consentErrs, form.FieldError{Field: "acceptedPrivacy", Message: "wymagana akceptacja polityki prywatności"})
	}
	if len(consentErrs) > 0 {
		h.writeFieldErrors(w, consentErrs)
		return
	}

	enr, err := h.service.CreateEnrollment(r.Context(), *app)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			h.writeFieldErrors(w, form.Errors{{Field: "courseCategoryId", Message: "nie znaleziono kategorii kursu"}})
			return
		}
		if errors.Is(err, repository.ErrEnrollmentExists) {
			http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
			return
		}
		h.logger.Error("create enrollment error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(enrollmentResponse{
		ID:        enr.ID,
		Status:    string(enr.Status),
		CreatedAt: enr.CreatedAt.Format(time.RFC3339),
	}); err != nil {
		h.logger.Error("encode enrollment response", zap.Error(err))
	}
}

func (h *Handler) writeFieldErrors(w http.ResponseWriter, errs form.Errors) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnprocessableEntity)
	if err := json.NewEncoder(w).Encode(errorsResponse{Errors: errs}); err != nil {
		h.logger.Error("encode field errors", zap.Error(err))
	}
}

// GetCourseCategories возвращает список категорий курсов.
func (h *Handler) GetCourseCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.GetCourseCategories(r.Context())
	if err != nil {
		h.logger.Error("get course categories error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if categories == nil {
		categories = []model.CourseCategory{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(categories); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

type priceResponse struct {
	CustomerType string `json:"customer_type"`
	Price        string `json:"price"`
	Currency     string `json:"currency"`
}

type offerResponse struct {
	ID               string          `json:"id"`
	Code             string          `json:"code"`
	Name             string          `json:"name"`
	Type             string          `json:"type"`
	Unit             string          `json:"unit"`
	CourseCategoryID *string         `json:"course_category_id,omitempty"`
	Prices           []priceResponse `json:"prices"`
}

// GetOffers возвращает активные позиции прайс-листа с ценами.
func (h *Handler) GetOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.service.GetOffers(r.Context())
	if err != nil {
		h.logger.Error("get offers error", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	resp := make([]offerResponse, 0, len(offers))
	for _, o := range offers {
		prices := make([]priceResponse, 0, len(o.Prices))
		for _, p := range o.Prices {
			prices = append(prices, priceResponse{
				CustomerType: p.CustomerType,
				Price:        formatGrosze(p.PriceGrosze),
				Currency:     p.Currency,
			})
		}
		resp = append(resp, offerResponse{
			ID:               o.ID,
			Code:             o.Code,
			Name:             o.Name,
			Type:             string(o.Type),
			Unit:             string(o.Unit),
			CourseCategoryID: o.CourseCategoryID,
			Prices:           prices,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
}

func formatGrosze(grosze int64) string {
	return fmt.Sprintf("%d.%02d", grosze/100, grosze%100)
}
