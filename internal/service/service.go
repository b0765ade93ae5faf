// Package service реализует бизнес-логику сервиса записи на курсы.
package service

import (
	"context"
	"time"

	"github.com/kopama/enrollment-system/internal/crm"
	"github.com/kopama/enrollment-system/internal/model"
)

// Repository описывает контракт доступа к данным, используемый сервисом.
type Repository interface {
	Close() error
	GetCourseCategories(ctx context.Context) ([]model.CourseCategory, error)
	GetCourseCategoryByID(ctx context.Context, id string) (*model.CourseCategory, error)
	GetOffers(ctx context.Context) ([]model.OfferItem, error)
	CreateEnrollment(ctx context.Context, app model.NormalizedApplication) (*model.Enrollment, error)
	GetEnrollmentsForExport(ctx context.Context, limit int) ([]model.Enrollment, error)
	MarkEnrollmentExported(ctx context.Context, id string) error
}

// Service содержит бизнес-логику сервиса записи на курсы.
type Service struct {
	repo      Repository
	crmClient *crm.Client
}

// NewService создаёт новый сервис с указанным репозиторием и клиентом CRM.
func NewService(repo Repository, crmClient *crm.Client) *Service {
	return &Service{
		repo:      repo,
		crmClient: crmClient,
	}
}

// Close закрывает ресурсы сервиса.
func (s *Service) Close() error {
	if s.repo != nil {
		return s.repo.Close()
	}
	return nil
}

// CreateEnrollment сохраняет нормализованную анкету. Перед сохранением
// проверяется существование категории курса, на которую ссылается анкета.
func (s *Service) CreateEnrollment(ctx context.Context, app model.NormalizedApplication) (*model.Enrollment, error) {
	if _, err := s.repo.GetCourseCategoryByID(ctx, app.CourseCategoryID); err != nil {
		return nil, err
	}
	return s.repo.CreateEnrollment(ctx, app)
}

// GetCourseCategories возвращает список категорий курсов.
func (s *Service) GetCourseCategories(ctx context.Context) ([]model.CourseCategory, error) {
	return s.repo.GetCourseCategories(ctx)
}

// GetOffers возвращает активные позиции прайс-листа.
func (s *Service) GetOffers(ctx context.Context) ([]model.OfferItem, error) {
	return s.repo.GetOffers(ctx)
}

// StartCRMExport запускает фоновую передачу новых записей во внешнюю CRM.
func (s *Service) StartCRMExport(ctx context.Context) {
	if s.crmClient == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.processExportBatch(ctx)
			}
		}
	}()
}

func (s *Service) processExportBatch(ctx context.Context) {
	enrollments, err := s.repo.GetEnrollmentsForExport(ctx, 100)
	if err != nil {
		return
	}

	for _, enr := range enrollments {
		lead := crm.Lead{
			EnrollmentID:     enr.ID,
			FirstName:        enr.Application.FirstName,
			LastName:         enr.Application.LastName,
			Email:            enr.Application.Email,
			Phone:            enr.Application.Phone,
			City:             enr.Application.City,
			PostalCode:       enr.Application.PostalCode,
			CourseCategoryID: enr.Application.CourseCategoryID,
			CreatedAt:        enr.CreatedAt.Format(time.RFC3339),
		}

		statusCode, retryAfter, err := s.crmClient.ExportLead(ctx, lead)
		if err != nil {
			continue
		}

		if statusCode == 429 {
			if retryAfter > 0 {
				timer := time.NewTimer(retryAfter)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			continue
		}

		_ = s.repo.MarkEnrollmentExported(ctx, enr.ID)
	}
}
