package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/kopama/enrollment-system/internal/crm"
	"github.com/kopama/enrollment-system/internal/model"
	"github.com/kopama/enrollment-system/internal/repository"
)

type stubRepo struct {
	category    *model.CourseCategory
	categoryErr error

	createdEnrollment *model.Enrollment
	createErr         error
	createCalled      bool

	forExport []model.Enrollment
	exported  []string
}

func (s *stubRepo) Close() error { return nil }

func (s *stubRepo) GetCourseCategories(ctx context.Context) ([]model.CourseCategory, error) {
	return nil, nil
}

func (s *stubRepo) GetCourseCategoryByID(ctx context.Context, id string) (*model.CourseCategory, error) {
	return s.category, s.categoryErr
}

func (s *stubRepo) GetOffers(ctx context.Context) ([]model.OfferItem, error) {
	return nil, nil
}

func (s *stubRepo) CreateEnrollment(ctx context.Context, app model.NormalizedApplication) (*model.Enrollment, error) {
	s.createCalled = true
	return s.createdEnrollment, s.createErr
}

func (s *stubRepo) GetEnrollmentsForExport(ctx context.Context, limit int) ([]model.Enrollment, error) {
	return s.forExport, nil
}

func (s *stubRepo) MarkEnrollmentExported(ctx context.Context, id string) error {
	s.exported = append(s.exported, id)
	return nil
}

func testApplication() model.NormalizedApplication {
	return model.NormalizedApplication{
		FirstName:        "Jan",
		LastName:         "Kowalski",
		Email:            "jan@example.com",
		Phone:            "+48601234567",
		Pesel:            "44101000006",
		BirthDate:        time.Date(1944, time.October, 10, 0, 0, 0, 0, time.UTC),
		AddressLine1:     "ul. Długa 5/7",
		City:             "Warszawa",
		PostalCode:       "00-950",
		CourseCategoryID: "cat-b",
		AcceptedTerms:    true,
		AcceptedPrivacy:  true,
	}
}

func TestCreateEnrollment_UnknownCategory(t *testing.T) {
	repo := &stubRepo{
		categoryErr: repository.ErrCategoryNotFound,
	}
	svc := NewService(repo, nil)

	_, err := svc.CreateEnrollment(context.Background(), testApplication())
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		t.Fatalf("expected ErrCategoryNotFound, got %v", err)
	}
	if repo.createCalled {
		t.Fatalf("enrollment must not be created for unknown category")
	}
}

func TestCreateEnrollment_Success(t *testing.T) {
	app := testApplication()
	repo := &stubRepo{
		category: &model.CourseCategory{ID: "cat-b", Code: "B", Name: "Kat. B"},
		createdEnrollment: &model.Enrollment{
			ID:          "enr-1",
			Application: app,
			Status:      model.EnrollmentStatusNew,
		},
	}
	svc := NewService(repo, nil)

	enr, err := svc.CreateEnrollment(context.Background(), app)
	if err != nil {
		t.Fatalf("CreateEnrollment error: %v", err)
	}
	if enr.ID != "enr-1" || enr.Status != model.EnrollmentStatusNew {
		t.Fatalf("unexpected enrollment: %+v", enr)
	}
}

func TestProcessExportBatch_MarksExported(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	repo := &stubRepo{
		forExport: []model.Enrollment{
			{ID: "enr-1", Application: testApplication(), Status: model.EnrollmentStatusNew, CreatedAt: time.Now()},
			{ID: "enr-2", Application: testApplication(), Status: model.EnrollmentStatusNew, CreatedAt: time.Now()},
		},
	}
	svc := NewService(repo, crm.NewClient(ts.URL))

	svc.processExportBatch(context.Background())

	if len(repo.exported) != 2 {
		t.Fatalf("exported = %v, want both enrollments", repo.exported)
	}
}

func TestProcessExportBatch_SkipsOnCRMError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer ts.Close()

	repo := &stubRepo{
		forExport: []model.Enrollment{
			{ID: "enr-1", Application: testApplication(), Status: model.EnrollmentStatusNew, CreatedAt: time.Now()},
		},
	}
	svc := NewService(repo, crm.NewClient(ts.URL))

	svc.processExportBatch(context.Background())

	if len(repo.exported) != 0 {
		t.Fatalf("exported = %v, want none on CRM failure", repo.exported)
	}
}
