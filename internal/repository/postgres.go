// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/kopama/enrollment-system/internal/model"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrEnrollmentExists возвращается, если PESEL уже записан на эту категорию курса.
var (
	ErrEnrollmentExists = errors.New("enrollment already exists")
	// ErrCategoryNotFound возвращается, если категория курса не найдена.
	ErrCategoryNotFound = errors.New("course category not found")
	// ErrEnrollmentNotFound возвращается, если запись не найдена.
	ErrEnrollmentNotFound = errors.New("enrollment not found")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Ретраим только сериализационные конфликты, дедлоки и сетевые сбои.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// GetCourseCategories возвращает список категорий курсов.
func (r *PostgresRepository) GetCourseCategories(ctx context.Context) ([]model.CourseCategory, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, code, name FROM course_categories ORDER BY code`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []model.CourseCategory
	for rows.Next() {
		var c model.CourseCategory
		if err := rows.Scan(&c.ID, &c.Code, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return categories, nil
}

// GetCourseCategoryByID возвращает категорию курса по идентификатору.
func (r *PostgresRepository) GetCourseCategoryByID(ctx context.Context, id string) (*model.CourseCategory, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, code, name FROM course_categories WHERE id = $1`,
		id,
	)

	var c model.CourseCategory
	if err := row.Scan(&c.ID, &c.Code, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCategoryNotFound
		}
		// Строка, не являющаяся UUID, тоже означает несуществующую категорию.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.InvalidTextRepresentation {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("get category: %w", err)
	}

	return &c, nil
}

// GetOffers возвращает активные позиции прайс-листа вместе с ценовыми правилами.
func (r *PostgresRepository) GetOffers(ctx context.Context) ([]model.OfferItem, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT o.id, o.code, o.name, o.type, o.unit, o.is_active, o.course_category_id,
		        p.customer_type, p.price_grosze, p.currency, p.valid_from, p.valid_to
		 FROM offer_items o
		 JOIN price_rules p ON p.offer_item_id = o.id
		 WHERE o.is_active
		 ORDER BY o.code, p.customer_type`,
	)
	if err != nil {
		return nil, fmt.Errorf("select offers: %w", err)
	}
	defer rows.Close()

	var offers []model.OfferItem
	for rows.Next() {
		var (
			item  model.OfferItem
			price model.PriceRule
		)
		if err := rows.Scan(
			&item.ID, &item.Code, &item.Name, &item.Type, &item.Unit,
			&item.IsActive, &item.CourseCategoryID,
			&price.CustomerType, &price.PriceGrosze, &price.Currency,
			&price.ValidFrom, &price.ValidTo,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}

		if len(offers) == 0 || offers[len(offers)-1].ID != item.ID {
			offers = append(offers, item)
		}
		last := &offers[len(offers)-1]
		last.Prices = append(last.Prices, price)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return offers, nil
}

// CreateEnrollment сохраняет нормализованную анкету и возвращает созданную запись.
func (r *PostgresRepository) CreateEnrollment(ctx context.Context, app model.NormalizedApplication) (*model.Enrollment, error) {
	enr := &model.Enrollment{
		ID:          uuid.NewString(),
		Application: app,
		Status:      model.EnrollmentStatusNew,
	}

	err := r.withRetry(ctx, func() error {
		return r.pool.QueryRow(ctx,
			`INSERT INTO enrollments (
			    id, first_name, last_name, email, phone, pesel, birth_date,
			    address_line1, address_line2, city, postal_code,
			    course_category_id, accepted_terms, accepted_privacy, status
			 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 RETURNING created_at`,
			enr.ID, app.FirstName, app.LastName, app.Email, app.Phone,
			app.Pesel, app.BirthDate, app.AddressLine1, app.AddressLine2,
			app.City, app.PostalCode, app.CourseCategoryID,
			app.AcceptedTerms, app.AcceptedPrivacy, string(enr.Status),
		).Scan(&enr.CreatedAt)
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case pgerrcode.UniqueViolation:
				return nil, fmt.Errorf("%w: pesel %s", ErrEnrollmentExists, app.Pesel)
			case pgerrcode.ForeignKeyViolation, pgerrcode.InvalidTextRepresentation:
				return nil, ErrCategoryNotFound
			}
		}
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	return enr, nil
}

// GetEnrollmentsForExport возвращает записи, ещё не переданные во внешнюю CRM.
func (r *PostgresRepository) GetEnrollmentsForExport(ctx context.Context, limit int) ([]model.Enrollment, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, first_name, last_name, email, phone, pesel, birth_date,
		        address_line1, address_line2, city, postal_code,
		        course_category_id, accepted_terms, accepted_privacy,
		        status, created_at
		 FROM enrollments
		 WHERE status = $1
		 ORDER BY created_at
		 LIMIT $2`,
		string(model.EnrollmentStatusNew), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("select enrollments for export: %w", err)
	}
	defer rows.Close()

	var res []model.Enrollment
	for rows.Next() {
		var (
			enr    model.Enrollment
			status string
		)
		if err := rows.Scan(
			&enr.ID,
			&enr.Application.FirstName, &enr.Application.LastName,
			&enr.Application.Email, &enr.Application.Phone,
			&enr.Application.Pesel, &enr.Application.BirthDate,
			&enr.Application.AddressLine1, &enr.Application.AddressLine2,
			&enr.Application.City, &enr.Application.PostalCode,
			&enr.Application.CourseCategoryID,
			&enr.Application.AcceptedTerms, &enr.Application.AcceptedPrivacy,
			&status, &enr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan enrollment: %w", err)
		}
		enr.Status = model.EnrollmentStatus(status)
		res = append(res, enr)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// MarkEnrollmentExported помечает запись как переданную во внешнюю CRM.
func (r *PostgresRepository) MarkEnrollmentExported(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE enrollments SET status = $2 WHERE id = $1`,
		id, string(model.EnrollmentStatusExported),
	)
	if err != nil {
		return fmt.Errorf("update enrollment: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return ErrEnrollmentNotFound
	}

	return nil
}
