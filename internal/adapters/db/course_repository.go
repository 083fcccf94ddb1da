// internal/adapters/db/course_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/ammerola/cultureconnect-be/internal/core/domain"
	"github.com/ammerola/cultureconnect-be/internal/core/ports"
)

var courseColumns = []string{
	"id", "title", "instructor", "description", "category", "level", "language",
	"price::text", "rating", "review_count", "enrolled_count", "duration_hours::text",
	"syllabus_key", "created_at", "updated_at",
}

// CourseRepository implements ports.CourseRepository
type CourseRepository struct {
	db     ports.Querier
	logger *slog.Logger
}

var _ ports.CourseRepository = (*CourseRepository)(nil)

// NewCourseRepository creates a new course repository
func NewCourseRepository(db ports.Querier, logger *slog.Logger) *CourseRepository {
	return &CourseRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "course")),
	}
}

// FindByID returns one course
func (r *CourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Course, error) {
	query, args, err := psql.Select(courseColumns...).
		From("courses").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	c, err := scanCourse(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

// FindAll returns the whole course catalog, newest first
func (r *CourseRepository) FindAll(ctx context.Context) ([]domain.Course, error) {
	query, args, err := psql.Select(courseColumns...).
		From("courses").
		OrderBy("created_at DESC", "id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	courses, err := scanAll(rows, func(rows pgx.Rows) (domain.Course, error) {
		return scanCourse(rows)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan courses: %w", err)
	}
	return courses, nil
}

// UpsertBatch inserts or refreshes courses by ID in one transaction
func (r *CourseRepository) UpsertBatch(ctx context.Context, courses []domain.Course) (int, error) {
	if len(courses) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO courses (
			id, title, instructor, description, category, level, language,
			price, enrolled_count, duration_hours, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			instructor = EXCLUDED.instructor,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			level = EXCLUDED.level,
			language = EXCLUDED.language,
			price = EXCLUDED.price,
			enrolled_count = EXCLUDED.enrolled_count,
			duration_hours = EXCLUDED.duration_hours,
			updated_at = EXCLUDED.updated_at`

	err := withTx(ctx, r.db, func(tx pgx.Tx) error {
		for i := range courses {
			c := &courses[i]
			if _, err := tx.Exec(ctx, query,
				c.ID, c.Title, c.Instructor, c.Description, c.Category, string(c.Level), c.Language,
				c.Price.String(), c.EnrolledCount, c.DurationHours.String(), c.CreatedAt, c.UpdatedAt,
			); err != nil {
				return fmt.Errorf("upsert course %q: %w", c.Title, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	r.logger.InfoContext(ctx, "courses upserted", slog.Int("count", len(courses)))
	return len(courses), nil
}

// UpdateSyllabus attaches a syllabus document. The description is only
// filled when the course has none.
func (r *CourseRepository) UpdateSyllabus(ctx context.Context, id uuid.UUID, key, description string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE courses
		SET syllabus_key = $2,
		    description = CASE WHEN description = '' THEN $3 ELSE description END,
		    updated_at = now()
		WHERE id = $1`, id, key, description)
	if err != nil {
		return fmt.Errorf("failed to update syllabus: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("course %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func scanCourse(row pgx.Row) (domain.Course, error) {
	var (
		c                      domain.Course
		level, price, duration string
	)
	err := row.Scan(
		&c.ID, &c.Title, &c.Instructor, &c.Description, &c.Category, &level, &c.Language,
		&price, &c.Rating, &c.ReviewCount, &c.EnrolledCount, &duration,
		&c.SyllabusKey, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return domain.Course{}, err
	}
	c.Level = domain.CourseLevel(level)
	c.Price = domain.ParseAmount(price)
	c.DurationHours = domain.ParseAmount(duration)
	return c, nil
}
