package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkovacek/traindiary/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

var ErrTemplateNotFound = errors.New("template not found")

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Add(ctx context.Context, template Template) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	err = r.db.QueryRow(
		ctx,
		`INSERT INTO exercise_templates (name, category, equipment, description)
			VALUES ($1, $2, $3, $4)
		RETURNING id, created_at;`,
		template.Name, template.Category, template.Equipment, template.Description,
	).Scan(&template.ID, &template.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert template: %w", err)
	}

	span.SetAttributes(attribute.Int("template.id", template.ID))

	return &template, nil
}

func (r *Repo) Get(ctx context.Context, id int) (_ *Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	var t Template
	err = r.db.QueryRow(
		ctx,
		`SELECT id, name, category, equipment, description, created_at
			FROM exercise_templates
			WHERE id = $1;`,
		id,
	).Scan(&t.ID, &t.Name, &t.Category, &t.Equipment, &t.Description, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTemplateNotFound
		}
		return nil, err
	}

	return &t, nil
}

// List returns all templates, optionally narrowed to one category.
func (r *Repo) List(ctx context.Context, category string) (_ []Template, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.String("category", category))

	rows, err := r.db.Query(
		ctx,
		`SELECT id, name, category, equipment, description, created_at
			FROM exercise_templates
			WHERE ($1::text = '' OR category = $1)
			ORDER BY name ASC;`,
		category,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	templates := []Template{}
	for rows.Next() {
		var t Template
		if err := rows.Scan(
			&t.ID, &t.Name, &t.Category, &t.Equipment, &t.Description, &t.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("rows scan: %w", err)
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return templates, nil
}

func (r *Repo) Update(ctx context.Context, template Template) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", template.ID))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercise_templates
			SET name = $1, category = $2, equipment = $3, description = $4, updated_at = now()
			WHERE id = $5;`,
		template.Name, template.Category, template.Equipment, template.Description, template.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}

// Delete removes a template. Exercises pointing at it keep their rows,
// the schema nulls the reference.
func (r *Repo) Delete(ctx context.Context, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.templates.delete")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("template.id", id))

	tag, err := r.db.Exec(
		ctx,
		`DELETE FROM exercise_templates WHERE id = $1;`,
		id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTemplateNotFound
	}
	return nil
}
