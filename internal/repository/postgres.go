// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mmeshcher/sedol-service/internal/model"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresRepository предоставляет доступ к журналу проверок в PostgreSQL.
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

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		// Ретраим только конфликты сериализации и дедлоки: переподключением
		// при сетевых сбоях занимается сам pgxpool.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		// Если это не pg-ошибка, но сетевая
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
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateValidation сохраняет вердикт проверки в журнале.
func (r *PostgresRepository) CreateValidation(ctx context.Context, v model.Validation) error {
	var sedol, failureKind, failureMessage *string
	if v.Sedol != "" {
		sedol = &v.Sedol
	}
	if v.FailureKind != "" {
		kind := string(v.FailureKind)
		failureKind = &kind
	}
	if v.FailureMessage != "" {
		failureMessage = &v.FailureMessage
	}

	err := r.withRetry(ctx, func() error {
		_, execErr := r.pool.Exec(ctx,
			`INSERT INTO validations (input, sedol, valid, failure_kind, failure_message)
			 VALUES ($1, $2, $3, $4, $5)`,
			v.Input, sedol, v.Valid, failureKind, failureMessage,
		)
		return execErr
	})
	if err != nil {
		return fmt.Errorf("insert validation: %w", err)
	}

	return nil
}

// RecentValidations возвращает последние вердикты, начиная с самого нового.
func (r *PostgresRepository) RecentValidations(ctx context.Context, limit int) ([]model.Validation, error) {
	var res []model.Validation

	err := r.withRetry(ctx, func() error {
		rows, queryErr := r.pool.Query(ctx,
			`SELECT input, sedol, valid, failure_kind, failure_message, created_at
			 FROM validations
			 ORDER BY created_at DESC, id DESC
			 LIMIT $1`,
			limit,
		)
		if queryErr != nil {
			return queryErr
		}
		defer rows.Close()

		res = res[:0]
		for rows.Next() {
			var (
				input          string
				sedol          *string
				valid          bool
				failureKind    *string
				failureMessage *string
				createdAt      time.Time
			)
			if scanErr := rows.Scan(&input, &sedol, &valid, &failureKind, &failureMessage, &createdAt); scanErr != nil {
				return fmt.Errorf("scan validation: %w", scanErr)
			}

			v := model.Validation{
				Input:     input,
				Valid:     valid,
				CreatedAt: createdAt,
			}
			if sedol != nil {
				v.Sedol = *sedol
			}
			if failureKind != nil {
				v.FailureKind = model.FailureKind(*failureKind)
			}
			if failureMessage != nil {
				v.FailureMessage = *failureMessage
			}

			res = append(res, v)
		}

		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("select validations: %w", err)
	}

	return res, nil
}

// DeleteValidationsBefore удаляет вердикты старше указанного момента и
// возвращает количество удалённых записей.
func (r *PostgresRepository) DeleteValidationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	var deleted int64

	err := r.withRetry(ctx, func() error {
		cmdTag, execErr := r.pool.Exec(ctx,
			`DELETE FROM validations WHERE created_at < $1`,
			cutoff,
		)
		if execErr != nil {
			return execErr
		}
		deleted = cmdTag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("delete validations: %w", err)
	}

	return deleted, nil
}
