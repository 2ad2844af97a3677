// Package repository is a generic sqlx table gateway. Column lists are read
// once from the `db`, `table` and `column` struct tags of the model.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"crm/infras/otel"
	"crm/infras/postgres"
	"crm/shared/constant"
	"crm/shared/dto"
	"crm/shared/logger"
)

// ErrRequiredFilter is returned when a delete, update or exist call has no
// where clause.
var ErrRequiredFilter = errors.New("required filter")

type column struct {
	name  string
	table string
	alias string
}

func (c column) selectExpr() string {
	if c.alias != "" {
		return fmt.Sprintf("%s.%s AS %s", c.table, c.name, c.alias)
	}

	return c.table + "." + c.name
}

type execer interface {
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

type Repository[T any] struct {
	db            *postgres.Connection
	otel          otel.Otel
	table         string
	entity        string
	primaryColumn string
	columns       []column
	insertColumns []string
	join          string
}

// joiner is implemented by models that read columns from joined tables.
type joiner interface {
	GetJoinQuery() string
}

func NewRepository[T any](entityName, tableName, primaryColumn string, dbConnection *postgres.Connection, otl otel.Otel) Repository[T] {
	var zero T

	columns, insertColumns := getColumns(tableName, reflect.TypeOf(zero))

	var join string
	if j, ok := any(zero).(joiner); ok {
		join = j.GetJoinQuery()
	}

	return Repository[T]{
		db:            dbConnection,
		otel:          otl,
		table:         tableName,
		entity:        entityName,
		primaryColumn: primaryColumn,
		columns:       columns,
		insertColumns: insertColumns,
		join:          join,
	}
}

func (repo *Repository[T]) scope(ctx context.Context, op string) (context.Context, otel.Scope) {
	return repo.otel.NewScope(ctx, constant.OtelRepositoryScopeName,
		fmt.Sprintf("%s.%s.%s", constant.OtelRepositoryScopeName, repo.entity, op))
}

func (repo *Repository[T]) fail(scope otel.Scope, action string, err error) error {
	logger.ErrorWithStack(err)
	scope.TraceError(err)

	return fmt.Errorf("failed to %s (%s): %w", action, repo.entity, err)
}

// read prepares query on the read pool and hands the statement to fn.
func (repo *Repository[T]) read(ctx context.Context, scope otel.Scope, query string, fn func(*sqlx.NamedStmt) error) error {
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	stmt, err := repo.db.Read.PrepareNamedContext(ctx, query)
	if err != nil {
		return repo.fail(scope, "prepare statement", err)
	}
	defer stmt.Close()

	return fn(stmt)
}

func (repo *Repository[T]) insertQuery() string {
	placeholders := make([]string, len(repo.insertColumns))
	for i, col := range repo.insertColumns {
		placeholders[i] = ":" + col
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		repo.table, strings.Join(repo.insertColumns, ", "), strings.Join(placeholders, ", "))
}

func (repo *Repository[T]) insert(ctx context.Context, exec execer, arg any, op string) error {
	ctx, scope := repo.scope(ctx, op)
	defer scope.End()

	query := repo.insertQuery()
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := exec.NamedExecContext(ctx, query, arg); err != nil {
		return repo.fail(scope, "insert data", err)
	}

	return nil
}

func (repo *Repository[T]) Insert(ctx context.Context, model T) error {
	return repo.insert(ctx, repo.db.Write, model, "Insert")
}

func (repo *Repository[T]) InsertTx(ctx context.Context, sqltx *sqlx.Tx, model T) error {
	return repo.insert(ctx, sqltx, model, "InsertTx")
}

// InsertBulk writes models in one multi-row statement.
func (repo *Repository[T]) InsertBulk(ctx context.Context, models []T) error {
	if len(models) == 0 {
		return nil
	}

	return repo.insert(ctx, repo.db.Write, models, "InsertBulk")
}

func (repo *Repository[T]) Exist(ctx context.Context, filter dto.FilterGroup) (exist bool, err error) {
	ctx, scope := repo.scope(ctx, "Exist")
	defer scope.End()

	where, args := repo.where(filter)
	if where == "" {
		return false, ErrRequiredFilter
	}

	query := fmt.Sprintf("SELECT EXISTS(SELECT 1 FROM %s %s)", repo.table, where)

	err = repo.read(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.GetContext(ctx, &exist, args); err != nil {
			return repo.fail(scope, "check exist data", err)
		}

		return nil
	})

	return exist, err
}

// Get returns the first matching row, or the zero T when nothing matches.
func (repo *Repository[T]) Get(ctx context.Context, filter dto.FilterGroup, columns ...string) (model T, err error) {
	ctx, scope := repo.scope(ctx, "Get")
	defer scope.End()

	where, args := repo.where(filter)
	query := fmt.Sprintf("SELECT %s FROM %s %s %s LIMIT 1", repo.selectList(columns), repo.table, repo.join, where)

	err = repo.read(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		err := stmt.GetContext(ctx, &model, args)
		if err == nil || errors.Is(err, sql.ErrNoRows) {
			return nil
		}

		return repo.fail(scope, "get data", err)
	})

	return model, err
}

// GetAll applies pagination when Limit is set. SortBy is interpolated as is,
// callers restrict it with dto.QueryParams.AllowSort.
func (repo *Repository[T]) GetAll(ctx context.Context, params dto.QueryParams, filter dto.FilterGroup, columns ...string) (models []T, err error) {
	ctx, scope := repo.scope(ctx, "GetAll")
	defer scope.End()

	where, args := repo.where(filter)

	var ordering, pagination string

	if params.SortBy != "" && params.SortDir != "" {
		sortBy := params.SortBy
		if !strings.Contains(sortBy, ".") {
			sortBy = repo.table + "." + sortBy
		}

		ordering = fmt.Sprintf("ORDER BY %s %s", sortBy, params.SortDir)
	}

	if params.Limit > 0 {
		args["limit"] = params.Limit
		pagination = "LIMIT :limit"

		if params.Page > 0 {
			args["offset"] = (params.Page - 1) * params.Limit
			pagination += " OFFSET :offset"
		}
	}

	query := fmt.Sprintf("SELECT %s FROM %s %s %s %s %s", repo.selectList(columns), repo.table, repo.join, where, ordering, pagination)

	err = repo.read(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.SelectContext(ctx, &models, args); err != nil {
			return repo.fail(scope, "get all data", err)
		}

		return nil
	})

	return models, err
}

func (repo *Repository[T]) Count(ctx context.Context, filter dto.FilterGroup) (count int, err error) {
	ctx, scope := repo.scope(ctx, "Count")
	defer scope.End()

	where, args := repo.where(filter)
	query := fmt.Sprintf("SELECT COUNT(%s.%s) FROM %s %s %s", repo.table, repo.primaryColumn, repo.table, repo.join, where)

	err = repo.read(ctx, scope, query, func(stmt *sqlx.NamedStmt) error {
		if err := stmt.GetContext(ctx, &count, args); err != nil {
			return repo.fail(scope, "count data", err)
		}

		return nil
	})

	return count, err
}

func (repo *Repository[T]) Delete(ctx context.Context, filter dto.FilterGroup) error {
	ctx, scope := repo.scope(ctx, "Delete")
	defer scope.End()

	where, args := repo.where(filter)
	if where == "" {
		return ErrRequiredFilter
	}

	query := fmt.Sprintf("DELETE FROM %s %s", repo.table, where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	if _, err := repo.db.Write.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "delete data", err)
	}

	return nil
}

func (repo *Repository[T]) update(ctx context.Context, exec execer, mod map[string]any, filter dto.FilterGroup, op string) error {
	ctx, scope := repo.scope(ctx, op)
	defer scope.End()

	where, args := repo.where(filter)
	if where == "" {
		return ErrRequiredFilter
	}

	assignments := make([]string, 0, len(mod))
	for _, col := range slices.Sorted(maps.Keys(mod)) {
		assignments = append(assignments, fmt.Sprintf("%s = :%s", col, col))
	}

	query := fmt.Sprintf("UPDATE %s SET %s %s", repo.table, strings.Join(assignments, ", "), where)
	scope.SetAttribute(constant.OtelQueryAttributeKey, query)

	maps.Copy(args, mod)

	if _, err := exec.NamedExecContext(ctx, query, args); err != nil {
		return repo.fail(scope, "update data", err)
	}

	return nil
}

func (repo *Repository[T]) Update(ctx context.Context, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, repo.db.Write, mod, filter, "Update")
}

func (repo *Repository[T]) UpdateTx(ctx context.Context, sqltx *sqlx.Tx, mod map[string]any, filter dto.FilterGroup) error {
	return repo.update(ctx, sqltx, mod, filter, "UpdateTx")
}

func (repo *Repository[T]) selectList(only []string) string {
	exprs := make([]string, 0, len(repo.columns))

	for _, col := range repo.columns {
		if len(only) > 0 && !slices.Contains(only, col.name) {
			continue
		}

		exprs = append(exprs, col.selectExpr())
	}

	return strings.Join(exprs, ", ")
}

func (repo *Repository[T]) where(filter dto.FilterGroup) (string, map[string]any) {
	where, args := filter.GetWhereClause()
	if where == "" {
		return "", map[string]any{}
	}

	return "WHERE " + where, args
}

// getColumns walks the db tags of t, descending into embedded structs. Fields
// tagged with another table are selected but never inserted.
func getColumns(table string, t reflect.Type) (columns []column, insertColumns []string) {
	for i := range t.NumField() {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			cols, inserts := getColumns(table, field.Type)
			columns = append(columns, cols...)
			insertColumns = append(insertColumns, inserts...)

			continue
		}

		dbTag := field.Tag.Get("db")
		if dbTag == "" || dbTag == "-" {
			continue
		}

		source := field.Tag.Get("table")
		if source == "" {
			source = table
		}

		if source == table {
			insertColumns = append(insertColumns, dbTag)
		}

		if name := field.Tag.Get("column"); name != "" {
			columns = append(columns, column{name: name, table: source, alias: dbTag})
		} else {
			columns = append(columns, column{name: dbTag, table: source})
		}
	}

	return columns, insertColumns
}
