package storage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/email-builder/internal/apperr"
	"github.com/email-builder/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Database{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

var (
	userCols     = []string{"id", "name", "email", "password", "created_at", "updated_at"}
	templateCols = []string{"id", "user_id", "name", "config", "layout", "created_at", "updated_at"}
)

func sampleConfig() model.TemplateConfig {
	return model.TemplateConfig{
		Title:   "Hi",
		Content: "<p>hello</p>",
		Styles: model.TemplateStyles{
			TitleColor:      model.DefaultTitleColor,
			ContentColor:    model.DefaultContentColor,
			BackgroundColor: model.DefaultBackgroundColor,
			FontSize:        model.DefaultFontSize,
		},
	}
}

func configJSON(t *testing.T, c model.TemplateConfig) []byte {
	t.Helper()
	b, err := json.Marshal(c)
	require.NoError(t, err)
	return b
}

func TestRunMigrations(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS templates`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE INDEX IF NOT EXISTS idx_templates_user_created`).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, db.RunMigrations(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrations_Error(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnError(errors.New("permission denied"))

	err := db.RunMigrations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migration failed")
}

func TestUserRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users \(name, email, password\)`).
		WithArgs("A", "a@x.com", "hash").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "A", "a@x.com", "hash", now, now))

	got, err := repo.Create(context.Background(), &model.User{Name: "A", Email: "a@x.com", Password: "hash"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "a@x.com", got.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("A", "a@x.com", "hash").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value"})

	_, err := repo.Create(context.Background(), &model.User{Name: "A", Email: "a@x.com", Password: "hash"})
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestUserRepository_Create_DBError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`INSERT INTO users`).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &model.User{Name: "A", Email: "a@x.com", Password: "hash"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperr.ErrConflict)
	assert.Contains(t, err.Error(), "db down")
}

func TestUserRepository_FindByEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE email = \$1`).
		WithArgs("a@x.com").
		WillReturnRows(sqlmock.NewRows(userCols).AddRow("u-1", "A", "a@x.com", "hash", now, now))

	got, err := repo.FindByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "hash", got.Password)
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \$1`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userCols))

	got, err := repo.FindByID(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)
	cfg := sampleConfig()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO templates \(user_id, name, config, layout\)`).
		WithArgs("u-1", "Promo", sqlmock.AnyArg(), "default").
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow("t-1", "u-1", "Promo", configJSON(t, cfg), "default", now, now))

	got, err := repo.Create(context.Background(), &model.Template{UserID: "u-1", Name: "Promo", Config: cfg, Layout: "default"})
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID)
	assert.Equal(t, cfg, got.Config)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepository_FindOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)
	cfg := sampleConfig()
	now := time.Now()

	mock.ExpectQuery(`SELECT .+ FROM templates WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t-1", "u-1").
		WillReturnRows(sqlmock.NewRows(templateCols).
			AddRow("t-1", "u-1", "Promo", configJSON(t, cfg), "default", now, now))

	got, err := repo.FindOwned(context.Background(), "t-1", "u-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Hi", got.Config.Title)
}

func TestTemplateRepository_FindOwned_Foreign(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM templates WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t-1", "u-2").
		WillReturnRows(sqlmock.NewRows(templateCols))

	got, err := repo.FindOwned(context.Background(), "t-1", "u-2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateRepository_ListByOwner_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(`SELECT .+ FROM templates WHERE user_id = \$1 ORDER BY created_at DESC`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(templateCols))

	got, err := repo.ListByOwner(context.Background(), "u-1")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTemplateRepository_Update_NotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)

	mock.ExpectQuery(`UPDATE templates SET name = \$1, config = \$2, updated_at = \$3\s+WHERE id = \$4 AND user_id = \$5`).
		WithArgs("New", sqlmock.AnyArg(), sqlmock.AnyArg(), "t-1", "u-2").
		WillReturnRows(sqlmock.NewRows(templateCols))

	got, err := repo.Update(context.Background(), &model.Template{ID: "t-1", UserID: "u-2", Name: "New", Config: sampleConfig()})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTemplateRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewTemplateRepository(db)

	mock.ExpectExec(`DELETE FROM templates WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM templates WHERE id = \$1 AND user_id = \$2`).
		WithArgs("t-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	deleted, err := repo.Delete(context.Background(), "t-1", "u-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), "t-1", "u-1")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
