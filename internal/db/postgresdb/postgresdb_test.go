package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/filesmanager/internal/db/storage"
	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

var _ storage.Storage = (*PostgresDB)(nil)

const (
	insertUserQuery   = `(?s)^INSERT\s+INTO\s+users\s*\(email,\s*password\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id\s*$`
	selectUserByID    = `(?s)^SELECT\s+id,\s*email,\s*password\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1\s*$`
	selectUserByEmail = `(?s)^SELECT\s+id,\s*email,\s*password\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1\s*$`
	insertFileQuery   = `(?s)^\s*INSERT\s+INTO\s+files\s*\(name,\s*type,\s*parent_id,\s*is_public,\s*user_id,\s*local_path\).*RETURNING\s+id\s*$`
	selectFileByID    = `(?s)^\s*SELECT\s+id,\s*name,\s*type,\s*parent_id,\s*is_public,\s*user_id,\s*local_path\s+FROM\s+files\s+WHERE\s+id\s*=\s*\$1\s*$`
	countUsersQuery   = `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+users$`
	countFilesQuery   = `(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+files$`
	existingFileUUID  = "5b2f7e43-3c1d-4a53-9d53-5a0e6b1f2c11"
	existingUserUUID  = "0c0a4f5e-8a0b-4d4f-9f55-1c2b3a4d5e6f"
	anotherFolderUUID = "9e9f2a1b-2c3d-4e5f-8a9b-0c1d2e3f4a5b"
)

func newRepoWithMock(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(
		sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp),
		sqlmock.MonitorPingsOption(true),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		db.Close()
	})

	return &PostgresDB{database: db, connectionTimeout: time.Second}, mock
}

func TestCreateUser(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insertUserQuery).
			WithArgs("bob@dylan.com", "hash").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingUserUUID))

		id, err := repo.CreateUser(context.Background(), &user.User{Email: "bob@dylan.com", Password: "hash"})

		require.NoError(t, err)
		assert.Equal(t, existingUserUUID, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insertUserQuery).
			WithArgs("bob@dylan.com", "hash").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.CreateUser(context.Background(), &user.User{Email: "bob@dylan.com", Password: "hash"})

		assert.ErrorIs(t, err, models.ErrUserAlreadyExists)
	})

	t.Run("database failure", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insertUserQuery).
			WithArgs("bob@dylan.com", "hash").
			WillReturnError(errors.New("db down"))

		_, err := repo.CreateUser(context.Background(), &user.User{Email: "bob@dylan.com", Password: "hash"})

		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrUserAlreadyExists)
		assert.Contains(t, err.Error(), "db down")
	})
}

func TestGetUserByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectUserByID).
			WithArgs(existingUserUUID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}).
				AddRow(existingUserUUID, "bob@dylan.com", "hash"))

		usr, err := repo.GetUserByID(context.Background(), existingUserUUID)

		require.NoError(t, err)
		assert.Equal(t, existingUserUUID, usr.ID)
		assert.Equal(t, "bob@dylan.com", usr.Email)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectUserByID).
			WithArgs(existingUserUUID).
			WillReturnError(sql.ErrNoRows)

		usr, err := repo.GetUserByID(context.Background(), existingUserUUID)

		require.NoError(t, err)
		assert.Empty(t, usr.ID)
	})

	t.Run("not a uuid", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		usr, err := repo.GetUserByID(context.Background(), "42")

		require.NoError(t, err)
		assert.Empty(t, usr.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetUserByEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(selectUserByEmail).
		WithArgs("bob@dylan.com").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password"}).
			AddRow(existingUserUUID, "bob@dylan.com", "hash"))
	mock.ExpectQuery(selectUserByEmail).
		WithArgs("ghost@example.com").
		WillReturnError(sql.ErrNoRows)

	usr, found, err := repo.GetUserByEmail(context.Background(), "bob@dylan.com")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "hash", usr.Password)

	usr, found, err = repo.GetUserByEmail(context.Background(), "ghost@example.com")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, usr)
}

func TestInsertFile(t *testing.T) {
	t.Run("file at root", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insertFileQuery).
			WithArgs("hello.txt", "file", "0", false, existingUserUUID, "/tmp/files_manager/abc").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingFileUUID))

		id, err := repo.InsertFile(context.Background(), &models.File{
			Name:      "hello.txt",
			Type:      models.FileTypeFile,
			ParentID:  "",
			UserID:    existingUserUUID,
			LocalPath: "/tmp/files_manager/abc",
		})

		require.NoError(t, err)
		assert.Equal(t, existingFileUUID, id)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("folder without content", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(insertFileQuery).
			WithArgs("images", "folder", anotherFolderUUID, true, existingUserUUID, nil).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(existingFileUUID))

		_, err := repo.InsertFile(context.Background(), &models.File{
			Name:     "images",
			Type:     models.FileTypeFolder,
			ParentID: anotherFolderUUID,
			IsPublic: true,
			UserID:   existingUserUUID,
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetFileByID(t *testing.T) {
	columns := []string{"id", "name", "type", "parent_id", "is_public", "user_id", "local_path"}

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectFileByID).
			WithArgs(existingFileUUID).
			WillReturnRows(sqlmock.NewRows(columns).
				AddRow(existingFileUUID, "images", "folder", "0", false, existingUserUUID, nil))

		file, found, err := repo.GetFileByID(context.Background(), existingFileUUID)

		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, models.FileTypeFolder, file.Type)
		assert.True(t, file.ParentID.IsRoot())
		assert.Empty(t, file.LocalPath)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(selectFileByID).
			WithArgs(existingFileUUID).
			WillReturnError(sql.ErrNoRows)

		_, found, err := repo.GetFileByID(context.Background(), existingFileUUID)

		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("not a uuid", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		_, found, err := repo.GetFileByID(context.Background(), "42")

		require.NoError(t, err)
		assert.False(t, found)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCounters(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(countUsersQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))
	mock.ExpectQuery(countFilesQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(30)))

	users, err := repo.GetNumberOfUsers(context.Background())
	require.NoError(t, err)
	files, err := repo.GetNumberOfFiles(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(4), users)
	assert.Equal(t, int64(30), files)
}

func TestPing(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectPing()
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))

	assert.NoError(t, repo.Ping(context.Background()))
	assert.Error(t, repo.Ping(context.Background()))
}
