// Package postgresdb provides a PostgreSQL-based implementation of the
// credential and metadata stores. The schema is managed with goose
// migrations applied on start.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/patric-chuzhbe/filesmanager/internal/models"
	"github.com/patric-chuzhbe/filesmanager/internal/user"
)

const uniqueViolationCode = "23505"

// PostgresDB is the PostgreSQL-backed store of users and file entries.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

type initOptions struct {
	DBPreReset bool
}

// InitOption defines a functional option for configuring database initialization.
type InitOption func(*initOptions)

// WithDBPreReset drops every table before migrating. Test setups use it.
func WithDBPreReset(value bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = value
	}
}

// New connects to PostgreSQL, applies the migrations found in
// migrationsDir and returns a ready store.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil,
				fmt.Errorf(
					"in internal/db/postgresdb/postgresdb.go/New(): error while `result.resetDB()` calling: %w",
					err,
				)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.SetDialect()` calling: %w",
				err,
			)
	}

	if err := goose.UpContext(ctx, result.database, migrationsDir); err != nil {
		return nil,
			fmt.Errorf(
				"in internal/db/postgresdb/postgresdb.go/New(): error while `goose.UpContext()` calling: %w",
				err,
			)
	}

	return result, nil
}

// CreateUser inserts a user and returns its generated identifier.
// A taken email yields models.ErrUserAlreadyExists.
func (db *PostgresDB) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	row := db.database.QueryRowContext(
		ctx,
		`INSERT INTO users (email, password) VALUES ($1, $2) RETURNING id`,
		usr.Email,
		usr.Password,
	)
	var userIDFromDB string
	err := row.Scan(&userIDFromDB)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return "", models.ErrUserAlreadyExists
		}
		return "", fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/CreateUser(): error while `row.Scan()` calling: %w",
			err,
		)
	}

	return userIDFromDB, nil
}

// GetUserByID fetches a user by UUID. If the user does not exist, or the
// identifier is not a UUID, it returns a user with an empty ID field.
func (db *PostgresDB) GetUserByID(ctx context.Context, userID string) (*user.User, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return &user.User{ID: ""}, nil
	}

	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password FROM users WHERE id = $1`,
		userID,
	)
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &user.User{ID: ""}, nil
		}
		return &user.User{ID: ""}, err
	}

	return usr, nil
}

// GetUserByEmail fetches a user by email.
func (db *PostgresDB) GetUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	row := db.database.QueryRowContext(
		ctx,
		`SELECT id, email, password FROM users WHERE email = $1`,
		email,
	)
	usr := &user.User{}
	err := row.Scan(&usr.ID, &usr.Email, &usr.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return usr, true, nil
}

// GetNumberOfUsers counts the rows of the users table.
func (db *PostgresDB) GetNumberOfUsers(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM users`)
}

// InsertFile stores a file entry and returns its generated identifier.
func (db *PostgresDB) InsertFile(ctx context.Context, file *models.File) (string, error) {
	parentID := string(file.ParentID)
	if file.ParentID.IsRoot() {
		parentID = models.RootParentID
	}

	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO files (name, type, parent_id, is_public, user_id, local_path)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
		`,
		file.Name,
		string(file.Type),
		parentID,
		file.IsPublic,
		file.UserID,
		sql.NullString{String: file.LocalPath, Valid: file.LocalPath != ""},
	)
	var fileIDFromDB string
	if err := row.Scan(&fileIDFromDB); err != nil {
		return "", fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/InsertFile(): error while `row.Scan()` calling: %w",
			err,
		)
	}

	return fileIDFromDB, nil
}

// GetFileByID fetches a file entry. Identifiers that are not UUIDs are
// reported as not found.
func (db *PostgresDB) GetFileByID(ctx context.Context, fileID string) (*models.File, bool, error) {
	if _, err := uuid.Parse(fileID); err != nil {
		return nil, false, nil
	}

	row := db.database.QueryRowContext(
		ctx,
		`
			SELECT id, name, type, parent_id, is_public, user_id, local_path
				FROM files
				WHERE id = $1
		`,
		fileID,
	)

	var (
		file      models.File
		fileType  string
		parentID  string
		localPath sql.NullString
	)
	err := row.Scan(&file.ID, &file.Name, &fileType, &parentID, &file.IsPublic, &file.UserID, &localPath)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	file.Type = models.FileType(fileType)
	file.ParentID = models.ParentID(parentID)
	file.LocalPath = localPath.String

	return &file, true, nil
}

// GetNumberOfFiles counts the rows of the files table.
func (db *PostgresDB) GetNumberOfFiles(ctx context.Context) (int64, error) {
	return db.count(ctx, `SELECT COUNT(*) FROM files`)
}

func (db *PostgresDB) count(ctx context.Context, query string) (int64, error) {
	var amount int64
	if err := db.database.QueryRowContext(ctx, query).Scan(&amount); err != nil {
		return 0, err
	}

	return amount, nil
}

// Ping verifies connectivity with the PostgreSQL database within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	ctxWithTimeout, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(ctxWithTimeout)
}

// Close closes the database connection and releases any associated resources.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DO $$
			DECLARE
				r RECORD;
			BEGIN
				FOR r IN (SELECT tablename FROM pg_tables WHERE schemaname = 'public') LOOP
					EXECUTE 'DROP TABLE IF EXISTS ' || quote_ident(r.tablename) || ' CASCADE';
				END LOOP;
			END $$;
		`,
	)
	if err != nil {
		return fmt.Errorf(
			"in internal/db/postgresdb/postgresdb.go/resetDB(): error while `db.database.ExecContext()` calling: %w",
			err,
		)
	}
	return nil
}
