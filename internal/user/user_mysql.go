package user

import (
	"context"
	"database/sql"

	"github.com/go-sql-driver/mysql"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/driver"
	"github.com/pot-code/scorm-courseware/internal/infrastructure/uuid"
)

// UserMySQL UserRepository on SQL
type UserMySQL struct {
	Conn        driver.ITransactionalDB
	IDGenerator uuid.Generator
}

var _ UserRepository = &UserMySQL{}

func NewUserRepository(Conn driver.ITransactionalDB, IDGenerator uuid.Generator) *UserMySQL {
	return &UserMySQL{Conn, IDGenerator}
}

// FindByCredential query user with provided credential
func (repo *UserMySQL) FindByCredential(ctx context.Context, post *UserModel) (*UserModel, error) {
	conn := repo.Conn
	username := post.Username
	row, err := conn.QueryContext(ctx, `SELECT id, username, password, email, login_retry, last_login
	FROM user WHERE username=$1 OR email=$2`, username, username)
	if err != nil {
		return nil, err
	}
	defer row.Close()

	if row.Next() {
		found := new(UserModel)
		if err := row.Scan(&found.ID, &found.Username, &found.Password, &found.Email, &found.LoginRetry, &found.LastLogin); err != nil {
			return nil, err
		}
		return found, nil
	}
	return nil, nil
}

func (repo *UserMySQL) SaveUser(ctx context.Context, post *UserModel) error {
	conn := repo.Conn
	if id, err := repo.IDGenerator.Generate(); err == nil {
		post.ID = id
	} else {
		return err
	}

	_, err := conn.ExecContext(ctx, `INSERT INTO user(id, username, password, email, last_login)
	VALUES($1,$2,$3,$4,$5)`, post.ID, post.Username, post.Password, post.Email, post.LastLogin)

	if err, ok := err.(*mysql.MySQLError); ok && err.Number == 1062 {
		return ErrDuplicatedUser
	}
	return err
}

func (repo *UserMySQL) UpdateUser(ctx context.Context, post *UserModel) error {
	conn := repo.Conn
	_, err := conn.ExecContext(ctx, `UPDATE user
	SET login_retry=$1,
			last_login=$2
	WHERE id = $3`, post.LoginRetry, post.LastLogin, post.ID)
	return err
}

// BeginTx start a transaction on the underlying connection
func (repo *UserMySQL) BeginTx(ctx context.Context) (driver.ITransactionalDB, error) {
	return repo.Conn.BeginTx(ctx, &driver.TxOptions{
		Isolation: sql.LevelRepeatableRead,
	})
}
