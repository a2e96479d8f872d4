package sqlxrepos

import (
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/user"
)

type dbUser struct {
	ID               int            `db:"id"`
	Name             string         `db:"name"`
	Username         string         `db:"username"`
	Email            string         `db:"email"`
	Role             string         `db:"role"`
	IsActive         bool           `db:"is_active"`
	EnrolledCourses  []byte         `db:"enrolled_courses"`
	CompletedLessons []byte         `db:"completed_lessons"`
	QuizScores       []byte         `db:"quiz_scores"`
	Certificates     []byte         `db:"certificates"`
	PasswordHash     []byte         `db:"password_hash"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
	LastLogin        sql.NullTime   `db:"last_login"`
}

func newDBUser(usr user.User) (dbUser, error) {
	enrolled, err := json.Marshal(usr.EnrolledCourses)
	if err != nil {
		return dbUser{}, errors.Wrap(err, "encoding enrolled courses")
	}
	completed, err := json.Marshal(usr.CompletedLessons)
	if err != nil {
		return dbUser{}, errors.Wrap(err, "encoding completed lessons")
	}
	scores, err := json.Marshal(usr.QuizScores)
	if err != nil {
		return dbUser{}, errors.Wrap(err, "encoding quiz scores")
	}
	certs, err := json.Marshal(usr.Certificates)
	if err != nil {
		return dbUser{}, errors.Wrap(err, "encoding certificates")
	}
	du := dbUser{
		ID:               usr.ID,
		Name:             usr.Name,
		Username:         usr.Username,
		Email:            usr.Email,
		Role:             string(usr.Role),
		IsActive:         usr.IsActive,
		EnrolledCourses:  enrolled,
		CompletedLessons: completed,
		QuizScores:       scores,
		Certificates:     certs,
		PasswordHash:     usr.PasswordHash,
		CreatedAt:        usr.CreatedAt,
		UpdatedAt:        usr.UpdatedAt,
	}
	if !usr.LastLogin.IsZero() {
		du.LastLogin = sql.NullTime{Time: usr.LastLogin, Valid: true}
	}
	return du, nil
}

func (du dbUser) toUser() (user.User, error) {
	usr := user.User{
		ID:           du.ID,
		Name:         du.Name,
		Username:     du.Username,
		Email:        du.Email,
		Role:         user.Role(du.Role),
		IsActive:     du.IsActive,
		PasswordHash: du.PasswordHash,
		CreatedAt:    du.CreatedAt,
		UpdatedAt:    du.UpdatedAt,
	}
	if du.LastLogin.Valid {
		usr.LastLogin = du.LastLogin.Time
	}
	if err := json.Unmarshal(du.EnrolledCourses, &usr.EnrolledCourses); err != nil {
		return user.User{}, errors.Wrap(err, "decoding enrolled courses")
	}
	if err := json.Unmarshal(du.CompletedLessons, &usr.CompletedLessons); err != nil {
		return user.User{}, errors.Wrap(err, "decoding completed lessons")
	}
	if err := json.Unmarshal(du.QuizScores, &usr.QuizScores); err != nil {
		return user.User{}, errors.Wrap(err, "decoding quiz scores")
	}
	if err := json.Unmarshal(du.Certificates, &usr.Certificates); err != nil {
		return user.User{}, errors.Wrap(err, "decoding certificates")
	}
	return usr, nil
}

func toUsers(rows []dbUser) ([]user.User, error) {
	users := make([]user.User, 0, len(rows))
	for _, du := range rows {
		usr, err := du.toUser()
		if err != nil {
			return nil, err
		}
		users = append(users, usr)
	}
	return users, nil
}

const userColumns = `id, name, username, email, role, is_active, enrolled_courses,
completed_lessons, quiz_scores, certificates, password_hash, created_at, updated_at, last_login`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckUsernameUniqueness(username, email string, excludedUsers ...user.User) error {
	excludedIDs := make([]int, 0, len(excludedUsers))
	for _, usr := range excludedUsers {
		excludedIDs = append(excludedIDs, usr.ID)
	}

	check := func(column, value string, dupErr error) error {
		if value == "" {
			return nil
		}
		var count int
		query := `SELECT COUNT(*) FROM user_account WHERE ` + column + ` = $1 AND NOT (id = ANY($2))`
		if err := repo.db.Get(&count, query, value, pq.Array(excludedIDs)); err != nil {
			return errors.Wrap(err, "checking "+column+" uniqueness")
		}
		if count > 0 {
			return dupErr
		}
		return nil
	}

	if err := check("username", username, user.ErrUsernameExists); err != nil {
		return err
	}
	return check("email", email, user.ErrEmailExists)
}

func (repo *userRepository) CreateUser(usr user.User) (user.User, error) {
	du, err := newDBUser(usr)
	if err != nil {
		return user.User{}, err
	}
	query := `
INSERT INTO user_account (name, username, email, role, is_active, enrolled_courses,
	completed_lessons, quiz_scores, certificates, password_hash, created_at, updated_at, last_login)
VALUES (:name, :username, :email, :role, :is_active, :enrolled_courses,
	:completed_lessons, :quiz_scores, :certificates, :password_hash, :created_at, :updated_at, :last_login)
RETURNING id`
	rows, err := repo.db.NamedQuery(query, du)
	if err != nil {
		return user.User{}, errors.Wrap(err, "creating user")
	}
	defer func() { _ = rows.Close() }()
	if rows.Next() {
		if err = rows.Scan(&usr.ID); err != nil {
			return user.User{}, errors.Wrap(err, "creating user")
		}
	}
	return usr, errors.Wrap(rows.Err(), "creating user")
}

func (repo *userRepository) QueryAllUsers() ([]user.User, error) {
	var rows []dbUser
	query := `SELECT ` + userColumns + ` FROM user_account ORDER BY id`
	if err := repo.db.Select(&rows, query); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows)
}

func (repo *userRepository) GetUserByID(id int) (user.User, error) {
	var du dbUser
	query := `SELECT ` + userColumns + ` FROM user_account WHERE id = $1`
	if err := repo.db.Get(&du, query, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return du.toUser()
}

func (repo *userRepository) GetUserByEmail(email string) (user.User, error) {
	var du dbUser
	query := `SELECT ` + userColumns + ` FROM user_account WHERE email = $1`
	if err := repo.db.Get(&du, query, email); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return du.toUser()
}

func (repo *userRepository) GetUserByUsernameOrEmail(username string) (user.User, error) {
	var du dbUser
	query := `SELECT ` + userColumns + ` FROM user_account WHERE (username <> '' AND username = $1) OR email = $1`
	if err := repo.db.Get(&du, query, username); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by username or email")
	}
	return du.toUser()
}

func (repo *userRepository) FilterUsers(filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT ` + userColumns + ` FROM user_account WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += ` AND (name ILIKE ` + p + ` OR username ILIKE ` + p + ` OR email ILIKE ` + p + `)`
	}
	if filter.Roles != nil {
		roles := make([]string, 0, len(filter.Roles))
		for _, r := range filter.Roles {
			roles = append(roles, string(r))
		}
		query += ` AND role = ANY(` + arg(pq.Array(roles)) + `)`
	}
	if filter.IsActive != nil {
		query += ` AND is_active = ` + arg(*filter.IsActive)
	}
	if !filter.CreatedFrom.IsZero() {
		query += ` AND created_at >= ` + arg(filter.CreatedFrom)
	}
	if !filter.CreatedTo.IsZero() {
		query += ` AND created_at <= ` + arg(filter.CreatedTo)
	}
	query += ` ORDER BY id`

	var rows []dbUser
	if err := repo.db.Select(&rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows)
}

func (repo *userRepository) UpdateUser(usr user.User, isActive *bool) (user.User, error) {
	origUsr, err := repo.GetUserByID(usr.ID)
	if err != nil {
		return user.User{}, err
	}

	// only save set fields
	if usr.Role != "" {
		origUsr.Role = usr.Role
	}
	if usr.PasswordHash != nil {
		origUsr.PasswordHash = usr.PasswordHash
	}
	if isActive != nil {
		origUsr.IsActive = *isActive
	}
	origUsr.Name = usr.Name
	origUsr.Username = usr.Username
	origUsr.Email = usr.Email
	origUsr.UpdatedAt = usr.UpdatedAt
	return repo.SaveUser(origUsr)
}

func (repo *userRepository) SaveUser(usr user.User) (user.User, error) {
	du, err := newDBUser(usr)
	if err != nil {
		return user.User{}, err
	}
	query := `
UPDATE user_account SET
	name = :name, username = :username, email = :email, role = :role, is_active = :is_active,
	enrolled_courses = :enrolled_courses, completed_lessons = :completed_lessons,
	quiz_scores = :quiz_scores, certificates = :certificates, password_hash = :password_hash,
	updated_at = :updated_at, last_login = :last_login
WHERE id = :id`
	res, err := repo.db.NamedExec(query, du)
	if err != nil {
		return user.User{}, errors.Wrap(err, "saving user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ids ...int) error {
	_, err := repo.db.Exec(`DELETE FROM user_account WHERE id = ANY($1)`, pq.Array(ids))
	return errors.Wrap(err, "deleting users")
}
