package user

import (
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string, excludedUsers ...User) error
		CreateUser(user User) (User, error)
		QueryAllUsers() ([]User, error)
		GetUserByID(id int) (User, error)
		GetUserByEmail(email string) (User, error)
		GetUserByUsernameOrEmail(username string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Username or User.Email.
		FilterUsers(filter QueryFilter) ([]User, error)
		UpdateUser(user User, isActive *bool) (User, error)
		// SaveUser replaces the whole stored record with usr.
		SaveUser(usr User) (User, error)
		DeleteUsersByID(ids ...int) error
	}

	Service interface {
		Create(nu NewUser) (User, error)
		QueryAll() ([]User, error)
		Query(filter *QueryFilter, orderings ...core.DBOrdering) ([]User, error)
		GetByID(id int) (User, error)
		GetByEmail(email string) (User, error)
		GetByUsernameOrEmail(uname string) (User, error)
		Update(id int, uu UpdateUser) (User, error)
		Save(usr User) (User, error)
		SetLastLogin(usr User) (User, error)
		Delete(ids ...int) error
		CheckUniqueness(uname, email string, exclUsers ...User) error
		RequestPasswordReset(email string) error
		ResetPassword(rp ResetUserPassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService) Service {
	return &service{repo: repo, mailSvc: mailSvc}
}

func (svc *service) CheckUniqueness(uname, email string, exclUsers ...User) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email, exclUsers...); err != nil {
		var field string
		switch err {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:             nu.Name,
		Username:         nu.Username,
		Email:            nu.Email,
		Role:             nu.Role,
		IsActive:         true,
		EnrolledCourses:  []int{},
		CompletedLessons: []int{},
		QuizScores:       []QuizScore{},
		Certificates:     []Certificate{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	usr, err := svc.repo.CreateUser(usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeMail(usr)
	return usr, nil
}

func (svc *service) QueryAll() ([]User, error) {
	return svc.repo.QueryAllUsers()
}

func (svc *service) Query(filter *QueryFilter, orderings ...core.DBOrdering) ([]User, error) {
	var users []User
	var err error
	if filter == nil || filter.IsEmpty() {
		users, err = svc.repo.QueryAllUsers()
	} else {
		users, err = svc.repo.FilterUsers(*filter)
	}
	if err != nil {
		return nil, err
	}
	applyOrderings(users, orderings)
	return users, nil
}

func (svc *service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

func (svc *service) GetByEmail(email string) (User, error) {
	return svc.repo.GetUserByEmail(core.CleanString(email, true /* lower */))
}

func (svc *service) GetByUsernameOrEmail(uname string) (User, error) {
	return svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
}

func (svc *service) Update(id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:        id,
		Name:      uu.Name,
		Username:  uu.Username,
		Email:     uu.Email,
		Role:      uu.Role,
		UpdatedAt: time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, err
		}
	}
	return svc.repo.UpdateUser(usr, uu.IsActive)
}

func (svc *service) Save(usr User) (User, error) {
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.SaveUser(usr)
}

func (svc *service) SetLastLogin(usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.SaveUser(usr)
}

func (svc *service) Delete(ids ...int) error {
	return svc.repo.DeleteUsersByID(ids...)
}

func (svc *service) RequestPasswordReset(email string) error {
	usr, err := svc.GetByEmail(email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(usr)
	return nil
}

func (svc *service) ResetPassword(rp ResetUserPassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.repo.GetUserByID(uid)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	if err = verifyToken(usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err = usr.SetPassword(rp.Password); err != nil {
		return err
	}
	_, err = svc.Save(usr)
	return errors.Wrap(err, "saving new password")
}

func (svc *service) sendWelcomeMail(usr User) {
	body := fmt.Sprintf(
		"Hi %s,\n\nWelcome to %s! Your %s account is ready.\n\nBrowse the catalog and start learning: %s/courses\n",
		usr.Name, core.Conf.AppName, usr.Role, core.Conf.FrontendBaseURL,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Welcome to " + core.Conf.AppName,
		BodyStr: body,
	})
}

func (svc *service) sendPasswordResetMail(usr User) {
	url := fmt.Sprintf(
		"%s/password-reset/confirm?uid=%s&token=%s",
		core.Conf.FrontendBaseURL, EncodeUID(usr), makeToken(usr),
	)
	body := fmt.Sprintf(
		"Hi %s,\n\nYou requested a password reset. Follow this link to choose a new password:\n\n%s\n\n"+
			"If you did not make this request, you can safely ignore this email.\n",
		usr.Name, url,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Password Reset",
		BodyStr: body,
	})
}

func applyOrderings(users []User, orderings []core.DBOrdering) {
	// apply in reverse so the first ordering wins
	for i := len(orderings) - 1; i >= 0; i-- {
		ord := orderings[i]
		var less func(a, b User) bool
		switch ord.Field {
		case "name":
			less = func(a, b User) bool { return strings.ToLower(a.Name) < strings.ToLower(b.Name) }
		case "email":
			less = func(a, b User) bool { return a.Email < b.Email }
		case "created_at":
			less = func(a, b User) bool { return a.CreatedAt.Before(b.CreatedAt) }
		case "last_login":
			less = func(a, b User) bool { return a.LastLogin.Before(b.LastLogin) }
		case "is_active":
			less = func(a, b User) bool { return !a.IsActive && b.IsActive }
		default:
			continue
		}
		if !ord.Ascending {
			orig := less
			less = func(a, b User) bool { return orig(b, a) }
		}
		sort.SliceStable(users, func(i, j int) bool { return less(users[i], users[j]) })
	}
}
