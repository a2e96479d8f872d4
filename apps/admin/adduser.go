package main

import (
	"time"

	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/user"
)

// addUser updates or creates a user.User.
func (cli *commandLine) addUser(name, uname, email, pwd string, role user.Role) error {
	name = core.CleanString(name)
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	now := time.Now().UTC()
	usr, err := cli.usrRepo.GetUserByEmail(email)
	if err != nil {
		if err != user.ErrNotFound {
			return err
		}
		usr = user.User{
			EnrolledCourses:  []int{},
			CompletedLessons: []int{},
			QuizScores:       []user.QuizScore{},
			Certificates:     []user.Certificate{},
			CreatedAt:        now,
		}
	}
	usr.Name = name
	usr.Username = uname
	usr.Email = email
	usr.Role = role
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if usr.ID == 0 {
		_, err = cli.usrRepo.CreateUser(usr)
	} else {
		_, err = cli.usrRepo.SaveUser(usr)
	}
	return err
}
