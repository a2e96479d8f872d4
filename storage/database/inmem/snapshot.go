package inmemdb

import (
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/user"
)

// storedUser carries the password hash past User's `json:"-"` tag; the
// shallower field wins during (un)marshalling.
type storedUser struct {
	user.User
	PasswordHash []byte `json:"password_hash,omitempty"`
}

// snapshot is the persisted state. The catalog is not part of it; it is
// reseeded on boot while user records and the Q&A feed survive restarts.
type snapshot struct {
	Users     []storedUser  `json:"studybuddy_user"`
	Questions []qa.Question `json:"studybuddy_qa"`
}

// Snapshot writes the user records and the Q&A feed as a JSON blob.
func (db *DB) Snapshot(w io.Writer) error {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	snap := snapshot{
		Users:     make([]storedUser, 0, len(db.users)),
		Questions: make([]qa.Question, 0, len(db.questions)),
	}
	for _, usr := range db.users {
		snap.Users = append(snap.Users, storedUser{User: *usr, PasswordHash: usr.PasswordHash})
	}
	for _, q := range db.questions {
		snap.Questions = append(snap.Questions, *q)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(snap), "encoding snapshot")
}

// Restore replaces user records and the Q&A feed with the snapshot's;
// id counters resume past the highest restored id.
func (db *DB) Restore(r io.Reader) error {
	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return errors.Wrap(err, "decoding snapshot")
	}

	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.users = make(map[int]*user.User, len(snap.Users))
	db.userPK = 0
	for _, su := range snap.Users {
		usr := su.User
		usr.PasswordHash = su.PasswordHash
		db.users[usr.ID] = &usr
		if usr.ID > db.userPK {
			db.userPK = usr.ID
		}
	}

	db.questions = make(map[int]*qa.Question, len(snap.Questions))
	db.questionPK = 0
	for _, q := range snap.Questions {
		q := q
		db.questions[q.ID] = &q
		if q.ID > db.questionPK {
			db.questionPK = q.ID
		}
	}
	return nil
}

// SnapshotToFile atomically persists the snapshot at path.
func (db *DB) SnapshotToFile(path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return errors.Wrap(err, "creating snapshot file")
	}
	if err = db.Snapshot(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing snapshot file")
	}
	return errors.Wrap(os.Rename(tmp, path), "replacing snapshot file")
}

// RestoreFromFile loads the snapshot at path if it exists.
func (db *DB) RestoreFromFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "opening snapshot file")
	}
	defer f.Close()
	return db.Restore(f)
}
