// Command admin is the operator CLI: create accounts (the only way to mint
// admins) and reset passwords, against the same store the API serves.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/user"
	"github.com/studybuddy/backend/storage/database"
	inmemdb "github.com/studybuddy/backend/storage/database/inmem"
	sqlxrepos "github.com/studybuddy/backend/storage/database/sqlx"
)

func main() {
	var usrRepo user.Repository
	var persist func() error

	if core.Conf.Database.Engine != "" {
		db, err := database.Open(core.Conf)
		errAndDie(err)
		defer db.Close()
		errAndDie(database.Ping(db))
		errAndDie(database.Migrate(db))
		usrRepo = sqlxrepos.NewUserRepository(db)
	} else {
		memDB := inmemdb.NewDB()
		errAndDie(inmemdb.Seed(memDB))
		snapshotPath := filepath.Join(core.Conf.WorkDir, "data", "studybuddy.json")
		errAndDie(memDB.RestoreFromFile(snapshotPath))
		usrRepo = inmemdb.NewUserRepository(memDB)
		persist = func() error {
			if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o755); err != nil {
				return err
			}
			return memDB.SnapshotToFile(snapshotPath)
		}
	}

	cli := &commandLine{usrRepo: usrRepo}
	if err := cli.run(os.Args); err != nil {
		if err == errHelp {
			os.Exit(2)
		}
		errAndDie(err)
	}

	if persist != nil {
		errAndDie(persist())
	}
	fmt.Println("Done.")
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
