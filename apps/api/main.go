package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	echoapi "github.com/studybuddy/backend/apps/api/echo"
	"github.com/studybuddy/backend/core"
	"github.com/studybuddy/backend/core/course"
	"github.com/studybuddy/backend/core/progress"
	"github.com/studybuddy/backend/core/qa"
	"github.com/studybuddy/backend/core/report"
	"github.com/studybuddy/backend/core/user"
	emailsvc "github.com/studybuddy/backend/services/email"
	logsvc "github.com/studybuddy/backend/services/logger"
	paymentsvc "github.com/studybuddy/backend/services/payment"
	"github.com/studybuddy/backend/storage/database"
	inmemdb "github.com/studybuddy/backend/storage/database/inmem"
	sqlxrepos "github.com/studybuddy/backend/storage/database/sqlx"
)

const shutdownTimeout = 20 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	var logger core.Logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if core.Conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rl := logsvc.NewRollbarLogger(std, core.Conf)
		rl.Enable(true)
		logger = rl
	}

	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	// set up storage; PostgreSQL when an engine is configured, else the
	// seeded in-memory store with JSON snapshots
	var (
		usrRepo    user.Repository
		crsRepo    course.Repository
		qaRepo     qa.Repository
		reportRepo report.Repository
		snapshot   func()
	)
	memDB := inmemdb.NewDB()
	crsRepo = inmemdb.NewCourseRepository(memDB)
	qaRepo = inmemdb.NewQARepository(memDB)
	reportRepo = inmemdb.NewReportRepository(memDB)

	if core.Conf.Database.Engine != "" {
		db, err := database.Open(core.Conf)
		if err != nil {
			logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
		}
		defer db.Close()
		if err = database.Ping(db); err != nil {
			logger.Fatal(fmt.Sprintf("pinging database: %v", err), err)
		}
		if err = database.Migrate(db); err != nil {
			logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
		}
		usrRepo = sqlxrepos.NewUserRepository(db)

		if err = inmemdb.Seed(memDB); err != nil {
			logger.Fatal(fmt.Sprintf("seeding catalog: %v", err), err)
		}
	} else {
		usrRepo = inmemdb.NewUserRepository(memDB)

		if err := inmemdb.Seed(memDB); err != nil {
			logger.Fatal(fmt.Sprintf("seeding store: %v", err), err)
		}
		snapshotPath := filepath.Join(core.Conf.WorkDir, "data", "studybuddy.json")
		if err := os.MkdirAll(filepath.Dir(snapshotPath), 0o755); err != nil {
			logger.Fatal(fmt.Sprintf("creating data dir: %v", err), err)
		}
		if err := memDB.RestoreFromFile(snapshotPath); err != nil {
			logger.Fatal(fmt.Sprintf("restoring snapshot: %v", err), err)
		}
		snapshot = func() {
			if err := memDB.SnapshotToFile(snapshotPath); err != nil {
				logger.Error(fmt.Sprintf("saving snapshot: %v", err), err)
			}
		}
	}

	// set up services
	usrSvc := user.NewService(usrRepo, mailSvc)
	crsSvc := course.NewService(crsRepo)
	progSvc := progress.NewService(crsSvc)
	qaSvc := qa.NewService(qaRepo)
	reportSvc := report.NewService(reportRepo, usrSvc, crsSvc)
	paySvc := paymentsvc.NewDummyService()

	// =========================================================================
	// Start API Service

	logger.Info(fmt.Sprintf("Application initializing : version %q", core.Conf.Build))
	defer logger.Info("Application stopped")

	shutdownChan := make(chan struct{})
	server := echoapi.NewServer(&echoapi.Options{
		Address:      core.Conf.Server.Addr,
		Logger:       logger,
		ShutdownChan: shutdownChan,
		UserSvc:      usrSvc,
		CourseSvc:    crsSvc,
		ProgressSvc:  progSvc,
		QASvc:        qaSvc,
		ReportSvc:    reportSvc,
		PaymentSvc:   paySvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
	case <-shutdownChan:
		logger.Info("integrity issue: Start shutdown...")
	}

	if snapshot != nil {
		snapshot()
	}

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Stop(ctx); err != nil {
		logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}
