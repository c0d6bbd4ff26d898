package service

import (
	"path/filepath"
	"testing"

	"saraswati-be/internal/model"
	"saraswati-be/internal/pkg/locker"
	"saraswati-be/internal/pkg/logger"
	"saraswati-be/internal/repository/memory"
	"saraswati-be/internal/repository/unitofwork"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type testEnv struct {
	db        *gorm.DB
	noteSvc   INoteService
	reviewSvc IReviewService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := gorm.Open(sqlite.Open(filepath.Join(dir, "workflow.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Note{},
		&model.NoteVersion{},
		&model.Review{},
		&model.ReviewDecision{},
		&model.ReviewEvent{},
	))

	uowFactory := unitofwork.NewRepositoryFactory(db)
	log := logger.NewIsolatedLogger(filepath.Join(dir, "test.log"))
	noteLocker := locker.NewNoteLocker()
	idem := memory.NewIdempotencyRepository()

	return &testEnv{
		db:      db,
		noteSvc: NewNoteService(uowFactory, noteLocker, nil, log),
		reviewSvc: NewReviewService(
			uowFactory,
			noteLocker,
			idem,
			nil,
			nil,
			nil,
			log,
			1,
		),
	}
}
