package repository

import (
	"errors"
	"testing"
	"time"

	"flagdojo_backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB 建一个挂在 sqlmock 上的 gorm 连接，
// 错误翻译开关必须和生产配置一致，Append 依赖它识别唯一索引冲突
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqldb,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return db, mock
}

func TestAppendFirstSolve(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `submissions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO `solves`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sub := &model.Submission{UserID: 1, ChallengeID: 7, SubmittedFlag: "FLAG{x}", IsCorrect: true}
	solve := &model.Solve{UserID: 1, ChallengeID: 7}

	firstSolve, err := repo.Append(sub, solve)
	require.NoError(t, err)
	assert.True(t, firstSolve)
	assert.False(t, sub.SubmittedAt.IsZero())
	assert.Equal(t, sub.SubmittedAt, solve.SolvedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendDuplicateSolveKeepsSubmission(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `submissions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	// 并发竞争输掉的一方撞上唯一索引
	mock.ExpectExec("INSERT INTO `solves`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})
	mock.ExpectCommit()

	sub := &model.Submission{UserID: 1, ChallengeID: 7, SubmittedFlag: "FLAG{x}", IsCorrect: true}
	solve := &model.Solve{UserID: 1, ChallengeID: 7}

	firstSolve, err := repo.Append(sub, solve)
	require.NoError(t, err, "唯一索引冲突不是错误")
	assert.False(t, firstSolve)
	assert.NoError(t, mock.ExpectationsWereMet(), "提交记录必须照常提交")
}

func TestAppendWithoutSolve(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `submissions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	sub := &model.Submission{UserID: 1, ChallengeID: 7, SubmittedFlag: "FLAG{nope}", IsCorrect: false}

	firstSolve, err := repo.Append(sub, nil)
	require.NoError(t, err)
	assert.False(t, firstSolve)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendStorageErrorRollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `submissions`").
		WillReturnError(errors.New("connection lost"))
	mock.ExpectRollback()

	sub := &model.Submission{UserID: 1, ChallengeID: 7, SubmittedFlag: "FLAG{x}", IsCorrect: true}

	_, err := repo.Append(sub, &model.Solve{UserID: 1, ChallengeID: 7})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAppendKeepsExplicitTimestamps(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `submissions`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sub := &model.Submission{UserID: 1, ChallengeID: 7, SubmittedFlag: "x", SubmittedAt: at}

	_, err := repo.Append(sub, nil)
	require.NoError(t, err)
	assert.Equal(t, at, sub.SubmittedAt)
}
