package repository

import (
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	return db, mock
}

// The verifier only ever compares against the single newest row, so the
// lookup must order by created_at with id as tiebreak.
func TestGormOTPRepository_FindLatestByUserID_Ordering(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOTPRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "code", "created_at", "expires_at"}).
		AddRow(42, 7, "482193", now, now.Add(5*time.Minute))

	mock.ExpectQuery("SELECT \\* FROM `otps` WHERE user_id = \\?.*ORDER BY created_at DESC, id DESC").
		WillReturnRows(rows)

	otp, err := repo.FindLatestByUserID(7)
	require.NoError(t, err)
	require.Equal(t, uint64(42), otp.ID)
	require.Equal(t, "482193", otp.Code)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOTPRepository_PurgeExpired(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOTPRepository(db)

	mock.ExpectExec("DELETE FROM `otps` WHERE expires_at < \\?").
		WillReturnResult(sqlmock.NewResult(0, 3))

	purged, err := repo.PurgeExpired(time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(3), purged)

	require.NoError(t, mock.ExpectationsWereMet())
}
