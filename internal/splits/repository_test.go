package splits

import (
	"context"
	"errors"
	"testing"

	"organizer/internal/bookings"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRepository(t *testing.T) (Repository, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewRepository(db, bookings.NewRepository(db)), mock
}

func TestFindByBookingIDNotFound(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	split, err := repo.FindByBookingID(context.Background(), 7)
	assert.NoError(t, err)
	assert.Nil(t, split)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByBookingIDLoadsOrderedParticipants(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "pricing_mode", "status", "total_cents"}).
			AddRow(1, 7, "FIXED", "OPEN", 10560))
	mock.ExpectQuery(`SELECT \* FROM "booking_split_participants" WHERE "booking_split_participants"."split_id" = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "split_id", "share_cents", "status"}).
			AddRow(1, 1, 5280, "PAID").
			AddRow(2, 1, 5280, "PENDING"))

	split, err := repo.FindByBookingID(context.Background(), 7)
	require.NoError(t, err)
	require.NotNil(t, split)
	require.Len(t, split.Participants, 2)
	assert.Equal(t, int64(5280), split.PaidCents())
	assert.True(t, split.IsLocked())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionLocksSplitRow(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1 ORDER BY "booking_splits"."id" LIMIT .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "status"}).AddRow(1, 7, "OPEN"))
	mock.ExpectQuery(`SELECT \* FROM "booking_split_participants" WHERE split_id = \$1 ORDER BY created_at ASC, id ASC`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "split_id", "status"}).AddRow(3, 1, "PENDING"))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "booking_split_participants" WHERE split_id = \$1 AND status <> \$2`).
		WithArgs(1, ParticipantStatusPaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectCommit()

	var unpaid int64
	err := repo.Transaction(context.Background(), func(tx TxRepository) error {
		split, err := tx.LockByBookingID(context.Background(), 7)
		if err != nil {
			return err
		}
		require.NotNil(t, split)
		require.Len(t, split.Participants, 1)
		unpaid, err = tx.CountUnpaid(context.Background(), split.ID)
		return err
	})

	assert.NoError(t, err)
	assert.Equal(t, int64(1), unpaid)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRollsBackOnError(t *testing.T) {
	repo, mock := setupRepository(t)
	boom := errors.New("boom")

	mock.ExpectBegin()
	mock.ExpectRollback()

	err := repo.Transaction(context.Background(), func(tx TxRepository) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkExpired(t *testing.T) {
	repo, mock := setupRepository(t)

	n, err := repo.MarkExpired(context.Background(), nil)
	assert.NoError(t, err)
	assert.Zero(t, n)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "booking_splits" SET "status"=\$1,"updated_at"=\$2 WHERE id IN \(\$3,\$4\) AND status = \$5`).
		WithArgs(StatusExpired, sqlmock.AnyArg(), 1, 2, StatusOpen).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err = repo.MarkExpired(context.Background(), []uint{1, 2})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func writeSplit(ctx context.Context, repo Repository, participants []BookingSplitParticipant) (*BookingSplit, error) {
	var saved *BookingSplit
	err := repo.Transaction(ctx, func(tx TxRepository) error {
		split, err := tx.LockByBookingID(ctx, 7)
		if err != nil {
			return err
		}
		if split == nil {
			split = &BookingSplit{BookingID: 7, OrganizationID: 3}
		}
		split.PricingMode = PricingModeFixed
		split.Status = StatusOpen
		split.Currency = "EUR"
		split.TotalCents = 10560
		if err := tx.SaveSplit(ctx, split); err != nil {
			return err
		}
		if err := tx.ReplaceParticipants(ctx, split.ID, participants); err != nil {
			return err
		}
		saved = split
		return nil
	})
	return saved, err
}

func twoParticipants() []BookingSplitParticipant {
	return []BookingSplitParticipant{
		{BaseShareCents: 5000, ShareCents: 5280, PlatformFeeCents: 280, Status: ParticipantStatusPending},
		{BaseShareCents: 5000, ShareCents: 5280, PlatformFeeCents: 280, Status: ParticipantStatusPending},
	}
}

func TestWriteSplitCreatesSplitAndParticipants(t *testing.T) {
	repo, mock := setupRepository(t)
	participants := twoParticipants()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "booking_splits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(`DELETE FROM "booking_split_participants" WHERE split_id = \$1`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "booking_split_participants" .* VALUES \(.+\),\(.+\)`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	split, err := writeSplit(context.Background(), repo, participants)

	require.NoError(t, err)
	assert.Equal(t, uint(9), split.ID)
	assert.Equal(t, uint(9), participants[0].SplitID)
	assert.Equal(t, uint(9), participants[1].SplitID)
	assert.Equal(t, uint(2), participants[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteSplitUpdatesAndReplacesParticipants(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "booking_id", "organization_id", "status"}).AddRow(4, 7, 3, "OPEN"))
	mock.ExpectQuery(`SELECT \* FROM "booking_split_participants" WHERE split_id = \$1`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "split_id", "status"}).AddRow(1, 4, "PENDING"))
	mock.ExpectExec(`UPDATE "booking_splits" SET .* WHERE "id" = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM "booking_split_participants" WHERE split_id = \$1`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO "booking_split_participants"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(6))
	mock.ExpectCommit()

	split, err := writeSplit(context.Background(), repo, twoParticipants())

	require.NoError(t, err)
	assert.Equal(t, uint(4), split.ID)
	// SaveSplit must not write the loaded participants back.
	require.Len(t, split.Participants, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWriteSplitRollsBackWhenParticipantInsertFails(t *testing.T) {
	repo, mock := setupRepository(t)
	insertErr := errors.New("duplicate key value violates unique constraint")

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "booking_splits" WHERE booking_id = \$1 .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectQuery(`INSERT INTO "booking_splits"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(9))
	mock.ExpectExec(`DELETE FROM "booking_split_participants" WHERE split_id = \$1`).
		WithArgs(9).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "booking_split_participants"`).
		WillReturnError(insertErr)
	mock.ExpectRollback()

	_, err := writeSplit(context.Background(), repo, twoParticipants())

	assert.ErrorIs(t, err, insertErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceParticipantsWithNoneOnlyDeletes(t *testing.T) {
	repo, mock := setupRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "booking_split_participants" WHERE split_id = \$1`).
		WithArgs(4).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Transaction(context.Background(), func(tx TxRepository) error {
		return tx.ReplaceParticipants(context.Background(), 4, nil)
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
