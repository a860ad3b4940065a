package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/homeinv/internal/store"
)

var errDiskIO = errors.New("disk I/O error")

func newMockLocationService(t *testing.T) (*LocationService, sqlmock.Sqlmock) {
	t.Helper()
	d, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	svc := NewLocationService(
		store.NewRoomStore(d, nil),
		store.NewContainerStore(d, nil),
		store.NewSubContainerStore(d, nil),
		store.NewThirdContainerStore(d, nil),
		store.NewItemStore(d, nil),
		slog.Default(),
	)
	return svc, mock
}

func TestDeleteContainer_StopsAtFailedStep(t *testing.T) {
	svc, mock := newMockLocationService(t)

	mock.ExpectQuery(`SELECT .+ FROM containers`).
		WithArgs("Bedroom", "Closet").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room", "name", "has_sub_container"}).
			AddRow(1, "Bedroom", "Closet", true))
	mock.ExpectExec(`DELETE FROM third_containers`).
		WithArgs("Bedroom", "Closet").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM sub_containers`).
		WithArgs("Bedroom", "Closet").
		WillReturnError(errDiskIO)

	err := svc.DeleteContainer(context.Background(), "Bedroom", "Closet")
	require.Error(t, err)
	assert.ErrorIs(t, err, errDiskIO)
	assert.Contains(t, err.Error(), "delete sub containers")

	// Neither the container row nor the items were touched.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRenameRoom_ItemFailureKeepsEarlierSteps(t *testing.T) {
	svc, mock := newMockLocationService(t)

	mock.ExpectQuery(`SELECT id, name FROM rooms`).
		WithArgs("Bedroom").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Bedroom"))
	mock.ExpectQuery(`SELECT id, name FROM rooms`).
		WithArgs("Guest Room").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))
	mock.ExpectExec(`UPDATE third_containers SET room`).
		WithArgs("Guest Room", "Bedroom").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE sub_containers SET room`).
		WithArgs("Guest Room", "Bedroom").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE containers SET room`).
		WithArgs("Guest Room", "Bedroom").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE rooms SET name`).
		WithArgs("Guest Room", "Bedroom").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE items SET room`).
		WithArgs("Guest Room", "Bedroom").
		WillReturnError(errDiskIO)

	err := svc.RenameRoom(context.Background(), "Bedroom", "Guest Room")
	assert.ErrorIs(t, err, errDiskIO)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRoom_RoomRowIsLast(t *testing.T) {
	svc, mock := newMockLocationService(t)
	mock.MatchExpectationsInOrder(true)

	mock.ExpectQuery(`SELECT id, name FROM rooms`).
		WithArgs("Garage").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(3, "Garage"))
	for _, stmt := range []string{
		`DELETE FROM third_containers WHERE room`,
		`DELETE FROM sub_containers WHERE room`,
		`DELETE FROM containers WHERE room`,
		`DELETE FROM items WHERE room`,
		`DELETE FROM rooms WHERE name`,
	} {
		mock.ExpectExec(stmt).WithArgs("Garage").WillReturnResult(sqlmock.NewResult(0, 1))
	}

	require.NoError(t, svc.DeleteRoom(context.Background(), "Garage"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunSteps_CancelledContextStopsBeforeNextStep(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran []string

	err := runSteps(ctx, slog.Default(), "test procedure", nil, []step{
		single("first", func(context.Context) error {
			ran = append(ran, "first")
			cancel()
			return nil
		}),
		single("second", func(context.Context) error {
			ran = append(ran, "second")
			return nil
		}),
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"first"}, ran)
}
