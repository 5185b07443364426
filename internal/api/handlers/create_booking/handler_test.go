package create_booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapnex/GC-SlotService/internal/api/handlers"
	"github.com/tapnex/GC-SlotService/internal/api/middleware"
	createBooking "github.com/tapnex/GC-SlotService/internal/usecase/create_booking"
)

type fakeUseCase struct {
	err error
}

func (f *fakeUseCase) Execute(_ context.Context, _ *createBooking.Request) (*createBooking.Response, error) {
	return nil, f.err
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func doRequest(t *testing.T, uc CreateBookingUseCase) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(CreateBookingRequest{SlotID: 10, BookingType: "SHARED", Spots: 2})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", bytes.NewReader(body))
	req.Header.Set("X-User-ID", "7")
	rec := httptest.NewRecorder()

	h := NewHandler(uc, nopLogger{})
	middleware.Auth(http.HandlerFunc(h.Handle)).ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var resp handlers.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

func TestHandleNotEnoughSpotsKeepsDetail(t *testing.T) {
	cause := fmt.Errorf("%w: only 1 spot(s) available, 3 spot(s) held by reservations awaiting payment",
		createBooking.ErrNotEnoughSpots)
	rec := doRequest(t, &fakeUseCase{err: cause})

	assert.Equal(t, http.StatusConflict, rec.Code)
	// клиент видит, сколько мест свободно и чем заняты остальные
	assert.Equal(t,
		"not enough spots available: only 1 spot(s) available, 3 spot(s) held by reservations awaiting payment",
		decodeError(t, rec))
}

func TestHandleSlotNotEmptyKeepsDetail(t *testing.T) {
	cause := fmt.Errorf("%w: 2 spot(s) already booked", createBooking.ErrSlotNotEmpty)
	rec := doRequest(t, &fakeUseCase{err: cause})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "slot already has bookings: 2 spot(s) already booked", decodeError(t, rec))
}

func TestHandleSlotReserved(t *testing.T) {
	rec := doRequest(t, &fakeUseCase{err: createBooking.ErrSlotReserved})

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, msgSlotReserved, decodeError(t, rec))
}
