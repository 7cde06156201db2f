package services

import (
	"testing"
	"time"

	"roomdesk-backend/models"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestNights(t *testing.T) {
	cases := []struct {
		name     string
		in, out  time.Time
		expected int
	}{
		{"four full nights", date(2025, 6, 1), date(2025, 6, 5), 4},
		{"one night", date(2025, 6, 1), date(2025, 6, 2), 1},
		{"partial day rounds up", date(2025, 6, 1), date(2025, 6, 2).Add(6 * time.Hour), 2},
		{"under a day is one night", date(2025, 6, 1), date(2025, 6, 1).Add(3 * time.Hour), 1},
		{"same instant floors at one", date(2025, 6, 1), date(2025, 6, 1), 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Nights(tc.in, tc.out); got != tc.expected {
				t.Fatalf("Nights(%v, %v) = %d, want %d", tc.in, tc.out, got, tc.expected)
			}
		})
	}
}

func TestTotalPrice(t *testing.T) {
	if got := TotalPrice(120000, 4, 0); got != 480000 {
		t.Fatalf("got %d, want 480000", got)
	}
	if got := TotalPrice(120000, 4, 30000); got != 450000 {
		t.Fatalf("got %d, want 450000", got)
	}
	// A voucher larger than the stay floors at zero, never negative.
	if got := TotalPrice(120000, 1, 999999); got != 0 {
		t.Fatalf("got %d, want 0", got)
	}
}

func TestFormatReference(t *testing.T) {
	if got := FormatReference("BK", 2025, 42); got != "BK-2025-000042" {
		t.Fatalf("got %q", got)
	}
	if got := FormatReference("RD", 2026, 1234567); got != "RD-2026-1234567" {
		t.Fatalf("sequence beyond six digits must not truncate: %q", got)
	}
}

func validDraft() BookingDraft {
	return BookingDraft{
		FirstName:  "Ada",
		LastName:   "Lovelace",
		Email:      "ada@example.com",
		RoomTypeID: 1,
		CheckIn:    date(2025, 6, 1),
		CheckOut:   date(2025, 6, 5),
		Guests:     2,
	}
}

func TestBookingDraftValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		d := validDraft()
		if err := d.validate(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing first name", func(t *testing.T) {
		d := validDraft()
		d.FirstName = "  "
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("bad email", func(t *testing.T) {
		d := validDraft()
		d.Email = "not-an-email"
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("checkout before checkin rejected", func(t *testing.T) {
		d := validDraft()
		d.CheckIn, d.CheckOut = d.CheckOut, d.CheckIn
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("checkout equal to checkin rejected", func(t *testing.T) {
		d := validDraft()
		d.CheckOut = d.CheckIn
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("negative discount rejected", func(t *testing.T) {
		d := validDraft()
		d.Discount = -1
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown source rejected", func(t *testing.T) {
		d := validDraft()
		d.Source = "carrier-pigeon"
		if err := d.validate(); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestFinalizeBooking(t *testing.T) {
	rt := &models.RoomType{ID: 1, Name: "Deluxe", PricePerNight: 250000}

	t.Run("derives price from room type when absent", func(t *testing.T) {
		d := validDraft()
		b := FinalizeBooking(&d, rt)

		if b.PricePerNight != 250000 {
			t.Fatalf("price not copied from room type: %d", b.PricePerNight)
		}
		if b.Nights != 4 {
			t.Fatalf("nights = %d, want 4", b.Nights)
		}
		if b.TotalPrice != 1000000 {
			t.Fatalf("total = %d, want 1000000", b.TotalPrice)
		}
		if b.Status != models.StatusPending {
			t.Fatalf("online booking must start pending, got %s", b.Status)
		}
		if b.Source != models.SourceOnline {
			t.Fatalf("empty source must default to online, got %s", b.Source)
		}
	})

	t.Run("explicit price wins over room type", func(t *testing.T) {
		d := validDraft()
		price := int64(100000)
		d.PricePerNight = &price
		b := FinalizeBooking(&d, rt)

		if b.PricePerNight != 100000 || b.TotalPrice != 400000 {
			t.Fatalf("price=%d total=%d", b.PricePerNight, b.TotalPrice)
		}
	})

	t.Run("staff-entered bookings start confirmed", func(t *testing.T) {
		for _, src := range []string{models.SourceWalkIn, models.SourcePhone} {
			d := validDraft()
			d.Source = src
			if b := FinalizeBooking(&d, rt); b.Status != models.StatusConfirmed {
				t.Fatalf("source %s: status %s, want confirmed", src, b.Status)
			}
		}
	})

	t.Run("discount flows into total", func(t *testing.T) {
		d := validDraft()
		d.Discount = 50000
		if b := FinalizeBooking(&d, rt); b.TotalPrice != 950000 {
			t.Fatalf("total = %d, want 950000", b.TotalPrice)
		}
	})
}

func TestApplyTransition(t *testing.T) {
	now := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)

	t.Run("check-in without unit is rejected untouched", func(t *testing.T) {
		b := models.Booking{Status: models.StatusConfirmed}
		err := applyTransition(&b, models.StatusCheckedIn, now)
		if !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
		if b.Status != models.StatusConfirmed || b.ActualCheckIn != nil {
			t.Fatalf("rejected transition must not mutate: %+v", b)
		}
	})

	t.Run("first check-in stamps arrival", func(t *testing.T) {
		b := models.Booking{Status: models.StatusConfirmed, AssignedUnit: "101"}
		if err := applyTransition(&b, models.StatusCheckedIn, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Status != models.StatusCheckedIn {
			t.Fatalf("status = %s", b.Status)
		}
		if b.ActualCheckIn == nil || !b.ActualCheckIn.Equal(now) {
			t.Fatalf("arrival not stamped: %v", b.ActualCheckIn)
		}
	})

	t.Run("re-saving checked-in does not restamp", func(t *testing.T) {
		stamped := now.Add(-2 * time.Hour)
		b := models.Booking{Status: models.StatusCheckedIn, AssignedUnit: "101", ActualCheckIn: &stamped}
		if err := applyTransition(&b, models.StatusCheckedIn, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !b.ActualCheckIn.Equal(stamped) {
			t.Fatalf("arrival restamped: %v", b.ActualCheckIn)
		}
	})

	t.Run("checkout stamps departure once", func(t *testing.T) {
		in := now.Add(-24 * time.Hour)
		b := models.Booking{Status: models.StatusCheckedIn, AssignedUnit: "101", ActualCheckIn: &in}
		if err := applyTransition(&b, models.StatusCheckedOut, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.ActualCheckOut == nil || !b.ActualCheckOut.Equal(now) {
			t.Fatalf("departure not stamped: %v", b.ActualCheckOut)
		}
		if !b.ActualCheckIn.Equal(in) {
			t.Fatalf("arrival must survive checkout: %v", b.ActualCheckIn)
		}
	})

	t.Run("checked-out is terminal", func(t *testing.T) {
		b := models.Booking{Status: models.StatusCheckedOut, AssignedUnit: "101"}
		if err := applyTransition(&b, models.StatusPending, now); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		b := models.Booking{Status: models.StatusPending}
		if err := applyTransition(&b, "teleported", now); !IsValidation(err) {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("cancel from pending", func(t *testing.T) {
		b := models.Booking{Status: models.StatusPending}
		if err := applyTransition(&b, models.StatusCancelled, now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if b.Status != models.StatusCancelled {
			t.Fatalf("status = %s", b.Status)
		}
	})
}

func TestCreateBooking_AllocatesSequencedReference(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	year := time.Now().UTC().Year()

	mock.ExpectQuery("SELECT (.+) FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_per_night"}).
			AddRow(1, "Deluxe", 250000))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `booking_sequences` (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"year", "counter"}).AddRow(year, 41))
	mock.ExpectExec("UPDATE `booking_sequences`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `bookings`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	d := validDraft()
	booking, err := svc.CreateBooking(&d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := FormatReference("BK", year, 42)
	if booking.Reference != want {
		t.Fatalf("reference = %q, want %q", booking.Reference, want)
	}
	if booking.TotalPrice != 1000000 {
		t.Fatalf("total = %d, want 1000000", booking.TotalPrice)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBooking_FirstOfYearCreatesSequenceRow(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	year := time.Now().UTC().Year()

	mock.ExpectQuery("SELECT (.+) FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price_per_night"}).
			AddRow(1, "Deluxe", 250000))

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT (.+) FROM `booking_sequences` (.+)FOR UPDATE").
		WillReturnRows(sqlmock.NewRows([]string{"year", "counter"}))
	mock.ExpectExec("INSERT INTO `booking_sequences`").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `bookings`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	d := validDraft()
	booking, err := svc.CreateBooking(&d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := FormatReference("BK", year, 1); booking.Reference != want {
		t.Fatalf("reference = %q, want %q", booking.Reference, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestCreateBooking_UnknownRoomType(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	mock.ExpectQuery("SELECT (.+) FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	d := validDraft()
	if _, err := svc.CreateBooking(&d); !IsNotFound(err) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestCreateBooking_RejectsInvalidDraftBeforeAnyQuery(t *testing.T) {
	gdb, _ := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	d := validDraft()
	d.CheckOut = d.CheckIn
	if _, err := svc.CreateBooking(&d); !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTransitionStatus_ChecksInAndStamps(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "status", "assigned_unit"}).
			AddRow(5, "BK-2025-000005", models.StatusConfirmed, "101"))
	mock.ExpectExec("UPDATE `bookings`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	booking, err := svc.TransitionStatus(5, models.StatusCheckedIn)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != models.StatusCheckedIn {
		t.Fatalf("status = %s", booking.Status)
	}
	if booking.ActualCheckIn == nil {
		t.Fatal("arrival timestamp not stamped")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestTransitionStatus_CheckInWithoutUnitRejected(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	// No UPDATE expectation: the rejection must happen before any write.
	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "reference", "status", "assigned_unit"}).
			AddRow(5, "BK-2025-000005", models.StatusConfirmed, ""))

	_, err := svc.TransitionStatus(5, models.StatusCheckedIn)
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestAssignUnit_OccupiedUnitConflicts(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "status", "check_in", "check_out"}).
			AddRow(8, 1, models.StatusConfirmed, date(2025, 6, 1), date(2025, 6, 5)))

	// Availability for the booking's dates, excluding booking 8 itself.
	mock.ExpectQuery("SELECT (.+) FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_units"}).
			AddRow(1, "Deluxe", 3))
	mock.ExpectQuery("SELECT (.+) FROM `room_units`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "label"}).
			AddRow(1, 1, "101").
			AddRow(2, 1, "102").
			AddRow(3, 1, "103"))
	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "assigned_unit", "status"}).
			AddRow(9, 1, "101", models.StatusCheckedIn))

	_, err := svc.AssignUnit(8, "101")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestAssignUnit_UnknownLabelRejected(t *testing.T) {
	gdb, mock := openMockDB(t)
	svc := NewBookingService(gdb, NewAvailabilityService(gdb), NewLogNotifier(), "BK")

	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "status", "check_in", "check_out"}).
			AddRow(8, 1, models.StatusConfirmed, date(2025, 6, 1), date(2025, 6, 5)))
	mock.ExpectQuery("SELECT (.+) FROM `room_types`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "total_units"}).
			AddRow(1, "Deluxe", 3))
	mock.ExpectQuery("SELECT (.+) FROM `room_units`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "label"}).
			AddRow(1, 1, "101"))
	mock.ExpectQuery("SELECT (.+) FROM `bookings`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_type_id", "assigned_unit", "status"}))

	_, err := svc.AssignUnit(8, "707")
	if !IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
