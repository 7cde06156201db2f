package services

import (
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"roomdesk-backend/models"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingDraft carries only what the caller supplies. All derived fields
// (nights, price fallback, total) come out of FinalizeBooking, so there is
// exactly one place computing them.
type BookingDraft struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`

	RoomTypeID uint      `json:"roomTypeId"`
	CheckIn    time.Time `json:"checkIn"`
	CheckOut   time.Time `json:"checkOut"`
	Guests     int       `json:"guests"`

	// Optional overrides; zero/nil means "derive from the room type".
	PricePerNight *int64 `json:"pricePerNight,omitempty"`
	Discount      int64  `json:"discount"`

	Source        string `json:"source"`
	PaymentMethod string `json:"paymentMethod"`
}

type BookingService struct {
	DB        *gorm.DB
	Available *AvailabilityService
	Notifier  Notifier
	RefPrefix string
}

func NewBookingService(db *gorm.DB, avail *AvailabilityService, notifier Notifier, refPrefix string) *BookingService {
	if refPrefix == "" {
		refPrefix = "BK"
	}
	return &BookingService{DB: db, Available: avail, Notifier: notifier, RefPrefix: refPrefix}
}

// Nights is the number of chargeable nights for a stay, never less than 1.
// Partial days round up.
func Nights(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	nights := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		nights++
	}
	if nights < 1 {
		nights = 1
	}
	return nights
}

// TotalPrice is price*nights minus discount, floored at zero — a voucher
// larger than the stay never produces a negative invoice.
func TotalPrice(pricePerNight int64, nights int, discount int64) int64 {
	total := pricePerNight*int64(nights) - discount
	if total < 0 {
		total = 0
	}
	return total
}

func (d *BookingDraft) validate() error {
	if strings.TrimSpace(d.FirstName) == "" {
		return ValidationError{Field: "firstName", Msg: "required"}
	}
	if strings.TrimSpace(d.LastName) == "" {
		return ValidationError{Field: "lastName", Msg: "required"}
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(d.Email)); err != nil {
		return ValidationError{Field: "email", Msg: "provide a valid email"}
	}
	if d.RoomTypeID == 0 {
		return ValidationError{Field: "roomTypeId", Msg: "required"}
	}
	if d.CheckIn.IsZero() || d.CheckOut.IsZero() {
		return ValidationError{Field: "checkIn", Msg: "check-in and check-out are required"}
	}
	if !d.CheckOut.After(d.CheckIn) {
		return ValidationError{Field: "checkOut", Msg: "check-out must be after check-in"}
	}
	if d.Guests < 1 {
		return ValidationError{Field: "guests", Msg: "at least one guest"}
	}
	if d.Discount < 0 {
		return ValidationError{Field: "discount", Msg: "must not be negative"}
	}
	if d.Source != "" && d.Source != models.SourceOnline && d.Source != models.SourceWalkIn && d.Source != models.SourcePhone {
		return ValidationError{Field: "source", Msg: "unknown booking source"}
	}
	return nil
}

// FinalizeBooking turns a validated draft into a complete Booking: price
// falls back to the room type's rate when the draft carries none, nights
// and total are derived. Staff-entered bookings (walk-in, phone) start
// confirmed; online ones start pending.
func FinalizeBooking(draft *BookingDraft, rt *models.RoomType) models.Booking {
	price := rt.PricePerNight
	if draft.PricePerNight != nil {
		price = *draft.PricePerNight
	}

	nights := Nights(draft.CheckIn, draft.CheckOut)

	source := draft.Source
	if source == "" {
		source = models.SourceOnline
	}
	status := models.StatusPending
	if source == models.SourceWalkIn || source == models.SourcePhone {
		status = models.StatusConfirmed
	}

	return models.Booking{
		FirstName:     strings.TrimSpace(draft.FirstName),
		LastName:      strings.TrimSpace(draft.LastName),
		Email:         strings.TrimSpace(draft.Email),
		Phone:         strings.TrimSpace(draft.Phone),
		RoomTypeID:    rt.ID,
		CheckIn:       draft.CheckIn,
		CheckOut:      draft.CheckOut,
		Guests:        draft.Guests,
		Nights:        nights,
		PricePerNight: price,
		Discount:      draft.Discount,
		TotalPrice:    TotalPrice(price, nights, draft.Discount),
		PaymentStatus: models.PaymentUnpaid,
		PaymentMethod: draft.PaymentMethod,
		Source:        source,
		Status:        status,
	}
}

// FormatReference renders the booking reference PREFIX-YYYY-NNNNNN.
func FormatReference(prefix string, year int, n int64) string {
	return fmt.Sprintf("%s-%d-%06d", prefix, year, n)
}

// CreateBooking validates and commits a new reservation. The reference
// sequence row for the current year is locked and bumped inside the same
// transaction as the insert, so two concurrent creates cannot mint the
// same reference. No availability gate here: capacity is enforced at unit
// assignment and check-in, so the desk can deliberately oversell.
func (s *BookingService) CreateBooking(draft *BookingDraft) (*models.Booking, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}

	var rt models.RoomType
	if err := s.DB.First(&rt, draft.RoomTypeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "room type"}
		}
		return nil, err
	}

	booking := FinalizeBooking(draft, &rt)
	year := time.Now().UTC().Year()

	// Retry once on a duplicate-key race for the first booking of a year,
	// when two transactions both find no sequence row and insert one.
	var err error
	for attempt := 0; attempt < 2; attempt++ {
		err = s.DB.Transaction(func(tx *gorm.DB) error {
			n, seqErr := nextSequence(tx, year)
			if seqErr != nil {
				return seqErr
			}
			booking.Reference = FormatReference(s.RefPrefix, year, n)
			return tx.Create(&booking).Error
		})
		if err == nil || !isDuplicateEntry(err) {
			break
		}
		log.Printf("booking reference collision (attempt %d), retrying", attempt+1)
	}
	if err != nil {
		return nil, err
	}

	s.notify(func() error { return s.Notifier.BookingCreated(&booking) })
	return &booking, nil
}

func nextSequence(tx *gorm.DB, year int) (int64, error) {
	var seq models.BookingSequence
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&seq, "year = ?", year).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		seq = models.BookingSequence{Year: year, Counter: 1}
		if err := tx.Create(&seq).Error; err != nil {
			return 0, err
		}
		return seq.Counter, nil
	}
	if err != nil {
		return 0, err
	}

	seq.Counter++
	if err := tx.Model(&models.BookingSequence{}).
		Where("year = ?", year).
		Update("counter", seq.Counter).Error; err != nil {
		return 0, err
	}
	return seq.Counter, nil
}

func isDuplicateEntry(err error) bool {
	var myErr *mysql.MySQLError
	return errors.As(err, &myErr) && myErr.Number == 1062
}

// applyTransition mutates b for a status move, enforcing the check-in
// guard and one-shot arrival/departure timestamps. It touches nothing on
// rejection.
func applyTransition(b *models.Booking, to string, now time.Time) error {
	if !models.ValidStatus(to) {
		return ValidationError{Field: "status", Msg: "unknown status"}
	}
	if !models.CanTransition(b.Status, to) {
		return ValidationError{Field: "status", Msg: fmt.Sprintf("cannot move from %s to %s", b.Status, to)}
	}
	if to == models.StatusCheckedIn && b.AssignedUnit == "" {
		return ValidationError{Field: "assignedUnit", Msg: "assign a unit before check-in"}
	}

	previous := b.Status
	b.Status = to

	// Stamp only on the first entry into the status; re-saving a booking
	// already checked in must not move the arrival time.
	if to == models.StatusCheckedIn && previous != models.StatusCheckedIn && b.ActualCheckIn == nil {
		t := now
		b.ActualCheckIn = &t
	}
	if to == models.StatusCheckedOut && previous != models.StatusCheckedOut && b.ActualCheckOut == nil {
		t := now
		b.ActualCheckOut = &t
	}
	return nil
}

// TransitionStatus advances a booking through its lifecycle.
func (s *BookingService) TransitionStatus(bookingID uint, to string) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "booking"}
		}
		return nil, err
	}

	previous := booking.Status
	if err := applyTransition(&booking, to, time.Now().UTC()); err != nil {
		return nil, err
	}

	err := s.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]interface{}{
			"status":           booking.Status,
			"actual_check_in":  booking.ActualCheckIn,
			"actual_check_out": booking.ActualCheckOut,
		}).Error
	if err != nil {
		return nil, err
	}

	if previous != booking.Status {
		s.notify(func() error { return s.Notifier.BookingStatusChanged(&booking, previous) })
	}
	return &booking, nil
}

// AssignUnit binds a booking to a physical room. The label must belong to
// the booking's room type and be free for the booking's dates (the booking
// itself is excluded from the overlap check so edits don't self-collide).
func (s *BookingService) AssignUnit(bookingID uint, label string) (*models.Booking, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, ValidationError{Field: "unit", Msg: "required"}
	}

	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "booking"}
		}
		return nil, err
	}

	av, err := s.Available.ComputeAvailability(booking.RoomTypeID, booking.CheckIn, booking.CheckOut, booking.ID)
	if err != nil {
		return nil, err
	}

	known := false
	for _, free := range av.FreeUnits {
		if free == label {
			known = true
			break
		}
	}
	if !known {
		for _, occ := range av.OccupiedUnits {
			if occ == label {
				return nil, ConflictError{Resource: "unit", Msg: fmt.Sprintf("unit %s is occupied for these dates", label)}
			}
		}
		return nil, ValidationError{Field: "unit", Msg: fmt.Sprintf("unit %s does not belong to this room type", label)}
	}

	if err := s.DB.Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Update("assigned_unit", label).Error; err != nil {
		return nil, err
	}
	booking.AssignedUnit = label
	return &booking, nil
}

// BookingUpdate carries the editable fields of an existing booking.
// Nil pointers leave the stored value alone.
type BookingUpdate struct {
	FirstName     *string    `json:"firstName,omitempty"`
	LastName      *string    `json:"lastName,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	CheckIn       *time.Time `json:"checkIn,omitempty"`
	CheckOut      *time.Time `json:"checkOut,omitempty"`
	Guests        *int       `json:"guests,omitempty"`
	PricePerNight *int64     `json:"pricePerNight,omitempty"`
	Discount      *int64     `json:"discount,omitempty"`
	PaymentStatus *string    `json:"paymentStatus,omitempty"`
	PaymentMethod *string    `json:"paymentMethod,omitempty"`
}

// UpdateBooking edits guest details, dates or pricing and re-derives
// nights and total so the stored booking never carries stale numbers.
func (s *BookingService) UpdateBooking(bookingID uint, upd *BookingUpdate) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "booking"}
		}
		return nil, err
	}

	if upd.FirstName != nil {
		booking.FirstName = strings.TrimSpace(*upd.FirstName)
	}
	if upd.LastName != nil {
		booking.LastName = strings.TrimSpace(*upd.LastName)
	}
	if upd.Email != nil {
		if _, err := mail.ParseAddress(strings.TrimSpace(*upd.Email)); err != nil {
			return nil, ValidationError{Field: "email", Msg: "provide a valid email"}
		}
		booking.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.Phone != nil {
		booking.Phone = strings.TrimSpace(*upd.Phone)
	}
	if upd.CheckIn != nil {
		booking.CheckIn = *upd.CheckIn
	}
	if upd.CheckOut != nil {
		booking.CheckOut = *upd.CheckOut
	}
	if !booking.CheckOut.After(booking.CheckIn) {
		return nil, ValidationError{Field: "checkOut", Msg: "check-out must be after check-in"}
	}
	if upd.Guests != nil {
		if *upd.Guests < 1 {
			return nil, ValidationError{Field: "guests", Msg: "at least one guest"}
		}
		booking.Guests = *upd.Guests
	}
	if upd.PricePerNight != nil {
		booking.PricePerNight = *upd.PricePerNight
	}
	if upd.Discount != nil {
		if *upd.Discount < 0 {
			return nil, ValidationError{Field: "discount", Msg: "must not be negative"}
		}
		booking.Discount = *upd.Discount
	}
	if upd.PaymentStatus != nil {
		booking.PaymentStatus = *upd.PaymentStatus
	}
	if upd.PaymentMethod != nil {
		booking.PaymentMethod = *upd.PaymentMethod
	}

	booking.Nights = Nights(booking.CheckIn, booking.CheckOut)
	booking.TotalPrice = TotalPrice(booking.PricePerNight, booking.Nights, booking.Discount)

	if err := s.DB.Save(&booking).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetBooking loads one booking with its room type.
func (s *BookingService) GetBooking(bookingID uint) (*models.Booking, error) {
	var booking models.Booking
	if err := s.DB.Preload("RoomType").First(&booking, bookingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NotFoundError{Resource: "booking"}
		}
		return nil, err
	}
	return &booking, nil
}

// ListBookings returns bookings, optionally filtered by status and by stay
// overlap with [from, to).
func (s *BookingService) ListBookings(status string, from, to time.Time) ([]models.Booking, error) {
	q := s.DB.Model(&models.Booking{}).Order("check_in")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if !from.IsZero() && !to.IsZero() {
		q = q.Where("check_in < ? AND check_out > ?", to, from)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// notify runs a notification best-effort. A failed email never fails or
// rolls back the committed booking; it is logged and swallowed.
func (s *BookingService) notify(fn func() error) {
	if s.Notifier == nil {
		return
	}
	if err := fn(); err != nil {
		log.Printf("notification failed (ignored): %v", err)
	}
}
