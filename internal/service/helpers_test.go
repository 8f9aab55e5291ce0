package service

import (
	"context"
	"sync"
	"time"

	"motorent-backend/internal/domain"
	"motorent-backend/internal/gateway"
	"motorent-backend/internal/repository"
	"motorent-backend/internal/repository/memory"
	"motorent-backend/internal/security"
)

// recordingDispatcher collects effects synchronously so tests can
// assert on them without racing a goroutine.
type recordingDispatcher struct {
	mu      sync.Mutex
	effects []domain.Effect
}

func (d *recordingDispatcher) Dispatch(effects []domain.Effect) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.effects = append(d.effects, effects...)
}

func (d *recordingDispatcher) byTemplate(t domain.EffectTemplate) []domain.Effect {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []domain.Effect
	for _, e := range d.effects {
		if e.Template == t {
			out = append(out, e)
		}
	}
	return out
}

// countingGateway counts calls through to the wrapped gateway.
type countingGateway struct {
	inner    gateway.Gateway
	captures int
	refunds  int
}

func (g *countingGateway) Capture(ctx context.Context, req gateway.CaptureRequest) (*gateway.CaptureResult, error) {
	g.captures++
	return g.inner.Capture(ctx, req)
}

func (g *countingGateway) Refund(ctx context.Context, externalID string, amountYen int64, reason string) (*gateway.RefundResult, error) {
	g.refunds++
	return g.inner.Refund(ctx, externalID, amountYen, reason)
}

// brokenPaymentRepo fails the capture-and-confirm write while leaving
// every other operation intact.
type brokenPaymentRepo struct {
	repository.PaymentRepository
}

func (brokenPaymentRepo) RecordCaptureAndConfirm(ctx context.Context, p *domain.Payment, rv *domain.Reservation) error {
	return domain.E(domain.CodeInternal, "datastore write failed")
}

// brokenPaymentListRepo fails every payment lookup.
type brokenPaymentListRepo struct {
	repository.PaymentRepository
}

func (brokenPaymentListRepo) ListByReservation(ctx context.Context, reservationID int64) ([]domain.Payment, error) {
	return nil, domain.E(domain.CodeInternal, "datastore read failed")
}

// brokenAssetRepo fails every asset lookup.
type brokenAssetRepo struct {
	repository.AssetRepository
}

func (brokenAssetRepo) GetByID(ctx context.Context, id int64) (*domain.RentalAsset, error) {
	return nil, domain.E(domain.CodeInternal, "datastore read failed")
}

type fixture struct {
	store      *memory.Store
	sandbox    *gateway.Sandbox
	gw         *countingGateway
	dispatcher *recordingDispatcher
	booking    BookingService
	payments   PaymentService
}

const (
	testVendorID = int64(1)
	testAssetID  = int64(1)
	testRenterID = int64(42)
	testOvertime = int64(2000)
)

var (
	renterActor = Actor{UserID: testRenterID, Role: security.RoleRenter}
	vendorActor = Actor{UserID: 7, Role: security.RoleVendor, VendorID: testVendorID}
	adminActor  = Actor{UserID: 99, Role: security.RoleAdmin}
)

func newFixture() *fixture {
	store := memory.NewStore()

	store.PutVendor(domain.Vendor{ID: testVendorID, Name: "Shinjuku Moto Rental", Email: "desk@shinjuku-moto.example"})
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		store.PutHours(domain.VendorHours{VendorID: testVendorID, Weekday: wd, Open: "08:00", Close: "20:00"})
	}
	store.PutAsset(domain.RentalAsset{
		ID:                testAssetID,
		VendorID:          testVendorID,
		Name:              "CB500X",
		SizeClass:         domain.SizeClassMid,
		Rate4hYen:         4000,
		RateDayYen:        6000,
		Rate24hYen:        8000,
		Rate32hYen:        10000,
		CoverageDailyYen:  1000,
		OvertimeHourlyYen: 1500,
		Available:         true,
	})

	sandbox := gateway.NewSandbox()
	gw := &countingGateway{inner: sandbox}
	dispatcher := &recordingDispatcher{}

	availability := NewAvailabilityService(store.Assets(), store.Vendors(), store.Reservations())
	payments := NewPaymentService(store.Payments(), store.Reservations(), gw, dispatcher)
	booking := NewBookingService(availability, store.Reservations(), store.AddOns(), store.Coupons(),
		store.Vendors(), store.Assets(), payments, dispatcher, testOvertime)

	return &fixture{
		store:      store,
		sandbox:    sandbox,
		gw:         gw,
		dispatcher: dispatcher,
		booking:    booking,
		payments:   payments,
	}
}

// rentalWindow is a daytime interval well inside the seeded 08:00-20:00
// operating hours, far enough in the future that coupon validity
// windows anchored on time.Now still cover it.
func rentalWindow(hours int) (time.Time, time.Time) {
	start := time.Date(2027, 4, 5, 9, 0, 0, 0, time.UTC)
	return start, start.Add(time.Duration(hours) * time.Hour)
}

func (f *fixture) mustBook(hours int) *domain.Reservation {
	start, end := rentalWindow(hours)
	rv, err := f.booking.CreateReservation(context.Background(), CreateReservationRequest{
		AssetID:  testAssetID,
		RenterID: testRenterID,
		Start:    start,
		End:      end,
	})
	if err != nil {
		panic(err)
	}
	return rv
}
