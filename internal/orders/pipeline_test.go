package orders

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/bloomhaus/petalboard-backend/pkg/db/models"
	"github.com/bloomhaus/petalboard-backend/pkg/enums"
)

func makeOrder(name, email, phone string, created time.Time, status enums.OrderStatus, slot enums.TimeSlot, pickup time.Time) models.Order {
	return models.Order{
		ID:           uuid.New(),
		CustomerName: name,
		Email:        email,
		Phone:        phone,
		PickupDate:   pickup,
		TimeSlot:     slot,
		Status:       status,
		CreatedAt:    created,
	}
}

func sampleSnapshot() []models.Order {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	return []models.Order{
		makeOrder("Ana Flores", "ana@x.com", "555-0101", base.Add(4*time.Hour), enums.OrderStatusPending, enums.TimeSlotMorning, pickup),
		makeOrder("Ben Rivera", "ben@y.com", "555-0202", base.Add(3*time.Hour), enums.OrderStatusCompleted, enums.TimeSlotAfternoon, pickup.AddDate(0, 0, 1)),
		makeOrder("carla diaz", "carla@x.com", "555-0303", base.Add(2*time.Hour), enums.OrderStatusPending, enums.TimeSlotEvening, pickup),
		makeOrder("Dora Kim", "dora@z.com", "777-0404", base.Add(time.Hour), enums.OrderStatusProcessing, enums.TimeSlotMorning, pickup.AddDate(0, 0, 2)),
		makeOrder("Eli Moss", "eli@x.com", "555-0505", base, enums.OrderStatusCancelled, enums.TimeSlotAfternoon, pickup.AddDate(0, 0, 1)),
	}
}

func TestApplyQuerySearchMatchesNameEmailOrPhone(t *testing.T) {
	snapshot := sampleSnapshot()

	cases := []struct {
		search string
		want   []string
	}{
		{"ana", []string{"Ana Flores"}},
		{"@x.com", []string{"Ana Flores", "carla diaz", "Eli Moss"}},
		{"777", []string{"Dora Kim"}},
		{"CARLA", []string{"carla diaz"}},
		{"", []string{"Ana Flores", "Ben Rivera", "carla diaz", "Dora Kim", "Eli Moss"}},
	}

	for _, tc := range cases {
		page := ApplyQuery(snapshot, Query{SearchText: tc.search, SortField: SortCreatedAt, SortDir: SortDesc})
		if page.TotalCount != len(tc.want) {
			t.Fatalf("search %q: expected %d matches, got %d", tc.search, len(tc.want), page.TotalCount)
		}
		got := map[string]bool{}
		for _, order := range page.Orders {
			got[order.CustomerName] = true
		}
		for _, name := range tc.want {
			if !got[name] {
				t.Fatalf("search %q: expected %s in results", tc.search, name)
			}
		}
	}
}

func TestApplyQueryFilterSoundnessAndCompleteness(t *testing.T) {
	snapshot := sampleSnapshot()
	pickup := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	q := Query{
		SearchText:   "@x.com",
		StatusFilter: string(enums.OrderStatusPending),
		PickupDate:   pickup,
	}
	page := ApplyQuery(snapshot, q)

	// Soundness: every result satisfies all three predicates.
	for _, order := range page.Orders {
		if order.Status != enums.OrderStatusPending {
			t.Fatalf("order %s fails status predicate", order.CustomerName)
		}
		if order.PickupDay() != pickup.Format(time.DateOnly) {
			t.Fatalf("order %s fails date predicate", order.CustomerName)
		}
	}

	// Completeness: both matching snapshot orders appear.
	if page.TotalCount != 2 {
		t.Fatalf("expected 2 matches, got %d", page.TotalCount)
	}
}

func TestApplyQueryStatusAllMeansNoConstraint(t *testing.T) {
	snapshot := sampleSnapshot()
	page := ApplyQuery(snapshot, Query{StatusFilter: StatusAll})
	if page.TotalCount != len(snapshot) {
		t.Fatalf("expected all %d orders, got %d", len(snapshot), page.TotalCount)
	}
}

func TestApplyQueryPaginationCoversAllRowsExactlyOnce(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	snapshot := make([]models.Order, 0, 37)
	for i := 0; i < 37; i++ {
		snapshot = append(snapshot, makeOrder(
			fmt.Sprintf("Customer %02d", i),
			fmt.Sprintf("c%02d@x.com", i),
			fmt.Sprintf("555-%04d", i),
			base.Add(time.Duration(i)*time.Minute),
			enums.OrderStatusPending,
			enums.TimeSlotMorning,
			base.AddDate(0, 0, 7),
		))
	}

	first := ApplyQuery(snapshot, Query{SortField: SortCreatedAt, SortDir: SortAsc})
	wantPages := 4 // ceil(37/10)
	if first.TotalPages != wantPages {
		t.Fatalf("expected %d pages, got %d", wantPages, first.TotalPages)
	}

	seen := map[uuid.UUID]int{}
	var concatenated []models.Order
	for pageIndex := 0; pageIndex < first.TotalPages; pageIndex++ {
		page := ApplyQuery(snapshot, Query{SortField: SortCreatedAt, SortDir: SortAsc, PageIndex: pageIndex})
		if pageIndex < first.TotalPages-1 && len(page.Orders) != PageSize {
			t.Fatalf("page %d: expected %d rows, got %d", pageIndex, PageSize, len(page.Orders))
		}
		for _, order := range page.Orders {
			seen[order.ID]++
			concatenated = append(concatenated, order)
		}
	}

	if len(concatenated) != len(snapshot) {
		t.Fatalf("expected %d rows across pages, got %d", len(snapshot), len(concatenated))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("order %s appeared %d times", id, count)
		}
	}
	for i := 1; i < len(concatenated); i++ {
		if concatenated[i].CreatedAt.Before(concatenated[i-1].CreatedAt) {
			t.Fatalf("concatenated pages out of order at index %d", i)
		}
	}
}

func TestApplyQueryPageBeyondEndIsEmpty(t *testing.T) {
	page := ApplyQuery(sampleSnapshot(), Query{PageIndex: 5})
	if len(page.Orders) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(page.Orders))
	}
	if page.TotalCount != 5 {
		t.Fatalf("expected total count 5, got %d", page.TotalCount)
	}
}

func TestApplyQuerySortIsStableForEqualKeys(t *testing.T) {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	pickup := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	// Same pickup date: ties must keep snapshot order.
	snapshot := []models.Order{
		makeOrder("First", "f@x.com", "1", base.Add(3*time.Hour), enums.OrderStatusPending, enums.TimeSlotMorning, pickup),
		makeOrder("Second", "s@x.com", "2", base.Add(2*time.Hour), enums.OrderStatusPending, enums.TimeSlotMorning, pickup),
		makeOrder("Third", "t@x.com", "3", base.Add(time.Hour), enums.OrderStatusPending, enums.TimeSlotMorning, pickup),
	}

	page := ApplyQuery(snapshot, Query{SortField: SortPickupDate, SortDir: SortAsc})
	wantNames := []string{"First", "Second", "Third"}
	for i, want := range wantNames {
		if page.Orders[i].CustomerName != want {
			t.Fatalf("index %d: expected %s, got %s", i, want, page.Orders[i].CustomerName)
		}
	}
}

func TestApplyQueryDescendingIsExactReverse(t *testing.T) {
	snapshot := sampleSnapshot()

	fields := []SortField{SortCreatedAt, SortPickupDate, SortCustomerName, SortPhone, SortTimeSlot}
	for _, field := range fields {
		asc := ApplyQuery(snapshot, Query{SortField: field, SortDir: SortAsc})
		desc := ApplyQuery(snapshot, Query{SortField: field, SortDir: SortDesc})

		if len(asc.Orders) != len(desc.Orders) {
			t.Fatalf("field %s: asc/desc length mismatch", field)
		}
		for i := range asc.Orders {
			mirror := desc.Orders[len(desc.Orders)-1-i]
			if asc.Orders[i].ID != mirror.ID {
				t.Fatalf("field %s: descending is not the exact reverse at index %d", field, i)
			}
		}
	}
}

func TestApplyQuerySortsNameCaseInsensitively(t *testing.T) {
	page := ApplyQuery(sampleSnapshot(), Query{SortField: SortCustomerName, SortDir: SortAsc})
	wantNames := []string{"Ana Flores", "Ben Rivera", "carla diaz", "Dora Kim", "Eli Moss"}
	for i, want := range wantNames {
		if page.Orders[i].CustomerName != want {
			t.Fatalf("index %d: expected %s, got %s", i, want, page.Orders[i].CustomerName)
		}
	}
}

func TestApplyQueryDoesNotMutateSnapshot(t *testing.T) {
	snapshot := sampleSnapshot()
	originalFirst := snapshot[0].ID

	_ = ApplyQuery(snapshot, Query{SortField: SortCustomerName, SortDir: SortAsc})

	if snapshot[0].ID != originalFirst {
		t.Fatal("expected snapshot to be left untouched")
	}
}

func TestApplyQueryIsIdempotent(t *testing.T) {
	snapshot := sampleSnapshot()
	q := Query{SearchText: "x.com", SortField: SortCustomerName, SortDir: SortDesc}

	first := ApplyQuery(snapshot, q)
	second := ApplyQuery(snapshot, q)

	if first.TotalCount != second.TotalCount || len(first.Orders) != len(second.Orders) {
		t.Fatal("expected identical results across runs")
	}
	for i := range first.Orders {
		if first.Orders[i].ID != second.Orders[i].ID {
			t.Fatalf("expected identical order at index %d", i)
		}
	}
}
