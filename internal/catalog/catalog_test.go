package catalog

import (
	"math"
	"testing"

	"github.com/hitoshi/hostelhunt/internal/model"
)

func newFixtureCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New(Fixture())
	if err != nil {
		t.Fatalf("New(Fixture()): %v", err)
	}
	return c
}

func TestNew_Fixture_IsValid(t *testing.T) {
	c := newFixtureCatalog(t)
	if c.Len() != 10 {
		t.Errorf("Len = %d, want 10", c.Len())
	}
	for _, h := range c.All() {
		if h.Currency != model.DefaultCurrency {
			t.Errorf("hostel %d currency = %q, want %q", h.ID, h.Currency, model.DefaultCurrency)
		}
	}
}

func TestNew_DuplicateID_ReturnsError(t *testing.T) {
	_, err := New([]model.Hostel{{ID: 1, Name: "A"}, {ID: 1, Name: "B"}})
	if err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestNew_NonPositiveIDOrEmptyName_ReturnsError(t *testing.T) {
	if _, err := New([]model.Hostel{{ID: 0, Name: "A"}}); err == nil {
		t.Error("expected error for id 0")
	}
	if _, err := New([]model.Hostel{{ID: 2, Name: "  "}}); err == nil {
		t.Error("expected error for empty name")
	}
}

func TestGetByID_Found(t *testing.T) {
	c := newFixtureCatalog(t)

	h := c.GetByID(3)
	if h == nil {
		t.Fatal("expected hostel 3")
	}
	if h.Name != "Step Hill" {
		t.Errorf("Name = %q, want %q", h.Name, "Step Hill")
	}
}

func TestGetByID_Absent_ReturnsNil(t *testing.T) {
	c := newFixtureCatalog(t)

	for _, id := range []int64{0, -1, -42, 999} {
		if h := c.GetByID(id); h != nil {
			t.Errorf("GetByID(%d) = %+v, want nil", id, h)
		}
	}
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	c := newFixtureCatalog(t)

	h := c.GetByID(1)
	h.Name = "mutated"
	h.Amenities[0] = "mutated"

	again := c.GetByID(1)
	if again.Name != "Golden Plate Hostel" || again.Amenities[0] == "mutated" {
		t.Errorf("catalog was mutated through a returned value: %+v", again)
	}
}

func TestSearch_Query_MatchesNameLocationUniversity(t *testing.T) {
	c := newFixtureCatalog(t)

	tests := []struct {
		query  string
		wantID int64
	}{
		{"golden", 1},
		{"MADARAKA", 3},
		{"egerton", 5},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			p := c.Search(Filter{Query: tt.query})
			if p.Total != 1 || p.Hostels[0].ID != tt.wantID {
				t.Errorf("Search(%q) = total %d, want single hostel %d", tt.query, p.Total, tt.wantID)
			}
		})
	}
}

func TestSearch_PriceRangeAndRoomType(t *testing.T) {
	c := newFixtureCatalog(t)

	p := c.Search(Filter{MinPrice: 4000, MaxPrice: 6000, RoomTypes: []string{"Shared"}})
	for _, h := range p.Hostels {
		if h.Price < 4000 || h.Price > 6000 || h.RoomType != "shared" {
			t.Errorf("unexpected hostel %d (price %v, room %s)", h.ID, h.Price, h.RoomType)
		}
	}
	if p.Total != 2 {
		t.Errorf("Total = %d, want 2", p.Total)
	}
}

func TestSearch_VerifiedAndCapacity(t *testing.T) {
	c := newFixtureCatalog(t)

	p := c.Search(Filter{VerifiedOnly: true, MinCapacity: 35})
	for _, h := range p.Hostels {
		if !h.IsVerified || h.Capacity < 35 {
			t.Errorf("unexpected hostel %d", h.ID)
		}
	}
	if p.Total == 0 {
		t.Error("expected at least one match")
	}
}

func TestSearch_Sort(t *testing.T) {
	c := newFixtureCatalog(t)

	asc := c.Search(Filter{SortBy: SortPriceAsc}).Hostels
	for i := 1; i < len(asc); i++ {
		if asc[i-1].Price > asc[i].Price {
			t.Fatalf("price_asc not sorted at %d", i)
		}
	}

	desc := c.Search(Filter{SortBy: SortPriceDesc}).Hostels
	for i := 1; i < len(desc); i++ {
		if desc[i-1].Price < desc[i].Price {
			t.Fatalf("price_desc not sorted at %d", i)
		}
	}

	rating := c.Search(Filter{SortBy: SortRating}).Hostels
	if rating[0].ID != 3 {
		t.Errorf("top rated = %d, want 3", rating[0].ID)
	}

	def := c.Search(Filter{}).Hostels
	for i := 1; i < len(def); i++ {
		if def[i-1].ID > def[i].ID {
			t.Fatalf("default order not by id at %d", i)
		}
	}
}

func TestSearch_Pagination(t *testing.T) {
	c := newFixtureCatalog(t)

	p := c.Search(Filter{Page: 2, PerPage: 4})
	if p.Total != 10 || p.Pages != 3 || p.CurrentPage != 2 || p.PerPage != 4 {
		t.Errorf("page meta = %+v", p)
	}
	if len(p.Hostels) != 4 || p.Hostels[0].ID != 5 {
		t.Errorf("page 2 first id = %d, len %d", p.Hostels[0].ID, len(p.Hostels))
	}

	beyond := c.Search(Filter{Page: 9, PerPage: 4})
	if len(beyond.Hostels) != 0 {
		t.Errorf("expected empty page, got %d", len(beyond.Hostels))
	}

	capped := c.Search(Filter{PerPage: 1000})
	if capped.PerPage != MaxPerPage {
		t.Errorf("PerPage = %d, want %d", capped.PerPage, MaxPerPage)
	}

	def := c.Search(Filter{})
	if def.PerPage != DefaultPerPage || def.CurrentPage != 1 {
		t.Errorf("defaults = %+v", def)
	}
}

func TestSearch_HugePage_ReturnsEmptyPage(t *testing.T) {
	c := newFixtureCatalog(t)

	for _, page := range []int{math.MaxInt, math.MaxInt / 20, 4} {
		p := c.Search(Filter{Page: page})
		if len(p.Hostels) != 0 {
			t.Errorf("page %d: len = %d, want 0", page, len(p.Hostels))
		}
		if p.Total != 10 || p.CurrentPage != page {
			t.Errorf("page %d: meta = %+v", page, p)
		}
	}
}

func TestFeatured(t *testing.T) {
	c := newFixtureCatalog(t)

	featured := c.Featured()
	if len(featured) != 4 {
		t.Fatalf("Featured len = %d, want 4", len(featured))
	}
	for _, h := range featured {
		if !h.IsFeatured {
			t.Errorf("hostel %d is not featured", h.ID)
		}
	}
}
