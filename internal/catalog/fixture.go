package catalog

import "github.com/hitoshi/hostelhunt/internal/model"

// Fixture は組み込みのホステル一覧を返す。
// CATALOG_URL が未設定の場合に使用する。
func Fixture() []model.Hostel {
	return []model.Hostel{
		{
			ID: 1, Name: "Golden Plate Hostel",
			Description: "Self-contained single rooms five minutes from the main gate.",
			Location:    "Juja", University: "JKUAT",
			Latitude: -1.0987, Longitude: 37.0144,
			Price: 6500, Capacity: 40, RoomType: "single", Rating: 4.6,
			Images:     []string{"https://images.hostelhunt.example/golden-plate/1.jpg"},
			Amenities:  []string{"wifi", "water", "security"},
			IsVerified: true, IsFeatured: true,
		},
		{
			ID: 2, Name: "Oceania Apartments",
			Description: "Bedsitters with a shared study lounge.",
			Location:    "Kahawa Wendani", University: "Kenyatta University",
			Latitude: -1.1803, Longitude: 36.9270,
			Price: 8000, Capacity: 24, RoomType: "bedsitter", Rating: 4.2,
			Images:     []string{"https://images.hostelhunt.example/oceania/1.jpg"},
			Amenities:  []string{"wifi", "parking", "laundry"},
			IsVerified: true,
		},
		{
			ID: 3, Name: "Step Hill",
			Description: "Quiet double rooms near the hostels shuttle stage.",
			Location:    "Madaraka", University: "Strathmore University",
			Latitude: -1.3090, Longitude: 36.8130,
			Price: 9500, Capacity: 30, RoomType: "double", Rating: 4.8,
			Images:     []string{"https://images.hostelhunt.example/step-hill/1.jpg"},
			Amenities:  []string{"wifi", "gym", "security", "water"},
			IsVerified: true, IsFeatured: true,
		},
		{
			ID: 4, Name: "Ebenezer Plaza",
			Description: "Affordable shared rooms above the shopping plaza.",
			Location:    "Ngara", University: "University of Nairobi",
			Latitude: -1.2740, Longitude: 36.8240,
			Price: 4500, Capacity: 60, RoomType: "shared", Rating: 3.9,
			Images:    []string{"https://images.hostelhunt.example/ebenezer/1.jpg"},
			Amenities: []string{"water", "security"},
		},
		{
			ID: 5, Name: "Green Eden",
			Description: "Garden compound with single rooms and a kitchen per floor.",
			Location:    "Njoro", University: "Egerton University",
			Latitude: -0.3700, Longitude: 35.9330,
			Price: 5200, Capacity: 35, RoomType: "single", Rating: 4.4,
			Images:     []string{"https://images.hostelhunt.example/green-eden/1.jpg"},
			Amenities:  []string{"wifi", "kitchen", "water"},
			IsVerified: true, IsFeatured: true,
		},
		{
			ID: 6, Name: "Orchid",
			Description: "Ladies-only hostel with round-the-clock security.",
			Location:    "Kikuyu", University: "University of Nairobi",
			Latitude: -1.2460, Longitude: 36.6630,
			Price: 7000, Capacity: 28, RoomType: "double", Rating: 4.1,
			Images:     []string{"https://images.hostelhunt.example/orchid/1.jpg"},
			Amenities:  []string{"security", "laundry", "water"},
			IsVerified: true,
		},
		{
			ID: 7, Name: "Barbados",
			Description: "Spacious bedsitters on the Eldoret bypass.",
			Location:    "Kesses", University: "Moi University",
			Latitude: 0.2870, Longitude: 35.2920,
			Price: 5800, Capacity: 20, RoomType: "bedsitter", Rating: 3.7,
			Images:    []string{"https://images.hostelhunt.example/barbados/1.jpg"},
			Amenities: []string{"parking", "water"},
		},
		{
			ID: 8, Name: "Gateway",
			Description: "Modern shared rooms with backup power.",
			Location:    "Thika", University: "Mount Kenya University",
			Latitude: -1.0390, Longitude: 37.0830,
			Price: 4000, Capacity: 80, RoomType: "shared", Rating: 4.0,
			Images:     []string{"https://images.hostelhunt.example/gateway/1.jpg"},
			Amenities:  []string{"wifi", "backup_power", "security"},
			IsVerified: true,
		},
		{
			ID: 9, Name: "Yellow Hostel",
			Description: "Budget rooms a short walk from campus.",
			Location:    "Maseno", University: "Maseno University",
			Latitude: -0.0040, Longitude: 34.6000,
			Price: 3500, Capacity: 50, RoomType: "shared", Rating: 3.5,
			Images:    []string{"https://images.hostelhunt.example/yellow/1.jpg"},
			Amenities: []string{"water"},
		},
		{
			ID: 10, Name: "Red Hills",
			Description: "Double rooms with balconies overlooking the hills.",
			Location:    "Kisii", University: "Kisii University",
			Latitude: -0.6770, Longitude: 34.7790,
			Price: 6000, Capacity: 32, RoomType: "double", Rating: 4.3,
			Images:     []string{"https://images.hostelhunt.example/red-hills/1.jpg"},
			Amenities:  []string{"wifi", "water", "security"},
			IsVerified: true, IsFeatured: true,
		},
	}
}
