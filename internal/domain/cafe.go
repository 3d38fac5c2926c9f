// Package domain defines the persistence model for cafes and the plain JSON
// shape it is rendered as. These types are mapped with GORM and form the core
// data layer of the cafe API.
package domain

// Cafe is a coffee shop with its amenities and metadata.
//
// Fields:
//   - ID: auto-assigned integer primary key, immutable once assigned.
//   - Name: unique display name (enforced by a unique index).
//   - MapURL / ImgURL: links to a map location and a photo (<= 500 chars).
//   - Location: free-text area name, matched in title case by search.
//   - Seats: seat-count description such as "20-30", not a strict number.
//   - HasToilet / HasWifi / HasSockets / CanTakeCalls: amenity flags.
//   - CoffeePrice: optional price label such as "£2.40"; nil when unknown.
type Cafe struct {
	ID           int     `gorm:"primaryKey;autoIncrement"`
	Name         string  `gorm:"type:varchar(250);not null;uniqueIndex:ux_cafe_name"`
	MapURL       string  `gorm:"column:map_url;type:varchar(500);not null"`
	ImgURL       string  `gorm:"column:img_url;type:varchar(500);not null"`
	Location     string  `gorm:"type:varchar(250);not null"`
	Seats        string  `gorm:"type:varchar(250);not null"`
	HasToilet    bool    `gorm:"column:has_toilet;not null"`
	HasWifi      bool    `gorm:"column:has_wifi;not null"`
	HasSockets   bool    `gorm:"column:has_sockets;not null"`
	CanTakeCalls bool    `gorm:"column:can_take_calls;not null"`
	CoffeePrice  *string `gorm:"column:coffee_price;type:varchar(250)"`
}

// TableName returns the database table name for Cafe.
func (Cafe) TableName() string { return "cafe" }

// CafeJSON is the public JSON contract for a single cafe. Fields are declared
// in key order so encoded objects are stable across responses.
type CafeJSON struct {
	CanTakeCalls bool    `json:"can_take_calls" example:"true"`
	CoffeePrice  *string `json:"coffee_price" example:"£2.40"`
	HasSockets   bool    `json:"has_sockets" example:"true"`
	HasToilet    bool    `json:"has_toilet" example:"true"`
	HasWifi      bool    `json:"has_wifi" example:"false"`
	ID           int     `json:"id" example:"1"`
	ImgURL       string  `json:"img_url" example:"https://example.com/photo.jpg"`
	Location     string  `json:"location" example:"Peckham"`
	MapURL       string  `json:"map_url" example:"https://g.page/example"`
	Name         string  `json:"name" example:"Science Gallery London"`
	Seats        string  `json:"seats" example:"20-30"`
}

// CafeList is the envelope used when returning every cafe.
type CafeList struct {
	Cafe []CafeJSON `json:"cafe"`
}

// JSON converts the record into its public representation.
func (c Cafe) JSON() CafeJSON {
	return CafeJSON{
		CanTakeCalls: c.CanTakeCalls,
		CoffeePrice:  c.CoffeePrice,
		HasSockets:   c.HasSockets,
		HasToilet:    c.HasToilet,
		HasWifi:      c.HasWifi,
		ID:           c.ID,
		ImgURL:       c.ImgURL,
		Location:     c.Location,
		MapURL:       c.MapURL,
		Name:         c.Name,
		Seats:        c.Seats,
	}
}

// SerializeAll converts records into public form, preserving order. The
// result is never nil so empty lists encode as [].
func SerializeAll(cafes []Cafe) []CafeJSON {
	out := make([]CafeJSON, 0, len(cafes))
	for _, c := range cafes {
		out = append(out, c.JSON())
	}
	return out
}
