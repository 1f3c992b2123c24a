package domain

import "time"

// CartItem is a single line pending purchase. Date-ranged bookings carry
// StartDate/EndDate/Persons; simple goods leave them empty.
type CartItem struct {
	ProductID string    `json:"product_id" bson:"product_id"`
	VariantID string    `json:"variant_id,omitempty" bson:"variant_id,omitempty"`
	StartDate string    `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate   string    `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Persons   int       `json:"persons,omitempty" bson:"persons,omitempty"`
	Quantity  int       `json:"quantity" bson:"quantity"`
	AddedAt   time.Time `json:"added_at" bson:"added_at"`
}

// SameLine reports whether two items belong to the same cart line.
// An empty VariantID/StartDate/EndDate only matches another empty one.
func (i CartItem) SameLine(other CartItem) bool {
	return i.ProductID == other.ProductID &&
		i.VariantID == other.VariantID &&
		i.StartDate == other.StartDate &&
		i.EndDate == other.EndDate
}

type Cart struct {
	ID        string     `bson:"_id,omitempty"`
	SessionID string     `bson:"session_id"`
	Items     []CartItem `bson:"items"`
	CreatedAt time.Time  `bson:"created_at"`
	UpdatedAt time.Time  `bson:"updated_at"`
}

// AddItem merges into an existing matching line by summing quantities,
// or appends a new line. Lines keep insertion order.
func (c *Cart) AddItem(item CartItem) {
	for i := range c.Items {
		if c.Items[i].SameLine(item) {
			c.Items[i].Quantity += item.Quantity
			return
		}
	}
	c.Items = append(c.Items, item)
}

// RemoveItem deletes all lines matching productID and variantID. An empty
// variantID removes only lines that have no variant.
func (c *Cart) RemoveItem(productID, variantID string) {
	kept := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID == productID && item.VariantID == variantID {
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
}

func (c *Cart) Clear() {
	c.Items = nil
}
