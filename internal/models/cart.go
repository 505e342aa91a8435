package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type LineKind string

const (
	LineKindBook    LineKind = "book"
	LineKindPackage LineKind = "package"
	LineKindEvent   LineKind = "event"
)

// LineTarget is the purchasable thing a line item points at.
// BookLine, PackageLine and EventLine are the only implementations.
type LineTarget interface {
	Kind() LineKind
	TargetID() uuid.UUID
	isLineTarget()
}

type BookLine struct {
	BookID uuid.UUID
}

type PackageLine struct {
	PackageID     uuid.UUID
	Customization *PackageCustomization
}

type EventLine struct {
	EventID uuid.UUID
}

func (BookLine) Kind() LineKind    { return LineKindBook }
func (PackageLine) Kind() LineKind { return LineKindPackage }
func (EventLine) Kind() LineKind   { return LineKindEvent }

func (l BookLine) TargetID() uuid.UUID    { return l.BookID }
func (l PackageLine) TargetID() uuid.UUID { return l.PackageID }
func (l EventLine) TargetID() uuid.UUID   { return l.EventID }

func (BookLine) isLineTarget()    {}
func (PackageLine) isLineTarget() {}
func (EventLine) isLineTarget()   {}

// NewLineTarget rebuilds a target from its stored parts.
func NewLineTarget(kind LineKind, id uuid.UUID, customization *PackageCustomization) (LineTarget, error) {
	switch kind {
	case LineKindBook:
		return BookLine{BookID: id}, nil
	case LineKindPackage:
		return PackageLine{PackageID: id, Customization: customization}, nil
	case LineKindEvent:
		return EventLine{EventID: id}, nil
	default:
		return nil, fmt.Errorf("unknown line kind %q", kind)
	}
}

// CustomizationOf returns the package customization, nil for other kinds.
func CustomizationOf(target LineTarget) *PackageCustomization {
	if p, ok := target.(PackageLine); ok {
		return p.Customization
	}

	return nil
}

// SameTarget reports whether two lines should be merged into one.
// Package lines only merge when their customizations match.
func SameTarget(a, b LineTarget) bool {
	if a == nil || b == nil {
		return false
	}

	if a.Kind() != b.Kind() || a.TargetID() != b.TargetID() {
		return false
	}

	return CustomizationOf(a).Equal(CustomizationOf(b))
}

type CartItem struct {
	ID       uuid.UUID
	Target   LineTarget
	Quantity int
	Price    float64
	Title    string
}

func (i CartItem) Subtotal() decimal.Decimal {
	return decimal.NewFromFloat(i.Price).Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type cartItemJSON struct {
	ID                    uuid.UUID             `json:"id"`
	Type                  LineKind              `json:"type"`
	Book                  *uuid.UUID            `json:"book,omitempty"`
	Package               *uuid.UUID            `json:"package,omitempty"`
	Event                 *uuid.UUID            `json:"event,omitempty"`
	PackageCustomizations *PackageCustomization `json:"package_customizations,omitempty"`
	Quantity              int                   `json:"quantity"`
	Price                 float64               `json:"price"`
	Title                 string                `json:"title"`
}

func (i CartItem) MarshalJSON() ([]byte, error) {
	if i.Target == nil {
		return nil, fmt.Errorf("cart item %s has no target", i.ID)
	}

	id := i.Target.TargetID()
	wire := cartItemJSON{
		ID:       i.ID,
		Type:     i.Target.Kind(),
		Quantity: i.Quantity,
		Price:    i.Price,
		Title:    i.Title,
	}

	switch t := i.Target.(type) {
	case BookLine:
		wire.Book = &id
	case PackageLine:
		wire.Package = &id
		wire.PackageCustomizations = t.Customization
	case EventLine:
		wire.Event = &id
	}

	return json.Marshal(wire)
}

func (i *CartItem) UnmarshalJSON(data []byte) error {
	var wire cartItemJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var ref *uuid.UUID

	switch wire.Type {
	case LineKindBook:
		ref = wire.Book
	case LineKindPackage:
		ref = wire.Package
	case LineKindEvent:
		ref = wire.Event
	}

	if ref == nil {
		return fmt.Errorf("cart item %s: missing %q reference", wire.ID, wire.Type)
	}

	target, err := NewLineTarget(wire.Type, *ref, wire.PackageCustomizations)
	if err != nil {
		return err
	}

	*i = CartItem{
		ID:       wire.ID,
		Target:   target,
		Quantity: wire.Quantity,
		Price:    wire.Price,
		Title:    wire.Title,
	}

	return nil
}

type Cart struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	Items       []CartItem `json:"items"`
	TotalAmount float64    `json:"total_amount"`
	Version     int64      `json:"version"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items:  []CartItem{},
	}
}

// Recalculate sets TotalAmount to the sum of price x quantity, rounded to cents.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}

	c.TotalAmount = total.Round(2).InexactFloat64()
}

func (c *Cart) FindItem(itemID uuid.UUID) int {
	for idx, item := range c.Items {
		if item.ID == itemID {
			return idx
		}
	}

	return -1
}

func (c *Cart) Contains(target LineTarget) bool {
	for _, item := range c.Items {
		if SameTarget(item.Target, target) {
			return true
		}
	}

	return false
}

// MaxLineQuantity bounds a single cart line.
const MaxLineQuantity = 1000

// QuantityOf reports the quantity already in the cart for target.
func (c *Cart) QuantityOf(target LineTarget) int {
	for _, item := range c.Items {
		if SameTarget(item.Target, target) {
			return item.Quantity
		}
	}

	return 0
}

// AddLine increments a matching line or appends a new one, never past
// MaxLineQuantity. The captured price of an existing line is kept.
func (c *Cart) AddLine(target LineTarget, quantity int, price float64, title string) CartItem {
	quantity = min(quantity, MaxLineQuantity)

	for idx := range c.Items {
		if SameTarget(c.Items[idx].Target, target) {
			c.Items[idx].Quantity = min(c.Items[idx].Quantity+quantity, MaxLineQuantity)
			c.Recalculate()

			return c.Items[idx]
		}
	}

	item := CartItem{
		ID:       uuid.New(),
		Target:   target,
		Quantity: quantity,
		Price:    price,
		Title:    title,
	}
	c.Items = append(c.Items, item)
	c.Recalculate()

	return item
}

// SetQuantity removes the line when quantity <= 0.
func (c *Cart) SetQuantity(itemID uuid.UUID, quantity int) bool {
	idx := c.FindItem(itemID)
	if idx < 0 {
		return false
	}

	if quantity <= 0 {
		c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	} else {
		c.Items[idx].Quantity = min(quantity, MaxLineQuantity)
	}

	c.Recalculate()

	return true
}

func (c *Cart) RemoveItem(itemID uuid.UUID) bool {
	return c.SetQuantity(itemID, 0)
}

func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.TotalAmount = 0
}

type AddItemRequest struct {
	Type                  LineKind              `json:"type" validate:"required,oneof=book package event"`
	Book                  *uuid.UUID            `json:"book,omitempty" validate:"required_if=Type book"`
	Package               *uuid.UUID            `json:"package,omitempty" validate:"required_if=Type package"`
	Quantity              int                   `json:"quantity,omitempty" validate:"omitempty,min=1,max=1000"`
	PackageCustomizations *PackageCustomization `json:"packageCustomizations,omitempty"`
}

// Quantity <= 0 removes the line.
type UpdateQuantityRequest struct {
	Quantity int `json:"quantity" validate:"max=1000"`
}
