// Package cart holds the line items of an in-progress sale.
package cart

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// UnboundedStock is the stock carried by manually entered lines.
const UnboundedStock = math.MaxInt32

const defaultManualCategory = "Uncategorized"

var (
	ErrLineNotFound    = errors.New("cart line not found")
	ErrNameRequired    = errors.New("item name is required")
	ErrNegativePrice   = errors.New("price must not be negative")
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrProductRequired = errors.New("catalog item id is required")
)

// Item is a catalog entry as seen by the cart.
type Item struct {
	ID       string          `json:"id"`
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Category string          `json:"category"`
	Taxable  bool            `json:"taxable"`
	Stock    int             `json:"stock"`
}

type Line struct {
	Identity  string          `json:"identity"`
	ProductID string          `json:"product_id,omitempty"`
	Code      string          `json:"code,omitempty"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Category  string          `json:"category"`
	ApplyTax  bool            `json:"apply_tax"`
	IsManual  bool            `json:"is_manual"`
	Stock     int             `json:"stock"`
}

// Extended returns unit price times quantity.
func (l Line) Extended() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart keeps lines in insertion order. It is not safe for concurrent use;
// the register session that owns it serializes access.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add puts one unit of a catalog item in the cart, merging with an
// existing line for the same item.
func (c *Cart) Add(item Item) (Line, error) {
	if strings.TrimSpace(item.ID) == "" {
		return Line{}, ErrProductRequired
	}
	if item.Price.IsNegative() {
		return Line{}, ErrNegativePrice
	}
	if i := c.index(item.ID); i >= 0 {
		c.lines[i].Quantity++
		c.lines[i].Stock = item.Stock
		return c.lines[i], nil
	}
	line := Line{
		Identity:  item.ID,
		ProductID: item.ID,
		Code:      item.Code,
		Name:      item.Name,
		UnitPrice: item.Price,
		Quantity:  1,
		Category:  item.Category,
		ApplyTax:  item.Taxable,
		Stock:     item.Stock,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// AddManual adds an ad-hoc item that has no catalog entry. Repeated entries
// with the same normalized name, price and category merge into one line.
func (c *Cart) AddManual(name string, price decimal.Decimal, category string, applyTax bool, quantity int) (Line, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return Line{}, ErrNameRequired
	}
	if price.IsNegative() {
		return Line{}, ErrNegativePrice
	}
	if quantity < 1 {
		return Line{}, ErrInvalidQuantity
	}
	category = strings.TrimSpace(category)
	if category == "" {
		category = defaultManualCategory
	}

	id := ManualIdentity(name, price, category)
	if i := c.index(id); i >= 0 {
		c.lines[i].Quantity += quantity
		return c.lines[i], nil
	}
	line := Line{
		Identity:  id,
		Name:      name,
		UnitPrice: price,
		Quantity:  quantity,
		Category:  category,
		ApplyTax:  applyTax,
		IsManual:  true,
		Stock:     UnboundedStock,
	}
	c.lines = append(c.lines, line)
	return line, nil
}

// ChangeQuantity adjusts a line by delta. A line that reaches zero is
// removed and the returned bool is false.
func (c *Cart) ChangeQuantity(identity string, delta int) (Line, bool, error) {
	i := c.index(identity)
	if i < 0 {
		return Line{}, false, ErrLineNotFound
	}
	qty := c.lines[i].Quantity + delta
	if qty <= 0 {
		removed := c.lines[i]
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
		removed.Quantity = 0
		return removed, false, nil
	}
	c.lines[i].Quantity = qty
	return c.lines[i], true, nil
}

func (c *Cart) ToggleTax(identity string) (Line, error) {
	i := c.index(identity)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	c.lines[i].ApplyTax = !c.lines[i].ApplyTax
	return c.lines[i], nil
}

func (c *Cart) Remove(identity string) (Line, error) {
	i := c.index(identity)
	if i < 0 {
		return Line{}, ErrLineNotFound
	}
	removed := c.lines[i]
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return removed, nil
}

// UpdateStock refreshes the stock figure on a catalog line.
func (c *Cart) UpdateStock(identity string, stock int) {
	if i := c.index(identity); i >= 0 && !c.lines[i].IsManual {
		c.lines[i].Stock = stock
	}
}

// Clear empties the cart and returns the lines it held.
func (c *Cart) Clear() []Line {
	lines := c.lines
	c.lines = nil
	return lines
}

func (c *Cart) Line(identity string) (Line, bool) {
	if i := c.index(identity); i >= 0 {
		return c.lines[i], true
	}
	return Line{}, false
}

// Lines returns a copy of the current lines.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// Units is the total quantity across all lines.
func (c *Cart) Units() int {
	n := 0
	for _, l := range c.lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) index(identity string) int {
	for i := range c.lines {
		if c.lines[i].Identity == identity {
			return i
		}
	}
	return -1
}

// ManualIdentity derives the merge key for a manually entered item.
func ManualIdentity(name string, price decimal.Decimal, category string) string {
	norm := strings.ToLower(strings.Join(strings.Fields(name), " "))
	return "manual:" + norm + "|" + price.StringFixed(2) + "|" + strings.ToLower(strings.TrimSpace(category))
}
