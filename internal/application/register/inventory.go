package register

import (
	"sort"
	"strings"
	"sync"

	"github.com/sangkips/tillpoint/internal/domain/cart"
)

// Inventory is a register's read-through copy of the catalog. Server
// snapshots replace stock wholesale; the register's own cart is tracked as
// reservations on top, so available stock is server stock minus what is in
// the cart. Snapshots older than the one held are ignored.
type Inventory struct {
	mu       sync.RWMutex
	version  int64
	loaded   bool
	items    map[string]cart.Item
	byCode   map[string]string
	reserved map[string]int
}

func NewInventory() *Inventory {
	return &Inventory{
		items:    map[string]cart.Item{},
		byCode:   map[string]string{},
		reserved: map[string]int{},
	}
}

// Apply installs snap unless a newer version is already held. It reports
// whether the snapshot was taken.
func (inv *Inventory) Apply(snap InventorySnapshot) bool {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if inv.loaded && snap.Version < inv.version {
		return false
	}
	items := make(map[string]cart.Item, len(snap.Items))
	byCode := make(map[string]string, len(snap.Items))
	for _, it := range snap.Items {
		items[it.ID] = it
		if it.Code != "" {
			byCode[it.Code] = it.ID
		}
	}
	inv.items = items
	inv.byCode = byCode
	inv.version = snap.Version
	inv.loaded = true
	return true
}

// Commit records stock levels the server accepted at version.
func (inv *Inventory) Commit(version int64, levels []StockLevel) {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	if version < inv.version {
		return
	}
	for _, l := range levels {
		if it, ok := inv.items[l.ID]; ok {
			it.Stock = l.Stock
			inv.items[l.ID] = it
		}
	}
	inv.version = version
	inv.reserved = map[string]int{}
}

func (inv *Inventory) Version() int64 {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.version
}

func (inv *Inventory) Loaded() bool {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	return inv.loaded
}

// Get returns the item with available stock applied.
func (inv *Inventory) Get(id string) (cart.Item, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	it, ok := inv.items[id]
	if !ok {
		return cart.Item{}, false
	}
	it.Stock = inv.available(it)
	return it, true
}

// Available is server stock less local reservations, never below zero.
func (inv *Inventory) Available(id string) int {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	it, ok := inv.items[id]
	if !ok {
		return 0
	}
	return inv.available(it)
}

func (inv *Inventory) available(it cart.Item) int {
	n := it.Stock - inv.reserved[it.ID]
	if n < 0 {
		return 0
	}
	return n
}

// ServerStock is the last stock figure the server reported for id.
func (inv *Inventory) ServerStock(id string) (int, bool) {
	inv.mu.RLock()
	defer inv.mu.RUnlock()
	it, ok := inv.items[id]
	return it.Stock, ok
}

// Reserve moves delta units of id into (positive) or out of (negative) the cart.
func (inv *Inventory) Reserve(id string, delta int) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	n := inv.reserved[id] + delta
	if n <= 0 {
		delete(inv.reserved, id)
		return
	}
	inv.reserved[id] = n
}

// Release drops every reservation.
func (inv *Inventory) Release() {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.reserved = map[string]int{}
}

// Resolve finds catalog items for a scanned or typed token. An exact code
// match is returned alone; otherwise every item whose name contains the
// token, ignoring case, in name order.
func (inv *Inventory) Resolve(token string) []cart.Item {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil
	}

	inv.mu.RLock()
	defer inv.mu.RUnlock()

	if id, ok := inv.byCode[token]; ok {
		it := inv.items[id]
		it.Stock = inv.available(it)
		return []cart.Item{it}
	}

	needle := strings.ToLower(token)
	var matches []cart.Item
	for _, it := range inv.items {
		if strings.Contains(strings.ToLower(it.Name), needle) {
			it.Stock = inv.available(it)
			matches = append(matches, it)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name == matches[j].Name {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Name < matches[j].Name
	})
	return matches
}
