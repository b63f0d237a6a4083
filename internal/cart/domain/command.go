package domain

// Command is the closed set of cart mutations accepted by Apply.
type Command interface {
	Name() string
	isCommand()
}

// AddItem merges Item into the line with the same ID, or appends it.
// Quantity 0 means one unit; Item.Quantity is ignored.
type AddItem struct {
	Item     LineItem
	Quantity int
}

// RemoveItem drops the line with ID. Absent IDs are not an error.
type RemoveItem struct {
	ID string
}

// UpdateQuantity sets the quantity of the line with ID.
type UpdateQuantity struct {
	ID       string
	Quantity int
}

type ClearCart struct{}

// ReplaceItems installs Items verbatim. It is used by hydration.
type ReplaceItems struct {
	Items []LineItem
}

type SetAddress struct {
	Address Address
}

type SetShippingRates struct {
	Rates []ShippingRate
}

// SelectShippingRate picks one of the rates previously offered.
type SelectShippingRate struct {
	ID string
}

func (AddItem) Name() string            { return "add_item" }
func (RemoveItem) Name() string         { return "remove_item" }
func (UpdateQuantity) Name() string     { return "update_quantity" }
func (ClearCart) Name() string          { return "clear_cart" }
func (ReplaceItems) Name() string       { return "replace_items" }
func (SetAddress) Name() string         { return "set_address" }
func (SetShippingRates) Name() string   { return "set_shipping_rates" }
func (SelectShippingRate) Name() string { return "select_shipping_rate" }

func (AddItem) isCommand()            {}
func (RemoveItem) isCommand()         {}
func (UpdateQuantity) isCommand()     {}
func (ClearCart) isCommand()          {}
func (ReplaceItems) isCommand()       {}
func (SetAddress) isCommand()         {}
func (SetShippingRates) isCommand()   {}
func (SelectShippingRate) isCommand() {}

// MutatesItems reports whether cmd can change the persisted item list.
func MutatesItems(cmd Command) bool {
	switch cmd.(type) {
	case AddItem, RemoveItem, UpdateQuantity, ClearCart, ReplaceItems:
		return true
	default:
		return false
	}
}
