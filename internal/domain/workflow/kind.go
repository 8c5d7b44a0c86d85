package workflow

// Kind identifies a workflow-governed entity type
type Kind string

const (
	KindProduct           Kind = "product"
	KindInventoryItem     Kind = "inventory_item"
	KindWithdrawalRequest Kind = "withdrawal_request"
	KindPriceAppeal       Kind = "price_appeal"
)

var validKinds = map[Kind]bool{
	KindProduct:           true,
	KindInventoryItem:     true,
	KindWithdrawalRequest: true,
	KindPriceAppeal:       true,
}

// IsValid returns true if the kind is a known entity kind
func (k Kind) IsValid() bool {
	return validKinds[k]
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// ParseKind converts a string into a Kind, reporting whether it is known
func ParseKind(s string) (Kind, bool) {
	k := Kind(s)
	return k, validKinds[k]
}
