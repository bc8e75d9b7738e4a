package types

type Side string

const (
	SideTypeBuy  Side = "buy"
	SideTypeSell Side = "sell"
)
