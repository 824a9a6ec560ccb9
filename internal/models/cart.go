package models

// CartItem is one line of a client-held cart. Amount is the full line
// amount in kobo (unit price × quantity), as the catalog priced it.
type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Amount    int64  `json:"amount" validate:"required,gt=0"`
}

// CartSnapshot is the ephemeral cart state submitted at checkout. It is not
// persisted; the order row captures its contents only once the payment
// provider has accepted the initialization.
type CartSnapshot struct {
	Items []CartItem `json:"items" validate:"required,min=1,dive"`
}

// Total sums the line amounts in kobo.
func (c CartSnapshot) Total() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.Amount
	}
	return total
}
