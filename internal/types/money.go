// README: Common value objects used across modules.
package types

const CurrencyCLP = "CLP"

type ID string

type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func CLP(amount int64) Money {
	return Money{Amount: amount, Currency: CurrencyCLP}
}
