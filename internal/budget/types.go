package budget

import "github.com/shopspring/decimal"

// Category is a transaction category.
type Category struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// User is a family member known to the API.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// Account is a money account. OwnerUsername is resolved by the client.
type Account struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Owner         int64           `json:"owner"`
	Balance       decimal.Decimal `json:"balance"`
	Currency      int64           `json:"currency"`
	OwnerUsername string          `json:"-"`
}

// Currency is a currency known to the API.
type Currency struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Code  string `json:"code"`
}

// FamilyStatus is the aggregated family balance.
type FamilyStatus struct {
	Title    string          `json:"title"`
	Current  decimal.Decimal `json:"current"`
	Currency string          `json:"currency"`
}

// Family groups users.
type Family struct {
	Title   string  `json:"title"`
	Members []int64 `json:"members"`
}

// Profile describes the authenticated user.
type Profile struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Family    Family `json:"family"`
}

// Transaction is the payload submitted to create a transaction.
// Amount is passed through as entered; the API validates it.
type Transaction struct {
	Title    string `json:"title"`
	Category int64  `json:"category"`
	Who      int64  `json:"who"`
	Account  int64  `json:"account"`
	Amount   string `json:"amount"`
	Currency int64  `json:"currency"`
	Date     string `json:"date"`
}
