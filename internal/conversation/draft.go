package conversation

import (
	"errors"
	"fmt"

	"github.com/m3rciful/familybudget/internal/budget"
)

// ErrOutOfOrder is returned when a draft field is set before its predecessor.
var ErrOutOfOrder = errors.New("conversation: draft field out of order")

type field int

const (
	fieldTitle field = iota
	fieldCategory
	fieldWho
	fieldAccount
	fieldAmount
	fieldCurrency
	fieldDate
	fieldCount
)

var fieldNames = [fieldCount]string{"title", "category", "who", "account", "amount", "currency", "date"}

func (f field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// Draft is a transaction being assembled one field per step. Fields can only
// be set in order and never twice.
type Draft struct {
	Title      string
	CategoryID int64
	WhoID      int64
	AccountID  int64
	Amount     string
	CurrencyID int64
	Date       string

	filled int
}

func (d *Draft) expect(f field) error {
	if d.filled != int(f) {
		return fmt.Errorf("%w: %s with %d fields set", ErrOutOfOrder, f, d.filled)
	}
	d.filled++
	return nil
}

// SetTitle stores the title. Empty text is a valid title.
func (d *Draft) SetTitle(title string) error {
	if err := d.expect(fieldTitle); err != nil {
		return err
	}
	d.Title = title
	return nil
}

// SetCategory stores the category id.
func (d *Draft) SetCategory(id int64) error {
	if err := d.expect(fieldCategory); err != nil {
		return err
	}
	d.CategoryID = id
	return nil
}

// SetWho stores the beneficiary id.
func (d *Draft) SetWho(id int64) error {
	if err := d.expect(fieldWho); err != nil {
		return err
	}
	d.WhoID = id
	return nil
}

// SetAccount stores the account id.
func (d *Draft) SetAccount(id int64) error {
	if err := d.expect(fieldAccount); err != nil {
		return err
	}
	d.AccountID = id
	return nil
}

// SetAmount stores the amount verbatim.
func (d *Draft) SetAmount(amount string) error {
	if err := d.expect(fieldAmount); err != nil {
		return err
	}
	d.Amount = amount
	return nil
}

// SetCurrency stores the currency id.
func (d *Draft) SetCurrency(id int64) error {
	if err := d.expect(fieldCurrency); err != nil {
		return err
	}
	d.CurrencyID = id
	return nil
}

// SetDate stores the date as YYYY-MM-DD.
func (d *Draft) SetDate(date string) error {
	if err := d.expect(fieldDate); err != nil {
		return err
	}
	d.Date = date
	return nil
}

// Filled returns how many fields are set.
func (d *Draft) Filled() int {
	return d.filled
}

// Complete reports whether every field is set.
func (d *Draft) Complete() bool {
	return d.filled == int(fieldCount)
}

// Transaction converts the draft into the API payload.
func (d *Draft) Transaction() budget.Transaction {
	return budget.Transaction{
		Title:    d.Title,
		Category: d.CategoryID,
		Who:      d.WhoID,
		Account:  d.AccountID,
		Amount:   d.Amount,
		Currency: d.CurrencyID,
		Date:     d.Date,
	}
}
