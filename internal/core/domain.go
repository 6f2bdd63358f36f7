package core

import (
	"errors"
	"strings"
	"time"
)

const (
	Income   TransactionType = "Income"
	Expense  TransactionType = "Expense"
	Transfer TransactionType = "Transfer"
)

// CategoryTransfer marks a transaction as a transfer by classification,
// even when its type says otherwise.
const CategoryTransfer = "Transfer"

type (
	TransactionType string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Transaction is a single recorded monetary event. ID is assigned at
	// creation and never reused; all other fields are replaceable by an edit.
	Transaction struct {
		ID                 string
		Date               Date
		RawDate            string // original text kept when the date cannot be parsed
		Description        string
		Type               TransactionType
		Category           string
		SourceAccount      string
		DestinationAccount string
		Amount             Money
	}
)

var (
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidType           = errors.New("invalid transaction type")
	ErrInvalidDate           = errors.New("invalid date")
	ErrEmptySourceAccount    = errors.New("empty source account")
	ErrMissingDestination    = errors.New("missing destination account")
	ErrUnexpectedDestination = errors.New("destination account set on non-transfer")
	ErrDescriptionTooLong    = errors.New("description too long (max 200 characters)")

	ErrNotFound = errors.New("transaction not found")
)

// validationErrs is the closed set recognized by IsValidation.
var validationErrs = []error{
	ErrInvalidAmount,
	ErrInvalidType,
	ErrInvalidDate,
	ErrEmptySourceAccount,
	ErrMissingDestination,
	ErrUnexpectedDestination,
	ErrDescriptionTooLong,
}

// IsValidation reports whether err is one of the domain validation errors.
func IsValidation(err error) bool {
	for _, v := range validationErrs {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Transfer:
		return true
	}
	return false
}

// NewDate creates a Date at UTC midnight for the given calendar day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// IsKnown reports whether the date was parsed successfully. Records with
// unknown dates stay in the store but are invisible to period-bounded views.
func (d Date) IsKnown() bool {
	return !d.IsZero()
}

// ISO renders the date as YYYY-MM-DD, or "" for an unknown date.
func (d Date) ISO() string {
	if !d.IsKnown() {
		return ""
	}
	return d.Format("2006-01-02")
}

// BeforePeriod reports whether the date falls strictly before the first day
// of the given year and month. Unknown dates are never before a period.
func (d Date) BeforePeriod(year, month int) bool {
	if !d.IsKnown() {
		return false
	}
	return d.Year() < year || (d.Year() == year && int(d.Month()) < month)
}

// InPeriod reports whether the date falls within the given year and month.
func (d Date) InPeriod(year, month int) bool {
	if !d.IsKnown() {
		return false
	}
	return d.Year() == year && int(d.Month()) == month
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// IsTransfer reports whether the transaction moves money between two
// accounts, either by type or by classification.
func (t Transaction) IsTransfer() bool {
	return t.Type == Transfer || t.Category == CategoryTransfer
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return ErrInvalidType
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if len(t.Description) > 200 {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(t.SourceAccount) == "" {
		return ErrEmptySourceAccount
	}
	if t.IsTransfer() {
		if strings.TrimSpace(t.DestinationAccount) == "" {
			return ErrMissingDestination
		}
	} else if strings.TrimSpace(t.DestinationAccount) != "" {
		return ErrUnexpectedDestination
	}
	// A date must either parse or carry its original text, so the record
	// survives rewrites without silently losing information.
	if !t.Date.IsKnown() && strings.TrimSpace(t.RawDate) == "" {
		return ErrInvalidDate
	}
	return nil
}

// DateText returns the persisted form of the date: ISO when known,
// the original raw text otherwise.
func (t Transaction) DateText() string {
	if t.Date.IsKnown() {
		return t.Date.ISO()
	}
	return t.RawDate
}
