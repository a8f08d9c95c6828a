package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType classifies journal entries.
type VoucherType string

const (
	VoucherJournal VoucherType = "Journal"
	VoucherPayment VoucherType = "Payment"
	VoucherReceipt VoucherType = "Receipt"
	VoucherContra  VoucherType = "Contra"
)

// VoucherTypes lists all valid voucher types.
var VoucherTypes = []VoucherType{VoucherJournal, VoucherPayment, VoucherReceipt, VoucherContra}

// Valid reports whether t is a known voucher type.
func (t VoucherType) Valid() bool {
	switch t {
	case VoucherJournal, VoucherPayment, VoucherReceipt, VoucherContra:
		return true
	}
	return false
}

// EntryStatus is the lifecycle state of a committed journal entry.
// Entries are append-only: a posted entry is never edited in place,
// it can only be offset by a reversing entry.
type EntryStatus string

const (
	StatusPosted   EntryStatus = "posted"
	StatusReversed EntryStatus = "reversed"
)

// JournalLine is one debit or credit row of a journal entry.
type JournalLine struct {
	AccountCode string          `json:"account_code"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// IsZero reports whether both sides of the line are zero.
func (l JournalLine) IsZero() bool {
	return l.Debit.IsZero() && l.Credit.IsZero()
}

// JournalEntry is a balanced voucher of two or more lines.
type JournalEntry struct {
	EntryID   string        `json:"entry_id"`
	Date      time.Time     `json:"date"`
	Type      VoucherType   `json:"type"`
	Narration string        `json:"narration"`
	Lines     []JournalLine `json:"lines"`
	Status    EntryStatus   `json:"status"`
	Reverses  string        `json:"reverses,omitempty"` // entry ID this entry offsets
	CreatedAt time.Time     `json:"created_at"`
}

// Totals returns the summed debit and credit sides of the entry.
func (e JournalEntry) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range e.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
