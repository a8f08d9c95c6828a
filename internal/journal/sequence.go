package journal

import (
	"fmt"

	"github.com/tallybook-dev/tallybook/internal/model"
)

const sequencesKey = "sequences"

// voucherPrefix maps a voucher type to its ID prefix.
func voucherPrefix(t model.VoucherType) string {
	switch t {
	case model.VoucherPayment:
		return "PV"
	case model.VoucherReceipt:
		return "RV"
	case model.VoucherContra:
		return "CV"
	default:
		return "JV"
	}
}

// FormatVoucherID renders a voucher ID like "JV-00042".
func FormatVoucherID(prefix string, n int) string {
	return fmt.Sprintf("%s-%05d", prefix, n)
}

// nextVoucherID increments the persisted per-type counter and returns
// the new voucher ID. Counters only ever grow, so IDs are never
// reused even after entries are reversed or collections shrink. Must
// be called under the company lock.
func (e *Engine) nextVoucherID(t model.VoucherType) (string, error) {
	seqs := make(map[string]int)
	if _, err := e.store.Load(e.company, sequencesKey, &seqs); err != nil {
		return "", err
	}

	prefix := voucherPrefix(t)
	seqs[prefix]++
	if err := e.store.Save(e.company, sequencesKey, seqs); err != nil {
		return "", err
	}
	return FormatVoucherID(prefix, seqs[prefix]), nil
}
