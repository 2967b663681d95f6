package auditrevenue

import "github.com/shopspring/decimal"

// NormalizeAmounts rewrites negative amounts in the debit and credit
// columns per accounting convention: a negative debit is added to credit
// and debit is zeroed, then independently a negative credit is added to
// debit and credit is zeroed. Applying it to already non-negative lines
// changes nothing.
func NormalizeAmounts(lines []BookingLine) {
	for i := range lines {
		if lines[i].Debit.IsNegative() {
			lines[i].Credit = lines[i].Credit.Add(lines[i].Debit.Neg())
			lines[i].Debit = decimal.Zero
		}
		if lines[i].Credit.IsNegative() {
			lines[i].Debit = lines[i].Debit.Add(lines[i].Credit.Neg())
			lines[i].Credit = decimal.Zero
		}
	}
}
