package kv

// Keys of the documents Dopamine persists. The namespace is flat; per-account
// token keys are derived with TokensKey.
const (
	KeyState      = "state"
	KeyInvoices   = "invoices"
	KeyInquiries  = "email-inquiries"
	KeyLastPolled = "gmail-last-polled"
	KeyCalTokens  = "calendar-tokens"
)

// TokensKey returns the key holding the sealed Gmail tokens for an account label.
func TokensKey(account string) string {
	return "gmail-tokens-" + account
}
