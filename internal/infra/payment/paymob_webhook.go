package payment

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"strconv"
	"strings"
)

// CallbackTransaction is the transaction object Paymob posts to the
// callback endpoint. The HMAC concatenation follows the fixed field
// order Paymob's documentation prescribes.
type CallbackTransaction struct {
	AmountCents          int64  `json:"amount_cents"`
	CreatedAt            string `json:"created_at"`
	Currency             string `json:"currency"`
	ErrorOccured         bool   `json:"error_occured"`
	HasParentTransaction bool   `json:"has_parent_transaction"`
	ID                   int64  `json:"id"`
	IntegrationID        int64  `json:"integration_id"`
	Is3DSecure           bool   `json:"is_3d_secure"`
	IsAuth               bool   `json:"is_auth"`
	IsCapture            bool   `json:"is_capture"`
	IsRefunded           bool   `json:"is_refunded"`
	IsStandalonePayment  bool   `json:"is_standalone_payment"`
	IsVoided             bool   `json:"is_voided"`
	Order                struct {
		ID int64 `json:"id"`
	} `json:"order"`
	Owner      int64 `json:"owner"`
	Pending    bool  `json:"pending"`
	SourceData struct {
		Pan     string `json:"pan"`
		SubType string `json:"sub_type"`
		Type    string `json:"type"`
	} `json:"source_data"`
	Success bool `json:"success"`
}

// ComputeCallbackHMAC recomputes the signature Paymob sends alongside a
// transaction callback: HMAC-SHA512 over the concatenated canonical
// fields, hex encoded.
func ComputeCallbackHMAC(secret string, t *CallbackTransaction) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(t.AmountCents, 10))
	b.WriteString(t.CreatedAt)
	b.WriteString(t.Currency)
	b.WriteString(strconv.FormatBool(t.ErrorOccured))
	b.WriteString(strconv.FormatBool(t.HasParentTransaction))
	b.WriteString(strconv.FormatInt(t.ID, 10))
	b.WriteString(strconv.FormatInt(t.IntegrationID, 10))
	b.WriteString(strconv.FormatBool(t.Is3DSecure))
	b.WriteString(strconv.FormatBool(t.IsAuth))
	b.WriteString(strconv.FormatBool(t.IsCapture))
	b.WriteString(strconv.FormatBool(t.IsRefunded))
	b.WriteString(strconv.FormatBool(t.IsStandalonePayment))
	b.WriteString(strconv.FormatBool(t.IsVoided))
	b.WriteString(strconv.FormatInt(t.Order.ID, 10))
	b.WriteString(strconv.FormatInt(t.Owner, 10))
	b.WriteString(strconv.FormatBool(t.Pending))
	b.WriteString(t.SourceData.Pan)
	b.WriteString(t.SourceData.SubType)
	b.WriteString(t.SourceData.Type)
	b.WriteString(strconv.FormatBool(t.Success))

	h := hmac.New(sha512.New, []byte(secret))
	h.Write([]byte(b.String()))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCallbackHMAC reports whether the supplied signature matches the
// recomputed one. Comparison is case-insensitive over the hex digest.
func VerifyCallbackHMAC(secret string, t *CallbackTransaction, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := ComputeCallbackHMAC(secret, t)
	return hmac.Equal([]byte(strings.ToLower(expected)), []byte(strings.ToLower(signature)))
}
