// Package vietqr builds transfer memos and QR image URLs for the VietQR
// image renderer.
package vietqr

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DefaultBaseURL is the public renderer root.
const DefaultBaseURL = "https://img.vietqr.io/image"

// Request describes one QR image.
type Request struct {
	BankID      string
	AccountNo   string
	Template    string
	Amount      int64
	Memo        string
	AccountName string
}

// RemoveAccents strips combining marks and folds đ/Đ so bank apps accept the
// text as a transfer memo.
func RemoveAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.NewReplacer("đ", "d", "Đ", "D").Replace(out)
}

// TransferMemo is the memo printed on receipts for a student.
func TransferMemo(studentName string) string {
	return fmt.Sprintf("%s chuyen khoan", RemoveAccents(strings.TrimSpace(studentName)))
}

// ImageURL renders the QR image address. It reports false when the request
// has no account number, in which case no image can be produced.
func ImageURL(baseURL string, req Request) (string, bool) {
	if strings.TrimSpace(req.AccountNo) == "" || strings.TrimSpace(req.BankID) == "" {
		return "", false
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	template := req.Template
	if template == "" {
		template = "compact"
	}
	amount := req.Amount
	if amount < 0 {
		amount = 0
	}
	q := url.Values{}
	q.Set("amount", fmt.Sprintf("%d", amount))
	q.Set("addInfo", req.Memo)
	q.Set("accountName", req.AccountName)
	return fmt.Sprintf("%s/%s-%s-%s.png?%s",
		strings.TrimRight(baseURL, "/"),
		url.PathEscape(req.BankID),
		url.PathEscape(req.AccountNo),
		url.PathEscape(template),
		q.Encode(),
	), true
}
