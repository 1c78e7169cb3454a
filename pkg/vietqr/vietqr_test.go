package vietqr

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveAccents(t *testing.T) {
	assert.Equal(t, "Nguyen Van Dung", RemoveAccents("Nguyễn Văn Dũng"))
	assert.Equal(t, "Do Thi Ha", RemoveAccents("Đỗ Thị Hà"))
	assert.Equal(t, "dang", RemoveAccents("đặng"))
}

func TestTransferMemo(t *testing.T) {
	assert.Equal(t, "Tran Minh Anh chuyen khoan", TransferMemo(" Trần Minh Anh "))
}

func TestImageURL(t *testing.T) {
	raw, ok := ImageURL("", Request{
		BankID:      "970422",
		AccountNo:   "0123456789",
		Template:    "compact",
		Amount:      450000,
		Memo:        "Tran Minh Anh chuyen khoan",
		AccountName: "NGUYEN THI LAN",
	})
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(raw, "https://img.vietqr.io/image/970422-0123456789-compact.png?"))

	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "450000", parsed.Query().Get("amount"))
	assert.Equal(t, "Tran Minh Anh chuyen khoan", parsed.Query().Get("addInfo"))
	assert.Equal(t, "NGUYEN THI LAN", parsed.Query().Get("accountName"))
}

func TestImageURLWithoutAccount(t *testing.T) {
	_, ok := ImageURL("", Request{BankID: "970422"})
	assert.False(t, ok)
}
