package models

import "strings"

// QRTemplate selects the rendered QR layout.
type QRTemplate string

const (
	QRCompact QRTemplate = "compact"
	QROnly    QRTemplate = "qr_only"
	QRPrint   QRTemplate = "print"
)

// BankConfig describes the receiving account printed on receipts.
type BankConfig struct {
	BankID      string     `json:"bankId" validate:"required"`
	AccountNo   string     `json:"accountNo"`
	AccountName string     `json:"accountName"`
	Template    QRTemplate `json:"template" validate:"omitempty,oneof=compact qr_only print"`
	BankName    string     `json:"bankName,omitempty"`
	TeacherName string     `json:"teacherName,omitempty"`
}

// DefaultBankConfig is used until a config has been saved.
func DefaultBankConfig() BankConfig {
	return BankConfig{
		BankID:      "970422",
		Template:    QRCompact,
		BankName:    "MB Bank",
		TeacherName: "Cô Giáo",
	}
}

// UserProfile stores a named bank config so teachers can switch identities.
type UserProfile struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Config BankConfig `json:"config"`
}

// GithubConfig targets the remote single-file store. The token is persisted
// locally but never exported in backups.
type GithubConfig struct {
	Token    string `json:"token"`
	Owner    string `json:"owner"`
	Repo     string `json:"repo"`
	Path     string `json:"path"`
	AutoSync bool   `json:"autoSync,omitempty"`
}

// Complete reports whether token, owner and repo are all present.
func (c GithubConfig) Complete() bool {
	return strings.TrimSpace(c.Token) != "" && strings.TrimSpace(c.Owner) != "" && strings.TrimSpace(c.Repo) != ""
}

// Redacted returns a copy safe to hand back to callers.
func (c GithubConfig) Redacted() GithubConfig {
	out := c
	if len(out.Token) > 4 {
		out.Token = out.Token[:4] + strings.Repeat("*", 8)
	} else if out.Token != "" {
		out.Token = "****"
	}
	return out
}

// Bank is an entry of the VietQR bank directory.
type Bank struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

// KnownBanks lists the banks offered in the settings form.
var KnownBanks = []Bank{
	{ID: "970436", Name: "Vietcombank", Code: "VCB"},
	{ID: "970415", Name: "VietinBank", Code: "ICB"},
	{ID: "970418", Name: "BIDV", Code: "BIDV"},
	{ID: "970405", Name: "Agribank", Code: "VBA"},
	{ID: "970422", Name: "MB Bank", Code: "MB"},
	{ID: "970407", Name: "Techcombank", Code: "TCB"},
	{ID: "970432", Name: "VPBank", Code: "VPB"},
	{ID: "970423", Name: "TPBank", Code: "TPB"},
	{ID: "970403", Name: "Sacombank", Code: "STB"},
	{ID: "970437", Name: "HDBank", Code: "HDB"},
	{ID: "970441", Name: "VIB", Code: "VIB"},
	{ID: "970443", Name: "SHB", Code: "SHB"},
	{ID: "970428", Name: "Nam A Bank", Code: "NAB"},
	{ID: "970416", Name: "ACB", Code: "ACB"},
	{ID: "963388", Name: "Timo", Code: "TIMO"},
	{ID: "971005", Name: "ViettelMoney", Code: "VTLMONEY"},
	{ID: "971011", Name: "VNPT Money", Code: "VNPTMONEY"},
}

// FindBank looks a bank up by BIN.
func FindBank(id string) (Bank, bool) {
	for _, b := range KnownBanks {
		if b.ID == id {
			return b, true
		}
	}
	return Bank{}, false
}
