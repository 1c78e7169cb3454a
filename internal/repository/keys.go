package repository

// Storage keys. The names match what earlier installs wrote so existing data
// and backups keep loading.
const (
	KeyStudents     = "tutorfee_students"
	KeyPayments     = "tutorfee_payments"
	KeyBankConfig   = "tuition_bank_config"
	KeyProfiles     = "tuition_profiles"
	KeyGithubConfig = "tuition_github_config"
	KeyAuthFlag     = "smarttuition_auth"
)

// AuthFlagValue is the literal stored while the passcode gate is open.
const AuthFlagValue = "true"
