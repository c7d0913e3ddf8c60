package config

// LedgerConfig carries the institution-wide ledger settings. It is built once
// at startup and passed into the services that need it; nothing reads these
// values from globals.
type LedgerConfig struct {
	// OpeningBalance is the balance a freshly ensured wallet starts with.
	OpeningBalance int64
	// SettlementRefPrefix prefixes the generated references of settlement debits.
	SettlementRefPrefix string
	// CorrectionRefPrefix prefixes the generated references of edit re-creations.
	CorrectionRefPrefix string
}

// LoadLedgerConfig builds a LedgerConfig from the environment.
func LoadLedgerConfig() LedgerConfig {
	return LedgerConfig{
		OpeningBalance:      GetInt64Env("WALLET_OPENING_BALANCE", 0),
		SettlementRefPrefix: GetEnv("SETTLEMENT_REF_PREFIX", "STL"),
		CorrectionRefPrefix: GetEnv("CORRECTION_REF_PREFIX", "COR"),
	}
}
