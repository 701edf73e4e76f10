package common

// AccountDescription is the description of the "account" argument every
// tool accepts.
const AccountDescription = "Account name (default: 'default'). Used to manage multiple Google accounts."

// GetAccountFromArgs returns the "account" argument, or "default".
func GetAccountFromArgs(args map[string]any) string {
	if account, ok := args["account"].(string); ok && account != "" {
		return account
	}
	return "default"
}
