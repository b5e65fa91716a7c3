package common

// GetAccountFromArgs returns the "account" argument, or defaultAccount when
// it is missing, empty or not a string.
func GetAccountFromArgs(args map[string]interface{}, defaultAccount string) string {
	if accountVal, ok := args["account"].(string); ok && accountVal != "" {
		return accountVal
	}
	if defaultAccount == "" {
		return "default"
	}
	return defaultAccount
}
