package commands

// CLI-specific constants
const (
	// DefaultEditorCommand is the default editor command
	DefaultEditorCommand = "vi"
	envKeyEditor         = "EDITOR"
	// EnvPassword supplies the password for login/register without a prompt
	EnvPassword = "BUDGETQ_PASSWORD"
)

// Error messages
const (
	ErrConfigLoaderUnavailable  = "config loader unavailable"
	ErrDoctorServiceUnavailable = "doctor service unavailable"
	ErrHistoryStoreUnavailable  = "history persistence disabled (history.persist is false)"
	ErrGatewayUnavailable       = "query service gateway unavailable"
	ErrKeyRequired              = "--key is required"
	ErrUsernameRequired         = "username is required"
	ErrPasswordRequired         = "password is required"
)

// Success messages
const (
	MsgConfigurationValid       = "Configuration valid"
	MsgNoDifferencesFromDefault = "No differences from default configuration."
	MsgHistoryCleared           = "History cleared."
	MsgClearCancelled           = "Clear cancelled."
	MsgLoggedOut                = "Logged out."
	MsgNotLoggedIn              = "Not logged in."
)
