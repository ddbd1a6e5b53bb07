package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserID        = "user_id"
	FieldAccountID     = "account_id"
	FieldTransactionID = "transaction_id"
	FieldDelta         = "delta"
	FieldAttempt       = "attempt"
)

const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentLedger    = "ledger"
	ComponentStorage   = "storage"
	ComponentAuth      = "auth"
	ComponentEvents    = "events"
	ComponentScheduler = "scheduler"
)

const (
	OpRecord   = "record"
	OpAmend    = "amend"
	OpDelete   = "delete"
	OpVerify   = "verify_balances"
	OpRebuild  = "rebuild_balances"
	OpPublish  = "publish"
	OpMigrate  = "migrate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
)
