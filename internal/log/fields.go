package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
	FieldOperation     = "operation"
	FieldBatchSize     = "batch_size"
	FieldInserted      = "inserted"
	FieldSkipped       = "duplicates_skipped"
	FieldRevenueSource = "revenue_source"
	FieldCustomer      = "customer"
	FieldCurrency      = "currency"
	FieldFromCurrency  = "from_currency"
	FieldToCurrency    = "to_currency"
	FieldRecordCount   = "record_count"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentStorage = "storage"
	ComponentAMQP    = "amqp"
	ComponentWorker  = "worker"
	ComponentExport  = "export"
	ComponentCache   = "cache"
)

// Operations defines standard operation names
const (
	OpIngest    = "ingest"
	OpAggregate = "aggregate"
	OpList      = "list"
	OpReset     = "reset"
	OpValidate  = "validate"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
