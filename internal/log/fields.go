package log

// Common field names for structured logging
const (
	FieldComponent   = "component"
	FieldRequestID   = "request_id"
	FieldClientID    = "client_id"
	FieldUnitID      = "unit_id"
	FieldFiscalYear  = "fiscal_year"
	FieldFiscalMonth = "fiscal_month"
	FieldQuarter     = "quarter"
	FieldCategory    = "category"
	FieldPeriod      = "period"
	FieldAmountCents = "amount_cents"
	FieldBalance     = "balance_cents"
	FieldDueDate     = "due_date"
	FieldLineItems   = "line_items"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldSuccess     = "success"
	FieldError       = "error"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentStatement = "statement"
	ComponentStorage   = "storage"
	ComponentMongo     = "mongo"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentSheets    = "sheets"
	ComponentCache     = "cache"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpBuild    = "build"
	OpCollect  = "collect"
	OpMerge    = "merge"
	OpExport   = "export"
	OpPublish  = "publish"
	OpConsume  = "consume"
	OpMigrate  = "migrate"
	OpValidate = "validate"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithUnit adds the client and unit identity fields
func (f LogFields) WithUnit(clientID, unitID string) LogFields {
	f[FieldClientID] = clientID
	f[FieldUnitID] = unitID
	return f
}

// WithPeriod adds fiscal period fields
func (f LogFields) WithPeriod(fiscalYear, fiscalMonth int) LogFields {
	f[FieldFiscalYear] = fiscalYear
	f[FieldFiscalMonth] = fiscalMonth
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
