package log

// Common field names for structured logging, shared so the same
// attribute never appears under two spellings.
const (
	FieldComponent  = "component"
	FieldError      = "error"
	FieldOperation  = "operation"
	FieldUserID     = "user_id"
	FieldCategoryID = "category_id"
	FieldExpenseID  = "expense_id"
	FieldBudgetID   = "budget_id"
	FieldMonthYear  = "month_year"
	FieldAmount     = "amount"
	FieldDate       = "date"
	FieldQueue      = "queue"
	FieldEmail      = "email"
	FieldPath       = "path"
	FieldCount      = "count"
)

// Components defines standard component names.
const (
	ComponentApp     = "app"
	ComponentStorage = "storage"
	ComponentSession = "session"
	ComponentAuth    = "auth"
	ComponentExpense = "expense"
	ComponentBudget  = "budget"
	ComponentReport  = "report"
	ComponentWorker  = "worker"
	ComponentSeed    = "seed"
)

// Operations defines standard operation names.
const (
	OpCreate    = "create"
	OpRead      = "read"
	OpUpdate    = "update"
	OpDelete    = "delete"
	OpList      = "list"
	OpAggregate = "aggregate"
	OpLogin     = "login"
	OpLogout    = "logout"
	OpStartup   = "startup"
	OpShutdown  = "shutdown"
)
