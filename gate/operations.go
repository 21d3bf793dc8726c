package gate

import "github.com/jrsteele09/go-dbgate/users"

// Operation names exposed by the gateway.
const (
	OpListTables    = "list_tables"
	OpDescribeTable = "describe_table"
	OpReadData      = "read_data"
	OpInsertData    = "insert_data"
	OpUpdateData    = "update_data"
	OpDeleteData    = "delete_data"
	OpCreateTable   = "create_table"
	OpDropTable     = "drop_table"
)

// Descriptor is the static access requirement of one operation: the
// capability a session must hold and whether the operation also needs a
// prior consent grant.
type Descriptor struct {
	RequiredCapability users.Capability // empty means any valid session
	Destructive        bool
}

// operations is fixed configuration data built at compile time; it is only
// reachable through Describe and OperationNames, never mutated at runtime.
var operations = map[string]Descriptor{
	OpListTables:    {RequiredCapability: users.CapabilityRead},
	OpDescribeTable: {RequiredCapability: users.CapabilityRead},
	OpReadData:      {RequiredCapability: users.CapabilityRead},
	OpInsertData:    {RequiredCapability: users.CapabilityWrite, Destructive: true},
	OpUpdateData:    {RequiredCapability: users.CapabilityWrite, Destructive: true},
	OpDeleteData:    {RequiredCapability: users.CapabilityDelete, Destructive: true},
	OpCreateTable:   {RequiredCapability: users.CapabilityCreate, Destructive: true},
	OpDropTable:     {RequiredCapability: users.CapabilityDelete, Destructive: true},
}

// Describe looks up the descriptor for an operation name.
func Describe(operation string) (Descriptor, bool) {
	descriptor, ok := operations[operation]
	return descriptor, ok
}

// OperationNames returns every operation name known to the gateway.
func OperationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	return names
}
