package messagequeue

// CommandPayload is the schema for agent.commands.{mappingID} messages.
// It mirrors agent.Command minus server-side bookkeeping.
type CommandPayload struct {
	CommandID string `json:"command_id"`
	MappingID string `json:"mapping_id"`
	Action    string `json:"action"`
	Data      any    `json:"data"`
}

// AckPayload is the schema for agent.acks messages.
type AckPayload struct {
	CommandID string `json:"command_id"`
	MappingID string `json:"mapping_id"`
	Applied   bool   `json:"applied"`
	Error     string `json:"error,omitempty"`
}

// SyncCompletedPayload is the schema for sync.completed messages.
type SyncCompletedPayload struct {
	MappingID      string `json:"mapping_id"`
	UserID         string `json:"user_id"`
	Success        bool   `json:"success"`
	ItemsProcessed int    `json:"items_processed"`
	ItemsCreated   int    `json:"items_created"`
	ItemsUpdated   int    `json:"items_updated"`
	ConflictCount  int    `json:"conflict_count"`
}
