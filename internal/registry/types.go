package registry

// ToolRef is a statically declared tool on a server descriptor. Live tool
// discovery produces richer descriptors (see internal/session).
type ToolRef struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ServerDescriptor is the static launch and metadata record for one tool
// server. Descriptors are immutable once loaded; Args and Env may contain
// {{env:NAME}} placeholders that are expanded against the secrets store just
// before launch (see internal/template).
type ServerDescriptor struct {
	// ServerID is the unique key for this server across the registry.
	ServerID    string `json:"server_id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Command is the executable used to launch the server subprocess.
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env"`

	Capabilities []string  `json:"capabilities"`
	Tools        []ToolRef `json:"tools"`

	// DynamicDiscovery marks servers whose tool list should be fetched live
	// rather than trusted from the static Tools field.
	DynamicDiscovery bool `json:"dynamic_discovery"`
}

// file is the on-disk registry document shape.
type file struct {
	Servers []ServerDescriptor `json:"servers"`
}
