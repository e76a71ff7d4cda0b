// Package role defines the speaker roles used in LLM conversations.
package role

// Role identifies the speaker of a conversation message.
type Role string

const (
	System    Role = "system"
	User      Role = "user"
	Assistant Role = "assistant"
	Tool      Role = "tool"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case System, User, Assistant, Tool:
		return true
	}
	return false
}

// String returns the role as a plain string.
func (r Role) String() string {
	return string(r)
}
