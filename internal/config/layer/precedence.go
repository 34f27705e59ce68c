package layer

// Standard priority levels. Higher values override lower values.
const (
	PriorityBuiltin   = 0
	PriorityUser      = 100
	PriorityWorkspace = 200
	PriorityFolder    = 250
	PriorityEnv       = 500
	PrioritySession   = 1000
)

// DefaultPriority returns the standard priority for source.
func DefaultPriority(source Source) int {
	switch source {
	case SourceUser:
		return PriorityUser
	case SourceWorkspace:
		return PriorityWorkspace
	case SourceFolder:
		return PriorityFolder
	case SourceEnv:
		return PriorityEnv
	case SourceSession:
		return PrioritySession
	default:
		return PriorityBuiltin
	}
}

// StandardLayerName returns the conventional layer name for source.
func StandardLayerName(source Source) string {
	switch source {
	case SourceBuiltin:
		return "defaults"
	case SourceFolder:
		return "folder"
	default:
		return source.String()
	}
}
