package domain

// TaskKind identifies the builder a task dispatches to.
type TaskKind uint8

const (
	// KindAggregate is a task without an action of its own; it only groups prerequisites.
	KindAggregate TaskKind = iota
	// KindClean removes the output directory.
	KindClean
	// KindStyle compiles stylesheets into a single file.
	KindStyle
	// KindScript bundles the entry script and its module graph.
	KindScript
	// KindImage optimizes the image tree.
	KindImage
)

// String returns the lowercase name of the kind.
func (k TaskKind) String() string {
	switch k {
	case KindClean:
		return "clean"
	case KindStyle:
		return "style"
	case KindScript:
		return "script"
	case KindImage:
		return "image"
	default:
		return "aggregate"
	}
}

// Task represents a unit of work in the asset pipeline.
// It uses InternedString for fields that are frequently repeated to save memory.
type Task struct {
	Name         InternedString
	Kind         TaskKind
	Description  string
	Inputs       []InternedString
	Outputs      []InternedString
	Dependencies []InternedString

	// Watch marks the variant that builds once and then rebuilds on source changes.
	Watch bool
}

// IsAggregate reports whether the task only groups other tasks.
func (t *Task) IsAggregate() bool {
	return t.Kind == KindAggregate
}
