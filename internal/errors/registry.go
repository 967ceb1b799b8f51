package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Suggestion string
	Fatal      bool
}

// Registered error codes.
const (
	CodeInternal         = "E000"
	CodeTypeMismatch     = "E001"
	CodeUnhashableProps  = "E002"
	CodeMissingHostRoot  = "E010"
	CodeNoMountLookup    = "E011"
	CodeRouteNotFound    = "E020"
	CodeVoidChildren     = "E030"
	CodeMalformedFrame   = "E060"
	CodeSessionFault     = "E061"
	CodeInvalidConfig    = "E070"
	CodeConfigUnreadable = "E071"
)

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	CodeInternal: {
		Category: CategoryRuntime,
		Message:  "Internal error",
		Fatal:    true,
	},
	CodeTypeMismatch: {
		Category:   CategoryRuntime,
		Message:    "Message type does not match the target component",
		Suggestion: "Two components share a type identity, or a message was posted to the wrong node.",
		Fatal:      true,
	},
	CodeUnhashableProps: {
		Category:   CategoryRuntime,
		Message:    "Component properties cannot be hashed",
		Suggestion: "Implement PropsHasher, or tag func and chan fields with `json:\"-\"`.",
		Fatal:      true,
	},
	CodeMissingHostRoot: {
		Category:   CategoryMount,
		Message:    "Host mount point not found",
		Suggestion: "Add an element with the configured root id, or rely on the default mount point.",
	},
	CodeNoMountLookup: {
		Category: CategoryMount,
		Message:  "Renderer cannot locate mount points",
		Fatal:    true,
	},
	CodeRouteNotFound: {
		Category: CategoryRuntime,
		Message:  "No root registered for path",
	},
	CodeVoidChildren: {
		Category:   CategoryStructure,
		Message:    "Void element given children",
		Suggestion: "Elements such as input, img and br cannot contain child nodes.",
		Fatal:      true,
	},
	CodeMalformedFrame: {
		Category: CategoryProtocol,
		Message:  "Malformed client frame",
	},
	CodeSessionFault: {
		Category: CategoryProtocol,
		Message:  "Session terminated after a runtime fault",
		Fatal:    true,
	},
	CodeInvalidConfig: {
		Category: CategoryConfig,
		Message:  "Invalid configuration",
	},
	CodeConfigUnreadable: {
		Category: CategoryConfig,
		Message:  "Configuration file could not be read",
	},
}

// GetTemplate returns the template registered for code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}
