package errors

import "sort"

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
	Detail   string
	DocURL   string
}

const docBase = "https://vango.dev/docs/router/errors/"

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Structure Errors (R001-R009)
	// ============================================

	"R001": {
		Category: CategoryStructure,
		Message:  "Route is defined more than once",
		Detail:   "Two declarations supply a component, controller, resolve or case-insensitivity for the same route fragment.",
		DocURL:   docBase + "R001",
	},
	"R002": {
		Category: CategoryStructure,
		Message:  "Ambiguous route",
		Detail:   "Sibling route fragments would match the same URL segment.",
		DocURL:   docBase + "R002",
	},
	"R003": {
		Category: CategoryStructure,
		Message:  "Incomplete route",
		Detail:   "The route fragment can never render: it needs a component, or children together with a path or a controller.",
		DocURL:   docBase + "R003",
	},
	"R004": {
		Category: CategoryStructure,
		Message:  "Invalid route definition",
		Detail:   "The route fragment combines definitions that cannot be used together.",
		DocURL:   docBase + "R004",
	},
	"R005": {
		Category: CategoryStructure,
		Message:  "Route not found",
		Detail:   "No declared route fragment has this path.",
		DocURL:   docBase + "R005",
	},

	// ============================================
	// Resolve Errors (R010-R019)
	// ============================================

	"R010": {
		Category: CategoryResolve,
		Message:  "Route resolve() not returning a future",
		Detail:   "A deferred definition provider must return a pending future.",
		DocURL:   docBase + "R010",
	},
	"R011": {
		Category: CategoryResolve,
		Message:  "Resolved route already has a definition",
		Detail:   "A resolution may add a component or controller but never replace one.",
		DocURL:   docBase + "R011",
	},
	"R012": {
		Category: CategoryResolve,
		Message:  "Resolved route doesn't have a child with this path",
		Detail:   "Children supplied by a resolution must already be declared as placeholders.",
		DocURL:   docBase + "R012",
	},
	"R013": {
		Category: CategoryResolve,
		Message:  "Route must be resolved with at least a component, a controller or children",
		Detail:   "The resolution payload was empty.",
		DocURL:   docBase + "R013",
	},

	// ============================================
	// Transition Errors (R020-R029)
	// ============================================

	"R020": {
		Category: CategoryTransition,
		Message:  "Route not matched",
		Detail:   "No declared route covers the URL. Declare a fallback route ('*') to handle unknown URLs.",
		DocURL:   docBase + "R020",
	},
	"R021": {
		Category: CategoryTransition,
		Message:  "Controller not settled with a controller",
		Detail:   "A declared controller produced an empty value.",
		DocURL:   docBase + "R021",
	},
	"R022": {
		Category: CategoryTransition,
		Message:  "Top level route refusing to enter",
		Detail:   "The outermost route fragment refused to enter, leaving no route to fall back to.",
		DocURL:   docBase + "R022",
	},
	"R023": {
		Category: CategoryTransition,
		Message:  "URL doesn't start with the base path",
		Detail:   "The router only handles URLs below its base path.",
		DocURL:   docBase + "R023",
	},

	// ============================================
	// Config Errors (C001-C009)
	// ============================================

	"C001": {
		Category: CategoryConfig,
		Message:  "Configuration file not found",
		DocURL:   docBase + "C001",
	},
	"C002": {
		Category: CategoryConfig,
		Message:  "Invalid configuration file",
		DocURL:   docBase + "C002",
	},
	"C003": {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
		DocURL:   docBase + "C003",
	},

	// ============================================
	// Manifest Errors (M001-M009)
	// ============================================

	"M001": {
		Category: CategoryManifest,
		Message:  "Invalid route manifest",
		DocURL:   docBase + "M001",
	},
	"M002": {
		Category: CategoryManifest,
		Message:  "Unknown name in route manifest",
		Detail:   "The manifest references a component, controller or resolver that is not registered.",
		DocURL:   docBase + "M002",
	},
	"M003": {
		Category: CategoryManifest,
		Message:  "Route manifest source unavailable",
		DocURL:   docBase + "M003",
	},
}

// GetAllCodes returns all registered error codes, sorted.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
