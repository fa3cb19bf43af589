// Package errors provides coded, categorized errors for the view router.
//
// Every failure the router can report has a registered code that maps to a
// category, a short message and a longer explanation:
//   - structure: the declared route tree is invalid (R001-R009)
//   - resolve: a deferred route definition could not be merged (R010-R019)
//   - transition: a URL could not be entered (R020-R029)
//   - config / manifest: tooling input errors (C001-C009, M001-M009)
//
// Errors compare by code, so a bare code value works as a sentinel:
//
//	var ErrAmbiguousRoute = errors.Sentinel("R002")
//
//	err := errors.New("R002").WithRoute("users/:id").WithDetail("two parameter siblings")
//	stderrors.Is(err, ErrAmbiguousRoute) // true
//
// Format renders a colored, multi-line report for terminals.
package errors
