// Package pipeline implements the HTML preparation stages that run between
// template expansion and PDF rendering:
//   - Markdown to HTML conversion via Goldmark (for .md templates)
//   - XHTML canonicalization of bare fragments
//   - page style injection (@page size and margins, default font)
//   - CSS injection (@font-face rules)
//   - base URL injection for relative resources
//
// PDF generation is handled by the root tpl2pdf package using headless
// Chrome. Every stage here is a pure string transformation.
package pipeline
