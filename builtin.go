package tpl2pdf

import "embed"

// builtinTemplates holds the templates shipped with the library under
// "templates/". They form the embedded tier of the default chain.
//
//go:embed templates
var builtinTemplates embed.FS
