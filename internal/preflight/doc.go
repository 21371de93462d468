// Package preflight provides readiness checks for the LingQ API, local
// directories and the external tools the pipeline depends on.
//
// The CLI runs RunAll before uploads and downloads so a missing token or an
// unwritable state directory fails fast instead of after a partial upload.
// The "lingq status" command renders every result as a table.
package preflight
