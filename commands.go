package tsclient

import (
	"context"
	"encoding/json"
)

// Wire command names.
const (
	CommandOpen                      = "open"
	CommandClose                     = "close"
	CommandChange                    = "change"
	CommandReloadProjects            = "reloadProjects"
	CommandReload                    = "reload"
	CommandGeterr                    = "geterr"
	CommandGeterrForProject          = "geterrForProject"
	CommandQuickInfo                 = "quickinfo"
	CommandDefinition                = "definition"
	CommandCompletionInfo            = "completionInfo"
	CommandCompletionEntryDetails    = "completionEntryDetails"
	CommandProjectInfo               = "projectInfo"
	CommandReferences                = "references"
	CommandSignatureHelp             = "signatureHelp"
	CommandRename                    = "rename"
	CommandTypeDefinition            = "typeDefinition"
	CommandNavTree                   = "navtree"
	CommandNavTo                     = "navto"
	CommandSemanticDiagnosticsSync   = "semanticDiagnosticsSync"
	CommandSyntacticDiagnosticsSync  = "syntacticDiagnosticsSync"
	CommandSuggestionDiagnosticsSync = "suggestionDiagnosticsSync"
	CommandGetCodeFixes              = "getCodeFixes"
	CommandGetApplicableRefactors    = "getApplicableRefactors"
	CommandGetSupportedCodeFixes     = "getSupportedCodeFixes"
	CommandGetCombinedCodeFix        = "getCombinedCodeFix"
	CommandOrganizeImports           = "organizeImports"
	CommandGetEditsForFileRename     = "getEditsForFileRename"
)

// --- No-reply commands ---

// Open tells the server the client has opened a file.
func (c *Client) Open(args OpenArgs) error {
	return c.sess.Notify(CommandOpen, args)
}

// Close tells the server the client has closed a file.
func (c *Client) Close(args FileArgs) error {
	return c.sess.Notify(CommandClose, args)
}

// Change applies an edit to an open file.
func (c *Client) Change(args ChangeArgs) error {
	return c.sess.Notify(CommandChange, args)
}

// ReloadProjects asks the server to reload every project from disk.
func (c *Client) ReloadProjects() error {
	return c.sess.Notify(CommandReloadProjects, nil)
}

// Geterr requests asynchronous diagnostics for files. The result arrives
// as an EventDiagnostics; see CollectDiagnostics.
func (c *Client) Geterr(args GeterrArgs) error {
	return c.sess.Notify(CommandGeterr, args)
}

// GeterrForProject requests asynchronous diagnostics for a whole project.
// The server answers with events, not a response.
func (c *Client) GeterrForProject(args GeterrForProjectArgs) error {
	return c.sess.Notify(CommandGeterrForProject, args)
}

// --- Reply commands ---

// UpdateFile reloads an open file from a temporary file.
func (c *Client) UpdateFile(ctx context.Context, args ReloadArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandReload, args)
}

// QuickInfo returns hover information at a location.
func (c *Client) QuickInfo(ctx context.Context, args FileLocationArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandQuickInfo, args)
}

// Definition returns definition locations of the symbol at a location.
func (c *Client) Definition(ctx context.Context, args FileLocationArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandDefinition, args)
}

// Completions returns completion entries at a location.
func (c *Client) Completions(ctx context.Context, args CompletionsArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandCompletionInfo, args)
}

// CompletionDetails returns details for specific completion entries.
func (c *Client) CompletionDetails(ctx context.Context, args CompletionDetailsArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandCompletionEntryDetails, args)
}

// ProjectInfo returns the project containing a file.
func (c *Client) ProjectInfo(ctx context.Context, args ProjectInfoArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandProjectInfo, args)
}

// References returns references to the symbol at a location.
func (c *Client) References(ctx context.Context, args FileLocationArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandReferences, args)
}

// SignatureHelp returns signature help at a location.
func (c *Client) SignatureHelp(ctx context.Context, args FileLocationArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandSignatureHelp, args)
}

// Rename returns rename locations for the symbol at a location.
func (c *Client) Rename(ctx context.Context, args RenameArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandRename, args)
}

// TypeDefinition returns type definition locations at a location.
func (c *Client) TypeDefinition(ctx context.Context, args FileLocationArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandTypeDefinition, args)
}

// DocumentSymbols returns the navigation tree of a file.
func (c *Client) DocumentSymbols(ctx context.Context, args FileArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandNavTree, args)
}

// WorkspaceSymbols searches symbols across the project.
func (c *Client) WorkspaceSymbols(ctx context.Context, args NavtoArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandNavTo, args)
}

// SemanticDiagnosticsSync returns semantic diagnostics of a file.
func (c *Client) SemanticDiagnosticsSync(ctx context.Context, args FileArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandSemanticDiagnosticsSync, args)
}

// SyntacticDiagnosticsSync returns syntactic diagnostics of a file.
func (c *Client) SyntacticDiagnosticsSync(ctx context.Context, args FileArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandSyntacticDiagnosticsSync, args)
}

// SuggestionDiagnosticsSync returns suggestion diagnostics of a file.
func (c *Client) SuggestionDiagnosticsSync(ctx context.Context, args FileArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandSuggestionDiagnosticsSync, args)
}

// CodeFixes returns fixes for error codes within a range.
func (c *Client) CodeFixes(ctx context.Context, args CodeFixArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandGetCodeFixes, args)
}

// ApplicableRefactors returns refactors available for a range.
func (c *Client) ApplicableRefactors(ctx context.Context, args FileRangeArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandGetApplicableRefactors, args)
}

// SupportedCodeFixes returns the error codes the server can fix.
func (c *Client) SupportedCodeFixes(ctx context.Context) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandGetSupportedCodeFixes, nil)
}

// CombinedCodeFix returns the combined edits of a fix applied file-wide.
func (c *Client) CombinedCodeFix(ctx context.Context, args CombinedCodeFixArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandGetCombinedCodeFix, args)
}

// OrganizeImports returns organize-imports edits.
func (c *Client) OrganizeImports(ctx context.Context, args OrganizeImportsArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandOrganizeImports, args)
}

// EditsForFileRename returns edits caused by renaming a file.
func (c *Client) EditsForFileRename(ctx context.Context, args EditsForFileRenameArgs) (json.RawMessage, error) {
	return c.sess.Request(ctx, CommandGetEditsForFileRename, args)
}
