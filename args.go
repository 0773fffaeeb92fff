package tsclient

import "encoding/json"

// Argument shapes for the most common commands. The session treats
// arguments as opaque; these types only save callers from building maps.
// Every Client method also accepts any JSON-marshalable value through
// Client.Request and Client.Notify.

// FileArgs addresses a whole file.
type FileArgs struct {
	File        string `json:"file"`
	ProjectFile string `json:"projectFileName,omitempty"`
}

// FileLocationArgs addresses a 1-based line/offset position in a file.
type FileLocationArgs struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Offset int    `json:"offset"`
}

// FileRangeArgs addresses a 1-based range in a file.
type FileRangeArgs struct {
	File        string `json:"file"`
	StartLine   int    `json:"startLine"`
	StartOffset int    `json:"startOffset"`
	EndLine     int    `json:"endLine"`
	EndOffset   int    `json:"endOffset"`
}

// OpenArgs opens a file, optionally with in-memory content.
type OpenArgs struct {
	File            string `json:"file"`
	FileContent     string `json:"fileContent,omitempty"`
	ScriptKindName  string `json:"scriptKindName,omitempty"`
	ProjectRootPath string `json:"projectRootPath,omitempty"`
}

// ChangeArgs replaces a range of an open file with InsertString.
type ChangeArgs struct {
	FileRangeArgs
	InsertString string `json:"insertString"`
}

// ReloadArgs reloads an open file from TmpFile.
type ReloadArgs struct {
	File    string `json:"file"`
	TmpFile string `json:"tmpfile"`
}

// GeterrArgs requests asynchronous diagnostics for Files after Delay
// milliseconds. Results arrive as one EventDiagnostics.
type GeterrArgs struct {
	Files []string `json:"files"`
	Delay int      `json:"delay"`
}

// GeterrForProjectArgs requests asynchronous diagnostics for every file of
// the project containing File.
type GeterrForProjectArgs struct {
	File  string `json:"file"`
	Delay int    `json:"delay"`
}

// CompletionsArgs requests completions at a location.
type CompletionsArgs struct {
	FileLocationArgs
	Prefix           string `json:"prefix,omitempty"`
	TriggerCharacter string `json:"triggerCharacter,omitempty"`
}

// CompletionDetailsArgs requests details for named completion entries.
type CompletionDetailsArgs struct {
	FileLocationArgs
	EntryNames []json.RawMessage `json:"entryNames"`
}

// RenameArgs requests rename locations at a location.
type RenameArgs struct {
	FileLocationArgs
	FindInComments bool `json:"findInComments,omitempty"`
	FindInStrings  bool `json:"findInStrings,omitempty"`
}

// NavtoArgs searches workspace symbols.
type NavtoArgs struct {
	SearchValue     string `json:"searchValue"`
	File            string `json:"file,omitempty"`
	MaxResultCount  int    `json:"maxResultCount,omitempty"`
	CurrentFileOnly bool   `json:"currentFileOnly,omitempty"`
}

// ProjectInfoArgs requests information about the project containing File.
type ProjectInfoArgs struct {
	File             string `json:"file"`
	NeedFileNameList bool   `json:"needFileNameList"`
}

// CodeFixArgs requests fixes for ErrorCodes within a range.
type CodeFixArgs struct {
	FileRangeArgs
	ErrorCodes []int `json:"errorCodes"`
}

// CombinedCodeFixArgs requests the file-wide edits of one fix. FixID is
// the fixId of a code fix action returned by CodeFixes.
type CombinedCodeFixArgs struct {
	Scope CombinedCodeFixScope `json:"scope"`
	FixID string               `json:"fixId"`
}

// CombinedCodeFixScope selects the file the fix applies to. Type is "file".
type CombinedCodeFixScope struct {
	Type string   `json:"type"`
	Args FileArgs `json:"args"`
}

// EditsForFileRenameArgs requests edits caused by renaming OldFilePath.
type EditsForFileRenameArgs struct {
	OldFilePath string `json:"oldFilePath"`
	NewFilePath string `json:"newFilePath"`
}

// OrganizeImportsArgs requests organize-imports edits for a file scope.
type OrganizeImportsArgs struct {
	Scope OrganizeImportsScope `json:"scope"`
}

// OrganizeImportsScope selects the file to organize.
type OrganizeImportsScope struct {
	Type string   `json:"type"`
	Args FileArgs `json:"args"`
}
