package tsclient_test

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmora/tsclient"
)

func ExampleResolveOptions() {
	opts := tsclient.ResolveOptions(
		tsclient.WithDir("/work/app"),
		tsclient.WithArgs("--locale", "en"),
		tsclient.WithEnv("TSS_LOG=-level terse"),
	)
	fmt.Println(opts.Dir)
	fmt.Println(opts.Args)
	fmt.Println(opts.Env)
	// Output:
	// /work/app
	// [--locale en]
	// [TSS_LOG=-level terse]
}

func ExampleDecodeBody() {
	body := json.RawMessage(`{"kind":"const","displayString":"const x: number"}`)
	info, err := tsclient.DecodeBody[struct {
		DisplayString string `json:"displayString"`
	}](body)
	if err != nil {
		panic(err)
	}
	fmt.Println(info.DisplayString)
	// Output: const x: number
}

func ExampleIsApplicationError() {
	err := fmt.Errorf("lookup: %w", &tsclient.ApplicationError{
		Command: tsclient.CommandDefinition,
		Seq:     4,
		Message: "No content available.",
	})
	if appErr, ok := tsclient.IsApplicationError(err); ok {
		fmt.Println(appErr.Message)
	}
	fmt.Println(errors.Is(err, tsclient.ErrConnectionClosed))
	// Output:
	// No content available.
	// false
}

func ExampleExitCode() {
	err := fmt.Errorf("session: %w", &tsclient.ExitError{Code: 2})
	code, ok := tsclient.ExitCode(err)
	fmt.Println(code, ok)
	// Output: 2 true
}
