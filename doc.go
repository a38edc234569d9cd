// Package codexsdk provides a Go SDK for driving the Codex app-server.
//
// The SDK spawns `codex app-server` as a subprocess and speaks its
// line-delimited JSON-RPC protocol: requests are correlated with
// responses by id, notifications stream conversation output, and
// server-initiated approval requests can be answered inline or through
// a handler. It supports one-shot turns and interactive multi-turn
// sessions.
//
// # Basic Usage
//
// For a single prompt, use the Exec function:
//
//	ctx := context.Background()
//	for msg, err := range codexsdk.Exec(ctx, "What is 2+2?") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if delta, ok := msg.Parsed.(*codexsdk.ItemDeltaNotification); ok {
//	        fmt.Print(delta.Delta)
//	    }
//	}
//
// # Interactive Sessions
//
// For multi-turn conversations, use NewClient or the WithClient helper:
//
//	// Using WithClient for automatic lifecycle management
//	err := codexsdk.WithClient(ctx, func(c codexsdk.Client) error {
//	    if _, err := c.ThreadStart(ctx, nil); err != nil {
//	        return err
//	    }
//	    err := c.TurnStart(ctx, &codexsdk.TurnStartParams{
//	        Input: []codexsdk.UserInput{codexsdk.TextInput("Hello")},
//	    })
//	    if err != nil {
//	        return err
//	    }
//	    for msg, err := range c.ReceiveTurn(ctx) {
//	        if err != nil {
//	            return err
//	        }
//	        // process message...
//	    }
//	    return nil
//	},
//	    codexsdk.WithLogger(slog.Default()),
//	)
//
//	// Or using NewClient directly for more control
//	client := codexsdk.NewClient()
//	defer client.Close()
//
//	err := client.Start(ctx,
//	    codexsdk.WithLogger(slog.Default()),
//	)
//
// # Approvals
//
// The app-server asks the client before running commands or applying
// file changes. Without a handler these requests appear on the message
// stream and must be answered with Respond:
//
//	msg, err := client.NextMessage(ctx)
//	if msg.IsRequest() {
//	    req := msg.Parsed.(*codexsdk.ApprovalRequest)
//	    fmt.Println("approve?", req.Command)
//	    _ = client.Respond(ctx, *msg.ID, &codexsdk.ApprovalResponse{
//	        Decision: codexsdk.ApprovalAccept,
//	    })
//	}
//
// With WithApprovalHandler the SDK answers them automatically and they
// never reach the stream.
//
// # Concurrent Calls
//
// AsyncClient adds Send, which returns a PendingCall that resolves
// independently. Any number of calls may be outstanding at once and
// responses match up regardless of arrival order:
//
//	client := codexsdk.NewAsyncClient()
//	// ... Start ...
//	call, err := client.Send(ctx, "model/list", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	var result json.RawMessage
//	if err := call.Await(ctx, &result); err != nil {
//	    log.Fatal(err)
//	}
//
// # Error Handling
//
// The SDK provides typed errors for different failure scenarios:
//
//	if err := client.Start(ctx); err != nil {
//	    if nfErr, ok := errors.AsType[*codexsdk.CodexNotFoundError](err); ok {
//	        log.Fatalf("codex not installed, searched: %v", nfErr.SearchedPaths)
//	    }
//	    if procErr, ok := errors.AsType[*codexsdk.ProcessError](err); ok {
//	        log.Fatalf("app-server exited with code %d: %s", procErr.ExitCode, procErr.Stderr)
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// This SDK requires the codex CLI to be installed and available in your
// system PATH. You can specify a custom binary path using the
// WithCodexPath option.
package codexsdk
