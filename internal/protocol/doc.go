// Package protocol implements the wire protocol of the Codex app-server.
//
// The protocol package provides a Conn that manages request/response
// correlation over a newline-delimited JSON-RPC connection, routes server
// notifications and approval requests to consumers, and tracks the
// session phase machine that guards every client operation.
//
// The Conn handles:
//   - Sending requests with unique ids, registered before the write
//   - Receiving and correlating responses, resolving each request once
//   - Request timeout enforcement without interrupting the server
//   - Approval requests from the server, answered inline by a handler or
//     surfaced on the message stream for manual answering
//   - Broadcasting transport failure to every waiter exactly once
//
// Example usage:
//
//	transport := subprocess.NewAppServer(log, options)
//	transport.Start(ctx)
//
//	conn := protocol.NewConn(log, transport, protocol.ConnConfig{})
//	conn.Start(ctx)
//
//	// Send a request and wait for its response
//	result, err := conn.Call(ctx, protocol.MethodThreadStart, params)
package protocol
