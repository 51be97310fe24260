// Package server implements the echod message server.
//
// The server listens on a TCP address and admits at most a configured
// number of concurrent connections. Connections beyond the limit receive a
// one-line capacity notice and are closed. Each admitted connection gets its
// own goroutine, which reads whatever bytes arrive, decodes them as one
// [message.ClientMessage], and writes back the encoded response. A run of
// malformed messages longer than the configured tolerance drops the
// connection.
//
// [Server.Run] blocks until [Server.Stop] is called and every connection
// handler has returned. Stop expires the deadline of every open connection,
// so handlers blocked reading from an idle client or writing to one that
// stopped reading return promptly. A response write that already completed
// is not undone.
//
// Example usage:
//
//	srv, err := server.New(server.Config{
//	    Address:      "localhost:8080",
//	    MaxClients:   10,
//	    MaxMalformed: server.DefaultMaxMalformed,
//	})
//	if err != nil {
//	    return err
//	}
//
//	go func() {
//	    <-ctx.Done()
//	    srv.Stop()
//	}()
//
//	return srv.Run()
package server
