/*
Package synchttp implements the remote sync wire protocol from §6.4
as a single request/response exchange over net/http and
encoding/json: Client implements sync.Target for a remote replica
reached over HTTP, and Handler serves that protocol against a local
*replica.Replica. §1 scopes HTTP framing/authentication/spooling
concerns out of the core; this package is the external collaborator
that the core's abstract sync.Target seam plugs into.

The wire protocol is intentionally not gRPC/protobuf: no .proto
sources exist to generate from, and u1db's own http sync target
(u1db_http_sync_target.c) is itself a plain JSON-over-HTTP protocol,
which this package mirrors.
*/
package synchttp
