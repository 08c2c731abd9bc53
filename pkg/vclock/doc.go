/*
Package vclock implements the vector-clock algebra that arbitrates
document revisions across replicas.

A Clock is an ordered set of (replica_uid, generation) pairs, kept in
lexicographic replica_uid order so that two causally-equal clocks
always produce an identical canonical string. The zero Clock is the
empty clock and serializes to "".

Wire form: "uid1:gen1|uid2:gen2|...". Parse is strict: duplicate uids,
empty uids, missing colons, non-numeric generations, and trailing
separators are all rejected.

Clock is immutable from the caller's perspective: Increment and
Maximize return a new Clock rather than mutating the receiver, which
keeps callers that hold a Clock across a comparison safe from aliasing
bugs (the C original mutates the clock it was given a pointer to).
*/
package vclock
