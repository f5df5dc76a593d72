// Package entropy resolves one uniformly distributed integer in an inclusive range.
//
// A Resolver first asks a remote quantum random number service for a single
// unsigned byte and maps it into the range by modulo. Any remote failure
// (transport, timeout, non-200 status, malformed payload) is absorbed and the
// value is drawn from crypto/rand instead. Callers only ever see an error for
// an invalid range.
//
// Normalization bias: an 8-bit sample reduced modulo N favours the first
// 256 mod N values of the range by one extra hit in 256. For [1,5] that is
// doors 1 and 2. The bias is kept; it disappears when N is a power of two.
package entropy
